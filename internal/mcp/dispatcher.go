package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/melih/lighthouse-mcp/internal/core/ports"
	"github.com/melih/lighthouse-mcp/internal/logging"
)

// Method names.
const (
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)

// Dispatcher routes JSON-RPC calls to tool and resource handlers backed by a
// container engine. It holds no per-request state and is safe for concurrent
// use.
type Dispatcher struct {
	engine    ports.ContainerService
	resources []Resource
	log       *logging.Logger
	started   time.Time
}

// NewDispatcher creates a dispatcher over engine serving the given resource
// catalog.
func NewDispatcher(engine ports.ContainerService, resources []Resource, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		engine:    engine,
		resources: slices.Clone(resources),
		log:       log,
		started:   time.Now(),
	}
}

// Handle decodes a raw request body and dispatches it. It always returns a
// response; a body that cannot be decoded yields an error envelope carrying
// whatever id could be recovered from it.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) *Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		d.log.Warn().Err(err).Msg("malformed MCP request")
		return failure(salvageID(body), fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	return d.Dispatch(ctx, &req)
}

// Dispatch executes a decoded request. Handler failures, including panics,
// are converted into error envelopes.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("method", req.Method).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("MCP handler panicked")
			resp = failure(req.ID, fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	d.log.Info().Str("method", req.Method).RawJSON("id", rawID(req.ID)).Msg("MCP request received")

	result, err := d.route(ctx, req)
	if err != nil {
		d.log.Warn().
			Str("method", req.Method).
			RawJSON("id", rawID(req.ID)).
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("MCP request failed")
		return failure(req.ID, err)
	}
	return success(req.ID, result)
}

func (d *Dispatcher) route(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case MethodToolsList:
		return ListToolsResult{Tools: Tools()}, nil

	case MethodToolsCall:
		var params CallToolParams
		if err := decodeParams(req.Params, &params); err != nil {
			return nil, err
		}
		return d.callTool(ctx, params)

	case MethodResourcesList:
		return ListResourcesResult{Resources: slices.Clone(d.resources)}, nil

	case MethodResourcesRead:
		var params ReadResourceParams
		if err := decodeParams(req.Params, &params); err != nil {
			return nil, err
		}
		return d.readResource(ctx, params.URI)

	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, req.Method)
	}
}

func (d *Dispatcher) callTool(ctx context.Context, params CallToolParams) (*ToolResult, error) {
	tool, ok := LookupTool(params.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, params.Name)
	}
	handler, ok := toolHandlers[tool.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, params.Name)
	}

	out, err := handler(ctx, d, tool, params.Arguments)
	if err != nil {
		return nil, err
	}
	return textResult(out)
}

func (d *Dispatcher) readResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	idx := slices.IndexFunc(d.resources, func(r Resource) bool { return r.URI == uri })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	res := d.resources[idx]

	var (
		payload any
		err     error
	)
	switch uri {
	case ResourceContainers:
		payload, err = d.listContainers(ctx, true)
	case ResourceNetworks:
		payload, err = d.listNetworks(ctx)
	case ResourceVolumes:
		payload, err = d.listVolumes(ctx)
	case ResourceSystemInfo:
		payload, err = d.systemInfo(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, uri)
	}
	if err != nil {
		return nil, err
	}

	text, err := prettyJSON(payload)
	if err != nil {
		return nil, err
	}
	return &ReadResourceResult{
		Contents: []ResourceContents{{URI: res.URI, MimeType: res.MimeType, Text: text}},
	}, nil
}

// decodeParams decodes optional params into v. Missing or null params leave
// v at its zero value.
func decodeParams(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: params: %v", ErrInvalidRequest, err)
	}
	return nil
}

// salvageID recovers the id of a request whose body could not be decoded
// into a Request. Returns nil when nothing usable is present.
func salvageID(body []byte) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	id, ok := fields["id"]
	if !ok {
		return nil
	}
	switch jsonKind(id) {
	case "string", "number", "null":
		return id
	default:
		return nil
	}
}

func rawID(id json.RawMessage) []byte {
	if len(id) == 0 {
		return []byte("null")
	}
	return id
}
