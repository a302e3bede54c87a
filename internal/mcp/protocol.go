package mcp

import (
	"encoding/json"
	"errors"

	"github.com/sourcegraph/jsonrpc2"
)

// Request is an inbound JSON-RPC call. ID is kept as raw JSON so it can be
// echoed back untouched, whatever its type.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpc2.Error `json:"error,omitempty"`
}

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ReadResourceParams are the params of resources/read.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ToolResult wraps a tool's output as a single text content item.
type ToolResult struct {
	Content []ContentItem `json:"content"`
}

// ContentItem is one piece of tool output.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// ListResourcesResult is the result of resources/list.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceResult is the result of resources/read.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ResourceContents is the serialized body of a resource.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Error kinds. Callers match with errors.Is; the wire message is the wrapped
// error text.
var (
	ErrMethodNotFound   = errors.New("Method not found")
	ErrUnknownTool      = errors.New("Unknown tool")
	ErrUnknownResource  = errors.New("Unknown resource")
	ErrInvalidArguments = errors.New("Invalid arguments")
	ErrInvalidRequest   = errors.New("Invalid request")
)

func success(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func failure(id json.RawMessage, err error) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: toRPCError(err)}
}

// toRPCError maps an error onto the wire error object. Only an unknown method
// gets its own code; everything else is reported as an internal error with
// the cause's message.
func toRPCError(err error) *jsonrpc2.Error {
	code := int64(jsonrpc2.CodeInternalError)
	if errors.Is(err, ErrMethodNotFound) {
		code = jsonrpc2.CodeMethodNotFound
	}
	return &jsonrpc2.Error{Code: code, Message: err.Error()}
}

// textResult pretty-prints v as the single text item of a tool result.
func textResult(v any) (*ToolResult, error) {
	text, err := prettyJSON(v)
	if err != nil {
		return nil, err
	}
	return &ToolResult{Content: []ContentItem{{Type: "text", Text: text}}}, nil
}

func prettyJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
