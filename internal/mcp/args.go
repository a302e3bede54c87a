package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Typed argument variants, one per tool shape.

type listContainersArgs struct {
	All bool `json:"all"`
}

type containerArgs struct {
	ContainerName string `json:"container_name"`
}

type getLogsArgs struct {
	ContainerName string   `json:"container_name"`
	Tail          *float64 `json:"tail"`
}

type noArgs struct{}

const defaultLogTail = 100

// lines resolves the tail argument, applying the default.
func (a getLogsArgs) lines() (int, error) {
	if a.Tail == nil {
		return defaultLogTail, nil
	}
	tail := *a.Tail
	if tail < 0 || tail != math.Trunc(tail) || tail > math.MaxInt32 {
		return 0, fmt.Errorf("%w: tail must be a non-negative integer", ErrInvalidArguments)
	}
	return int(tail), nil
}

// decodeArgs checks raw against the tool's input schema and decodes it into
// the tool's argument type.
func decodeArgs[T any](tool Tool, raw json.RawMessage) (T, error) {
	var args T
	fields, err := validateArguments(tool.InputSchema, raw)
	if err != nil {
		return args, err
	}
	if len(fields) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return args, nil
}

// validateArguments enforces required fields and declared property types.
// Properties not declared in the schema are ignored. A null value counts as
// absent.
func validateArguments(schema InputSchema, raw json.RawMessage) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(raw)) > 0 && !isNull(raw) {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: arguments must be an object", ErrInvalidArguments)
		}
	}

	for _, name := range schema.Required {
		v, ok := fields[name]
		if !ok || isNull(v) {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidArguments, name)
		}
		if schema.Properties[name].Type == "string" && string(bytes.TrimSpace(v)) == `""` {
			return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidArguments, name)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		v := fields[name]
		prop, declared := schema.Properties[name]
		if !declared || isNull(v) {
			continue
		}
		if kind := jsonKind(v); kind != prop.Type {
			return nil, fmt.Errorf("%w: %s must be a %s, got %s", ErrInvalidArguments, name, prop.Type, kind)
		}
	}
	return fields, nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// jsonKind names the JSON-Schema type of an encoded value.
func jsonKind(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "null"
	}
	switch c := v[0]; {
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}
