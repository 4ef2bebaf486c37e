package toolset

import (
	"bytes"
	"encoding/json"

	"github.com/Deduction-Dev/composio/pkg/llmutils"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
)

// ErrInvalidArguments is returned when tool arguments can not be parsed
// or do not satisfy the parameters schema.
var ErrInvalidArguments = schema.ErrInvalidArguments

// ErrSchemaConversion is returned when an action has malformed parameters schema.
var ErrSchemaConversion = schema.ErrSchemaConversion

const maxPayloadInError = 256

// ToolInvocation is a tool call issued by the model or the caller.
type ToolInvocation struct {
	Name string `json:"name"`
	// Arguments is map[string]any, JSON string, []byte or json.RawMessage
	Arguments any `json:"arguments,omitempty"`
}

// NormalizeArguments returns the arguments as a JSON object.
func NormalizeArguments(v any) (map[string]any, error) {
	switch a := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		if a == nil {
			return map[string]any{}, nil
		}
		return a, nil
	case string:
		return decodeArguments([]byte(a))
	case []byte:
		return decodeArguments(a)
	case json.RawMessage:
		return decodeArguments(a)
	default:
		js, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "unable to encode arguments of type %T", v), ErrInvalidArguments)
		}
		return decodeArguments(js)
	}
}

func decodeArguments(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "unable to parse arguments %q", llmutils.Truncate(string(data), maxPayloadInError)),
			ErrInvalidArguments)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// parseInput decodes model produced input,
// which may be wrapped in markdown or contain minor JSON errors.
func parseInput(input string) (map[string]any, error) {
	data := llmutils.CleanJSON([]byte(input))
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var m map[string]any
	if err := ljson.Unmarshal(data, &m); err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "unable to parse arguments %q", llmutils.Truncate(input, maxPayloadInError)),
			ErrInvalidArguments)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// encodeResult returns the remote result as one JSON string.
func encodeResult(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", errors.Wrap(err, "unable to encode result")
	}
	return buf.String(), nil
}
