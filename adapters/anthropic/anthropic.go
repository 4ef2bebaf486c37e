// Package anthropic adapts toolset tools to the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cockroachdb/errors"
)

// Tools returns tool definitions for the Messages API, sorted by name.
func Tools(list map[string]*toolset.Tool) []anthropic.ToolUnionParam {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]anthropic.ToolUnionParam, 0, len(names))
	for _, name := range names {
		res = append(res, ToolParam(list[name]))
	}
	return res
}

// ToolParam returns tool definition for the Messages API.
func ToolParam(t *toolset.Tool) anthropic.ToolUnionParam {
	root := t.Schema().Root

	properties := make(map[string]any, len(root.Properties))
	for name, prop := range root.Properties {
		properties[name] = prop.Document()
	}

	inputSchema := anthropic.ToolInputSchemaParam{
		Type:       "object",
		Properties: properties,
	}
	if len(root.Required) > 0 {
		inputSchema.Required = root.Required
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        t.Name(),
			Description: anthropic.String(t.Description()),
			InputSchema: inputSchema,
		},
	}
}

// ToolCalls returns tool use blocks of the message.
func ToolCalls(msg *anthropic.Message) ([]llms.ToolCall, error) {
	if msg == nil {
		return nil, nil
	}

	var calls []llms.ToolCall
	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			call, err := FromToolUse(tu)
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
		}
	}
	return calls, nil
}

// FromToolUse converts tool use block of the message.
func FromToolUse(tu anthropic.ToolUseBlock) (llms.ToolCall, error) {
	args, err := json.Marshal(tu.Input)
	if err != nil {
		return llms.ToolCall{}, errors.Wrap(err, "anthropic: failed to marshal tool use arguments")
	}
	if string(args) == "null" {
		args = []byte("{}")
	}
	return llms.ToolCall{
		ID:   tu.ID,
		Type: llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{
			Name:      tu.Name,
			Arguments: string(args),
		},
	}, nil
}

// ToolResults returns the user message with tool results.
func ToolResults(list []llms.ToolCallResponse) anthropic.MessageParam {
	contents := make([]anthropic.ContentBlockParamUnion, 0, len(list))
	for _, r := range list {
		contents = append(contents, anthropic.NewToolResultBlock(r.ToolCallID, r.Content, r.IsError))
	}
	return anthropic.NewUserMessage(contents...)
}

// Dispatch executes tool use blocks of the message through the tools
// and returns the user message with the results.
// ok is false when the message has no tool use.
func Dispatch(ctx context.Context, list map[string]*toolset.Tool, msg *anthropic.Message, entityID string) (anthropic.MessageParam, bool, error) {
	calls, err := ToolCalls(msg)
	if err != nil {
		return anthropic.MessageParam{}, false, err
	}
	if len(calls) == 0 {
		return anthropic.MessageParam{}, false, nil
	}

	res, err := toolset.HandleToolCalls(ctx, list, calls, entityID)
	if err != nil {
		return anthropic.MessageParam{}, false, err
	}
	return ToolResults(res), true, nil
}
