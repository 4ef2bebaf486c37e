// Package openai adapts toolset tools to the OpenAI Responses API.
package openai

import (
	"context"
	"sort"

	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
)

const outputTypeFunctionCall = "function_call"

// Tools returns function tools for the Responses API, sorted by name.
func Tools(list map[string]*toolset.Tool) []responses.ToolUnionParam {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]responses.ToolUnionParam, 0, len(names))
	for _, name := range names {
		res = append(res, ToolParam(list[name]))
	}
	return res
}

// ToolParam returns function tool for the Responses API.
func ToolParam(t *toolset.Tool) responses.ToolUnionParam {
	fn := &responses.FunctionToolParam{
		Name:       t.Name(),
		Parameters: t.Schema().Root.Document(),
		Strict:     param.NewOpt(false),
	}
	if t.Description() != "" {
		fn.Description = param.NewOpt(t.Description())
	}
	return responses.ToolUnionParam{OfFunction: fn}
}

// ToolCalls returns function calls of the response output.
func ToolCalls(resp *responses.Response) []llms.ToolCall {
	if resp == nil {
		return nil
	}

	var calls []llms.ToolCall
	for _, item := range resp.Output {
		if item.Type != outputTypeFunctionCall {
			continue
		}
		calls = append(calls, FromFunctionCall(item.AsFunctionCall()))
	}
	return calls
}

// FromFunctionCall converts function tool call of the response.
func FromFunctionCall(fc responses.ResponseFunctionToolCall) llms.ToolCall {
	return llms.ToolCall{
		ID:   fc.CallID,
		Type: llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{
			Name:      fc.Name,
			Arguments: fc.Arguments,
		},
	}
}

// Dispatch executes function calls of the response through the tools,
// results are keyed by call ID in ToolCallResponse.
func Dispatch(ctx context.Context, list map[string]*toolset.Tool, resp *responses.Response, entityID string) ([]llms.ToolCallResponse, error) {
	calls := ToolCalls(resp)
	if len(calls) == 0 {
		return nil, nil
	}
	return toolset.HandleToolCalls(ctx, list, calls, entityID)
}
