package toolset

import (
	"context"

	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/errgroup"
)

// HandleToolCalls executes the model issued tool calls concurrently
// and returns responses in the order of the calls.
// Each call goes through Tool.Invoke of the tool with the called name,
// so arguments are validated before the action is executed.
// A failed or unknown call is reported as a response with IsError set,
// the error is returned only when the context is done.
func HandleToolCalls(ctx context.Context, list map[string]*Tool, calls []llms.ToolCall, entityID string) ([]llms.ToolCallResponse, error) {
	res := make([]llms.ToolCallResponse, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		res[i].ToolCallID = call.ID
		if call.FunctionCall == nil || (call.Type != "" && call.Type != llms.ToolTypeFunction) {
			res[i].Content = "unsupported tool call type: " + call.Type
			res[i].IsError = true
			continue
		}
		res[i].Name = call.FunctionCall.Name

		tool := list[call.FunctionCall.Name]
		if tool == nil {
			res[i].Content = "tool not found: " + call.FunctionCall.Name
			res[i].IsError = true
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := tool.Invoke(gctx, call.FunctionCall.Arguments, entityID)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				logger.ContextKV(gctx, xlog.DEBUG,
					"tool_call", call.ID,
					"action", call.FunctionCall.Name,
					"err", err.Error(),
				)
				res[i].Content = err.Error()
				res[i].IsError = true
				return nil
			}
			res[i].Content = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
