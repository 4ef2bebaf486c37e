package tools

import (
	"context"
	"sort"

	"github.com/Deduction-Dev/composio/pkg/llmutils"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go  -package mocktools

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrInvalidArguments error.
	Call(context.Context, string) (string, error)
}

// Callback observes tool execution, entityID identifies the acting user.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, entityID, input string)
	OnToolEnd(ctx context.Context, tool ITool, entityID, input, output string)
	OnToolError(ctx context.Context, tool ITool, entityID, input string, err error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns the names and descriptions of the tools,
// formatted as JSON block for a prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	sort.Slice(d.Tools, func(i, j int) bool { return d.Tools[i].Name < d.Tools[j].Name })
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
