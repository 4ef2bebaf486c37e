// Package googleai adapts toolset tools to the Gemini API.
package googleai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

// RoleUser is the role of the function responses content
const RoleUser = "user"

// Tool returns a single genai tool declaring all functions, sorted by name.
func Tool(list map[string]*toolset.Tool) *genai.Tool {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		decls = append(decls, FunctionDeclaration(list[name]))
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

// FunctionDeclaration returns the function declaration of the tool.
func FunctionDeclaration(t *toolset.Tool) *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  ConvertNode(t.Schema().Root),
	}
}

// ConvertNode converts the schema Node to genai.Schema.
func ConvertNode(n *schema.Node) *genai.Schema {
	if n == nil {
		return nil
	}

	s := &genai.Schema{
		Title:       n.Title,
		Description: n.Description,
		Default:     n.Default,
	}
	if n.Nullable {
		nullable := true
		s.Nullable = &nullable
	}

	switch n.Kind {
	case schema.KindObject:
		s.Type = genai.TypeObject
		names := n.PropertyNames()
		if len(names) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(names))
			for _, name := range names {
				s.Properties[name] = ConvertNode(n.Properties[name])
			}
			s.PropertyOrdering = names
		}
		if len(n.Required) > 0 {
			s.Required = n.Required
		}
	case schema.KindArray:
		s.Type = genai.TypeArray
		if n.Items != nil {
			s.Items = ConvertNode(n.Items)
		}
	case schema.KindEnum:
		// Gemini supports only string enums
		s.Type = genai.TypeString
		s.Format = "enum"
		for _, v := range n.Enum {
			s.Enum = append(s.Enum, fmt.Sprint(v))
		}
	case schema.KindString:
		s.Type = genai.TypeString
	case schema.KindNumber:
		s.Type = genai.TypeNumber
	case schema.KindInteger:
		s.Type = genai.TypeInteger
	case schema.KindBoolean:
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeUnspecified
	}
	return s
}

// ToolCalls returns function calls of the response.
func ToolCalls(resp *genai.GenerateContentResponse) ([]llms.ToolCall, error) {
	if resp == nil {
		return nil, nil
	}

	// only the first candidate is dispatched
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var calls []llms.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		call, err := FromFunctionCall(part.FunctionCall)
		if err != nil {
			return nil, errors.Wrapf(err, "function call [%d]", len(calls))
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// FromFunctionCall converts function call of the response.
func FromFunctionCall(fc *genai.FunctionCall) (llms.ToolCall, error) {
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	js, err := json.Marshal(args)
	if err != nil {
		return llms.ToolCall{}, errors.Wrap(err, "googleai: failed to marshal function call arguments")
	}
	return llms.ToolCall{
		ID:   fc.ID,
		Type: llms.ToolTypeFunction,
		FunctionCall: &llms.FunctionCall{
			Name:      fc.Name,
			Arguments: string(js),
		},
	}, nil
}

// FunctionResponses returns the user content with function responses.
func FunctionResponses(list []llms.ToolCallResponse) *genai.Content {
	parts := make([]*genai.Part, 0, len(list))
	for _, r := range list {
		key := "response"
		if r.IsError {
			key = "error"
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       r.ToolCallID,
				Name:     r.Name,
				Response: map[string]any{key: r.Content},
			},
		})
	}
	return &genai.Content{
		Role:  RoleUser,
		Parts: parts,
	}
}

// Dispatch executes function calls of the response through the tools
// and returns the content with function responses, nil if there are no calls.
func Dispatch(ctx context.Context, list map[string]*toolset.Tool, resp *genai.GenerateContentResponse, entityID string) (*genai.Content, error) {
	calls, err := ToolCalls(resp)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return nil, nil
	}

	res, err := toolset.HandleToolCalls(ctx, list, calls, entityID)
	if err != nil {
		return nil, err
	}
	return FunctionResponses(res), nil
}
