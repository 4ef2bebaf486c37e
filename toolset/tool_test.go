package toolset_test

import (
	"context"
	"testing"

	"github.com/Deduction-Dev/composio/mocks/mocktools"
	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/Deduction-Dev/composio/tools"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recorder struct {
	calls []toolset.ToolInvocation
	ids   []string
	out   string
	err   error
}

func (r *recorder) exec(_ context.Context, inv toolset.ToolInvocation, entityID string) (string, error) {
	r.calls = append(r.calls, inv)
	r.ids = append(r.ids, entityID)
	return r.out, r.err
}

func TestNewTool(t *testing.T) {
	r := &recorder{}

	_, err := toolset.NewTool(nil, r.exec, "", nil)
	assert.EqualError(t, err, "action name is required")
	_, err = toolset.NewTool(starRepoAction(), nil, "", nil)
	assert.EqualError(t, err, "executor is required")

	_, err = toolset.NewTool(badAction(), r.exec, "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrSchemaConversion))

	tool, err := toolset.NewTool(&composio.ActionSchema{Name: "NO_PARAMS", Description: "No params"}, r.exec, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, "object", tool.Schema().Schema.Type)
	assert.Empty(t, r.calls, "construction must not execute")

	def := tool.Definition()
	assert.Equal(t, "NO_PARAMS", def.Function.Name)
	assert.Equal(t, "No params", def.Function.Description)
}

func TestTool_Execute(t *testing.T) {
	ctx := context.Background()
	r := &recorder{out: `{"starred":true}`}

	tool, err := toolset.NewTool(starRepoAction(), r.exec, "Jessica", nil)
	require.NoError(t, err)
	assert.Equal(t, "Jessica", tool.EntityID())
	assert.Equal(t, "github", tool.Action().AppName)

	_, err = tool.Execute(ctx, map[string]any{"owner": "octo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))
	assert.Contains(t, err.Error(), "action GITHUB_STAR_REPO: invalid arguments")

	_, err = tool.Execute(ctx, map[string]any{"owner": 1, "repo": "hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))

	_, err = tool.Execute(ctx, nil)
	require.Error(t, err)
	assert.Empty(t, r.calls, "invalid arguments must not reach the executor")

	args := map[string]any{"owner": "octo", "repo": "hello"}
	out, err := tool.Execute(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, `{"starred":true}`, out)
	require.Len(t, r.calls, 1)
	assert.Equal(t, toolset.ToolInvocation{Name: "GITHUB_STAR_REPO", Arguments: args}, r.calls[0])
	assert.Equal(t, []string{"Jessica"}, r.ids)
}

func TestTool_Call(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cb := mocktools.NewMockCallback(ctrl)
	r := &recorder{out: `"ok"`}

	tool, err := toolset.NewTool(starRepoAction(), r.exec, toolset.DefaultEntityID, cb)
	require.NoError(t, err)

	input := "Here you go:\n```json\n{\"owner\":\"octo\",\"repo\":\"hello\"}\n```"
	gomock.InOrder(
		cb.EXPECT().OnToolStart(ctx, tool, toolset.DefaultEntityID, input),
		cb.EXPECT().OnToolEnd(ctx, tool, toolset.DefaultEntityID, input, `"ok"`),
	)
	out, err := tool.Call(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, out)
	require.Len(t, r.calls, 1)
	assert.Equal(t, map[string]any{"owner": "octo", "repo": "hello"}, r.calls[0].Arguments)

	gomock.InOrder(
		cb.EXPECT().OnToolStart(ctx, tool, toolset.DefaultEntityID, "plain string"),
		cb.EXPECT().OnToolError(ctx, tool, toolset.DefaultEntityID, "plain string", gomock.Any()),
	)
	_, err = tool.Call(ctx, "plain string")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))

	r.err = errors.New("remote failed")
	gomock.InOrder(
		cb.EXPECT().OnToolStart(ctx, tool, toolset.DefaultEntityID, `{"owner":"a","repo":"b"}`),
		cb.EXPECT().OnToolError(ctx, tool, toolset.DefaultEntityID, `{"owner":"a","repo":"b"}`, r.err),
	)
	_, err = tool.Call(ctx, `{"owner":"a","repo":"b"}`)
	assert.Equal(t, r.err, err)
	assert.Len(t, r.calls, 2)
}

func TestTool_Descriptions(t *testing.T) {
	r := &recorder{}
	star, err := toolset.NewTool(starRepoAction(), r.exec, "", nil)
	require.NoError(t, err)
	issues, err := toolset.NewTool(listIssuesAction(), r.exec, "", nil)
	require.NoError(t, err)

	exp := "\n```json\n" + `{
	"Tools": [
		{
			"Name": "GITHUB_LIST_ISSUES",
			"Description": "List issues of a repository"
		},
		{
			"Name": "GITHUB_STAR_REPO",
			"Description": "Star a repository on GitHub"
		}
	]
}` + "\n```\n"
	assert.Equal(t, exp, tools.GetDescriptions(star, issues))
}
