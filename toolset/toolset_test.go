package toolset_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Deduction-Dev/composio/mocks/mockcomposio"
	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/Deduction-Dev/composio/store"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const starRepoParams = `{
	"title": "StarRepoRequest",
	"type": "object",
	"properties": {
		"owner": {"type": "string", "description": "Repo owner"},
		"repo": {"type": "string", "description": "Repo name"}
	},
	"required": ["owner", "repo"]
}`

func starRepoAction() *composio.ActionSchema {
	return &composio.ActionSchema{
		Name:        "GITHUB_STAR_REPO",
		Description: "Star a repository on GitHub",
		Parameters:  json.RawMessage(starRepoParams),
		AppName:     "github",
		Tags:        []string{"repo"},
		Enabled:     true,
	}
}

func listIssuesAction() *composio.ActionSchema {
	return &composio.ActionSchema{
		Name:        "GITHUB_LIST_ISSUES",
		Description: "List issues of a repository",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo": {"type": "string"},
				"state": {"type": "string", "enum": ["open", "closed"]},
				"labels": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["repo"]
		}`),
		AppName: "github",
	}
}

func badAction() *composio.ActionSchema {
	return &composio.ActionSchema{
		Name:        "BROKEN",
		Description: "Broken schema",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"a":{"description":"no type"}}}`),
	}
}

func newToolset(t *testing.T, opts ...toolset.Option) (*toolset.Toolset, *mockcomposio.MockAPI) {
	ctrl := gomock.NewController(t)
	client := mockcomposio.NewMockAPI(ctrl)

	ts, err := toolset.New(&toolset.Config{}, append([]toolset.Option{toolset.WithClient(client)}, opts...)...)
	require.NoError(t, err)
	return ts, client
}

func TestNew(t *testing.T) {
	t.Setenv(composio.EnvAPIKey, "")

	_, err := toolset.New(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, composio.ErrMissingAPIKey))

	ts, err := toolset.New(&toolset.Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, toolset.DefaultEntityID, ts.EntityID())

	ts, err = toolset.New(&toolset.Config{APIKey: "key", EntityID: "Jessica"})
	require.NoError(t, err)
	assert.Equal(t, "Jessica", ts.EntityID())

	_, err = toolset.New(&toolset.Config{APIKey: "key", SchemaErrorPolicy: "ignore"})
	assert.EqualError(t, err, `unsupported schema error policy: "ignore"`)

	_, err = toolset.New(&toolset.Config{APIKey: "key"}, toolset.WithSchemaErrorPolicy("retry"))
	assert.EqualError(t, err, `unsupported schema error policy: "retry"`)
}

func TestGetTools(t *testing.T) {
	ctx := context.Background()
	ts, client := newToolset(t)

	filter := &toolset.Filter{Apps: []string{"github"}}
	client.EXPECT().
		ListActions(gomock.Any(), &composio.ListActionsRequest{Apps: []string{"github"}}).
		Return([]*composio.ActionSchema{starRepoAction(), listIssuesAction()}, nil)

	list, err := ts.GetTools(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, action := range []*composio.ActionSchema{starRepoAction(), listIssuesAction()} {
		tool := list[action.Name]
		require.NotNil(t, tool, action.Name)
		assert.Equal(t, action.Name, tool.Name())
		assert.Equal(t, action.Description, tool.Description())
		assert.Equal(t, toolset.DefaultEntityID, tool.EntityID())
		assert.Same(t, tool.Schema().Schema, tool.Parameters())
	}

	star := list["GITHUB_STAR_REPO"]
	assert.Equal(t, []string{"owner", "repo"}, star.Schema().Schema.Required)

	defs := toolset.Definitions(list)
	require.Len(t, defs, 2)
	assert.Equal(t, "GITHUB_LIST_ISSUES", defs[0].Function.Name)
	assert.Equal(t, "GITHUB_STAR_REPO", defs[1].Function.Name)
	assert.Equal(t, llms.ToolTypeFunction, defs[1].Type)
	assert.Equal(t, "Star a repository on GitHub", defs[1].Function.Description)

	itools := toolset.ITools(list)
	require.Len(t, itools, 2)
	assert.Equal(t, "GITHUB_LIST_ISSUES", itools[0].Name())
}

func TestGetTools_Empty(t *testing.T) {
	ts, client := newToolset(t)

	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).Return(nil, nil)

	list, err := ts.GetTools(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetTools_NoCaching(t *testing.T) {
	ts, client := newToolset(t)
	filter := &toolset.Filter{Tags: []string{"repo"}}

	gomock.InOrder(
		client.EXPECT().ListActions(gomock.Any(), gomock.Any()).
			Return([]*composio.ActionSchema{starRepoAction()}, nil),
		client.EXPECT().ListActions(gomock.Any(), gomock.Any()).
			Return([]*composio.ActionSchema{starRepoAction(), listIssuesAction()}, nil),
	)

	first, err := ts.GetTools(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := ts.GetTools(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestGetTools_RemoteError(t *testing.T) {
	ts, client := newToolset(t)

	remoteErr := &composio.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid api key"}
	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).Return(nil, remoteErr)

	_, err := ts.GetTools(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, remoteErr, err)
}

func TestGetTools_InvalidFilter(t *testing.T) {
	// no remote calls expected
	ts, _ := newToolset(t)

	for _, f := range []*toolset.Filter{
		{UseCase: "star a repo", UseCaseLimit: -1},
		{Apps: []string{"github", ""}},
	} {
		_, err := ts.GetTools(context.Background(), f)
		require.Error(t, err)
		assert.True(t, errors.Is(err, toolset.ErrInvalidFilter))
	}
}

func TestGetTools_SchemaErrorPolicy(t *testing.T) {
	ctx := context.Background()
	actions := []*composio.ActionSchema{starRepoAction(), badAction()}

	ts, client := newToolset(t)
	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).Return(actions, nil)

	_, err := ts.GetTools(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrSchemaConversion))
	assert.EqualError(t, err, "action BROKEN: $.a: missing type")

	ts, client = newToolset(t, toolset.WithSchemaErrorPolicy(toolset.SchemaErrorSkip))
	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).Return(actions, nil)

	list, err := ts.GetTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list["GITHUB_STAR_REPO"])
}

func TestGetTools_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "github,slack", q.Get("apps"))
		assert.False(t, q.Has("tags"))
		assert.False(t, q.Has("useCase"))
		assert.False(t, q.Has("actions"))
		assert.False(t, q.Has("usecaseLimit"))
		assert.False(t, q.Has("filterByAvailableApps"))
		_, _ = io.WriteString(w, `{"items":[]}`)
	}))
	defer server.Close()

	ts, err := toolset.New(&toolset.Config{APIKey: "key", BaseURL: server.URL}, toolset.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	list, err := ts.GetTools(context.Background(), &toolset.Filter{Apps: []string{"github", "slack"}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExecuteToolCall(t *testing.T) {
	ctx := context.Background()
	ts, client := newToolset(t)

	client.EXPECT().
		ExecuteAction(gomock.Any(), &composio.ExecuteActionRequest{
			Action:   "X",
			Params:   map[string]any{"a": float64(1)},
			EntityID: "Jessica",
		}).
		Return(json.RawMessage(`{ "data": {"ok": true}, "successful": true }`), nil)

	res, err := ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X", Arguments: `{"a":1}`}, "Jessica")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"ok":true},"successful":true}`, res)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(res), &decoded))
	assert.Equal(t, true, decoded["successful"])
}

func TestExecuteToolCall_DefaultEntity(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	client := mockcomposio.NewMockAPI(ctrl)
	ts, err := toolset.New(&toolset.Config{EntityID: "Jessica"}, toolset.WithClient(client))
	require.NoError(t, err)

	client.EXPECT().
		ExecuteAction(gomock.Any(), &composio.ExecuteActionRequest{
			Action:   "X",
			Params:   map[string]any{"a": "b"},
			EntityID: "Jessica",
		}).
		Return(json.RawMessage(`"done"`), nil)

	res, err := ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X", Arguments: map[string]any{"a": "b"}}, "")
	require.NoError(t, err)
	assert.Equal(t, `"done"`, res)

	ts, client = newToolset(t)
	client.EXPECT().
		ExecuteAction(gomock.Any(), &composio.ExecuteActionRequest{
			Action:   "X",
			Params:   map[string]any{},
			EntityID: toolset.DefaultEntityID,
		}).
		Return(nil, nil)

	res, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X"}, "")
	require.NoError(t, err)
	assert.Equal(t, "null", res)
}

func TestExecuteToolCall_Errors(t *testing.T) {
	ctx := context.Background()
	ts, client := newToolset(t)

	_, err := ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X", Arguments: `{"a":`}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))
	assert.Contains(t, err.Error(), `{\"a\":`)

	_, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X", Arguments: `[1,2]`}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))

	_, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Arguments: `{}`}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolset.ErrInvalidArguments))

	remoteErr := errors.New("connection refused")
	client.EXPECT().ExecuteAction(gomock.Any(), gomock.Any()).Return(nil, remoteErr)
	_, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X"}, "")
	assert.Equal(t, remoteErr, err)
}

type panicSink struct{}

func (panicSink) Record(context.Context, string, map[string]any) {
	panic("telemetry is down")
}

func TestTelemetry(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	ts, client := newToolset(t, toolset.WithTelemetry(telemetry.Fanout{telemetry.NewStore(st), panicSink{}}))

	filter := &toolset.Filter{Apps: []string{"github"}}
	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).Return([]*composio.ActionSchema{starRepoAction()}, nil)
	client.EXPECT().ExecuteAction(gomock.Any(), gomock.Any()).Return(json.RawMessage(`{}`), nil)

	_, err := ts.GetTools(ctx, filter)
	require.NoError(t, err)
	_, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X", Arguments: `{"a":1}`}, "Jessica")
	require.NoError(t, err)
	require.NoError(t, ts.Close())
	require.NoError(t, ts.Close())

	events, err := st.Events(ctx, toolset.SourceComponent)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, toolset.EventGetTools, events[0].Name)
	params := events[0].Metadata[telemetry.KeyParams].(map[string]any)
	assert.Equal(t, map[string]any{"apps": []any{"github"}}, params["filter"])

	assert.Equal(t, toolset.EventExecuteToolCall, events[1].Name)
	params = events[1].Metadata[telemetry.KeyParams].(map[string]any)
	assert.Equal(t, "X", params["name"])
	assert.Equal(t, "Jessica", params["entityId"])
	assert.Equal(t, `{"a":1}`, params["arguments"])
}

type blockingSink struct {
	release chan struct{}
	events  chan string
}

func (s *blockingSink) Record(_ context.Context, event string, _ map[string]any) {
	<-s.release
	s.events <- event
}

func TestTelemetry_NonBlocking(t *testing.T) {
	ctx := context.Background()
	sink := &blockingSink{release: make(chan struct{}), events: make(chan string, 1)}
	ts, client := newToolset(t, toolset.WithTelemetry(sink))

	client.EXPECT().ExecuteAction(gomock.Any(), gomock.Any()).Return(json.RawMessage(`{}`), nil)

	// returns while the sink is still blocked
	_, err := ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "X"}, "")
	require.NoError(t, err)

	close(sink.release)
	require.NoError(t, ts.Close())
	assert.Equal(t, toolset.EventExecuteToolCall, <-sink.events)
}

func TestTelemetry_Snapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(100)
	sink := telemetry.NewAsync(telemetry.NewStore(st), 100)
	ts, client := newToolset(t, toolset.WithTelemetry(sink))

	client.EXPECT().ExecuteAction(gomock.Any(), gomock.Any()).Return(json.RawMessage(`{}`), nil).Times(50)

	args := map[string]any{"owner": "octo", "repo": "hello", "labels": []any{"bug"}}
	for range 50 {
		_, err := ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: "GITHUB_STAR_REPO", Arguments: args}, "")
		require.NoError(t, err)
		args["owner"] = "mutated"
		args["labels"] = []any{"changed"}
	}
	require.NoError(t, sink.Close())

	events, err := st.Events(ctx, toolset.SourceComponent)
	require.NoError(t, err)
	require.Len(t, events, 50)

	params := events[0].Metadata[telemetry.KeyParams].(map[string]any)
	recorded := params["arguments"].(map[string]any)
	assert.Equal(t, "octo", recorded["owner"])
	assert.Equal(t, []any{"bug"}, recorded["labels"])

	params = events[1].Metadata[telemetry.KeyParams].(map[string]any)
	assert.Equal(t, "mutated", params["arguments"].(map[string]any)["owner"])
}

func TestHandleToolCalls(t *testing.T) {
	ctx := context.Background()
	ts, client := newToolset(t)

	client.EXPECT().ListActions(gomock.Any(), gomock.Any()).
		Return([]*composio.ActionSchema{starRepoAction(), listIssuesAction()}, nil)
	list, err := ts.GetTools(ctx, nil)
	require.NoError(t, err)

	client.EXPECT().
		ExecuteAction(gomock.Any(), &composio.ExecuteActionRequest{
			Action:   "GITHUB_STAR_REPO",
			Params:   map[string]any{"owner": "octo", "repo": "hello"},
			EntityID: "Jessica",
		}).
		Return(json.RawMessage(`{"starred":true}`), nil)
	client.EXPECT().
		ExecuteAction(gomock.Any(), &composio.ExecuteActionRequest{
			Action:   "GITHUB_LIST_ISSUES",
			Params:   map[string]any{"repo": "hello"},
			EntityID: "Jessica",
		}).
		Return(nil, &composio.APIError{StatusCode: http.StatusNotFound, Message: "repo not found"})

	calls := []llms.ToolCall{
		{ID: "call_1", Type: llms.ToolTypeFunction, FunctionCall: &llms.FunctionCall{
			Name: "GITHUB_STAR_REPO", Arguments: `{"owner":"octo","repo":"hello"}`,
		}},
		{ID: "call_2", Type: llms.ToolTypeFunction, FunctionCall: &llms.FunctionCall{
			Name: "GITHUB_LIST_ISSUES", Arguments: `{"repo":"hello"}`,
		}},
		{ID: "call_3", Type: "web_search"},
		{ID: "call_4", FunctionCall: &llms.FunctionCall{
			Name: "GITHUB_LIST_ISSUES", Arguments: `not json`,
		}},
		{ID: "call_5", FunctionCall: &llms.FunctionCall{
			Name: "GITHUB_STAR_REPO", Arguments: `{"owner":"octo"}`,
		}},
		{ID: "call_6", FunctionCall: &llms.FunctionCall{
			Name: "GITHUB_DELETE_REPO", Arguments: `{}`,
		}},
	}

	res, err := toolset.HandleToolCalls(ctx, list, calls, "Jessica")
	require.NoError(t, err)
	require.Len(t, res, 6)

	assert.Equal(t, llms.ToolCallResponse{ToolCallID: "call_1", Name: "GITHUB_STAR_REPO", Content: `{"starred":true}`}, res[0])

	assert.Equal(t, "call_2", res[1].ToolCallID)
	assert.True(t, res[1].IsError)
	assert.Equal(t, "composio: API returned unexpected status code: 404: repo not found", res[1].Content)

	assert.Equal(t, "call_3", res[2].ToolCallID)
	assert.True(t, res[2].IsError)
	assert.Equal(t, "unsupported tool call type: web_search", res[2].Content)

	assert.Equal(t, "call_4", res[3].ToolCallID)
	assert.True(t, res[3].IsError)
	assert.Contains(t, res[3].Content, "action GITHUB_LIST_ISSUES: unable to parse arguments")

	// missing required field never reaches the platform
	assert.Equal(t, "call_5", res[4].ToolCallID)
	assert.True(t, res[4].IsError)
	assert.Contains(t, res[4].Content, "action GITHUB_STAR_REPO: invalid arguments")

	assert.Equal(t, llms.ToolCallResponse{
		ToolCallID: "call_6",
		Name:       "GITHUB_DELETE_REPO",
		Content:    "tool not found: GITHUB_DELETE_REPO",
		IsError:    true,
	}, res[5])
}

func TestHandleToolCalls_DefaultEntity(t *testing.T) {
	ctx := context.Background()
	r := &recorder{out: `"ok"`}
	tool, err := toolset.NewTool(starRepoAction(), r.exec, "Jessica", nil)
	require.NoError(t, err)
	list := map[string]*toolset.Tool{tool.Name(): tool}

	call := llms.ToolCall{ID: "call_1", FunctionCall: &llms.FunctionCall{
		Name: "GITHUB_STAR_REPO", Arguments: `{"owner":"octo","repo":"hello"}`,
	}}
	_, err = toolset.HandleToolCalls(ctx, list, []llms.ToolCall{call}, "")
	require.NoError(t, err)
	_, err = toolset.HandleToolCalls(ctx, list, []llms.ToolCall{call}, "Alex")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jessica", "Alex"}, r.ids)
}

func TestHandleToolCalls_Canceled(t *testing.T) {
	r := &recorder{}
	tool, err := toolset.NewTool(&composio.ActionSchema{Name: "X"}, r.exec, "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = toolset.HandleToolCalls(ctx, map[string]*toolset.Tool{"X": tool}, []llms.ToolCall{
		{ID: "call_1", FunctionCall: &llms.FunctionCall{Name: "X", Arguments: `{}`}},
	}, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.calls)
}
