// Package toolset converts remote platform actions into tools
// callable by agent frameworks and forwards tool calls to the platform.
package toolset

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/pkg/metricskey"
	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/Deduction-Dev/composio/tools"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/Deduction-Dev/composio", "toolset")

const (
	// DefaultEntityID is the acting user when none is configured
	DefaultEntityID = "default"
	// SourceComponent identifies the toolset in telemetry events
	SourceComponent = "GoToolset"

	EventGetTools        = "getTools"
	EventExecuteToolCall = "executeToolCall"
)

// Toolset produces tools for the platform actions.
// It holds no state beyond configuration and is safe for concurrent use.
type Toolset struct {
	client    composio.API
	entityID  string
	policy    SchemaErrorPolicy
	telemetry telemetry.Sink
	owned     *telemetry.Async
	callback  tools.Callback
}

// New returns Toolset.
// Without WithClient option the platform client is created from the config,
// which fails if the API key is not provided.
func New(cfg *Config, opts ...Option) (*Toolset, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	o := &options{
		policy: cfg.SchemaErrorPolicy,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.policy.Validate(); err != nil {
		return nil, err
	}

	client := o.client
	if client == nil {
		var copts []composio.Option
		if cfg.BaseURL != "" {
			copts = append(copts, composio.WithBaseURL(cfg.BaseURL))
		}
		if o.httpClient != nil {
			copts = append(copts, composio.WithHTTPClient(o.httpClient))
		}
		c, err := composio.New(cfg.APIKey, copts...)
		if err != nil {
			return nil, err
		}
		client = c
	}

	var owned *telemetry.Async
	sink := o.telemetry
	switch sink.(type) {
	case nil:
		sink = telemetry.Noop
	case *telemetry.Async, *telemetry.Pipeline:
	default:
		// delivery must not run on the caller's goroutine
		owned = telemetry.NewAsync(sink, 0)
		sink = owned
	}
	policy := o.policy
	if policy == "" {
		policy = SchemaErrorFail
	}

	return &Toolset{
		client:    client,
		entityID:  values.StringsCoalesce(cfg.EntityID, DefaultEntityID),
		policy:    policy,
		telemetry: sink,
		owned:     owned,
		callback:  o.callback,
	}, nil
}

// Close delivers pending telemetry events of a sink wrapped by New.
// Sinks of type *telemetry.Async or *telemetry.Pipeline are closed by their owner.
func (ts *Toolset) Close() error {
	if ts.owned == nil {
		return nil
	}
	return ts.owned.Close()
}

// EntityID returns the default acting user.
func (ts *Toolset) EntityID() string {
	return ts.entityID
}

// GetTools returns tools for the actions matching the filter, keyed by action name.
// No matching actions is not an error.
// Errors of the platform client are returned unmodified.
func (ts *Toolset) GetTools(ctx context.Context, filter *Filter) (map[string]*Tool, error) {
	ts.record(ctx, EventGetTools, map[string]any{
		"filter":   filter,
		"entityId": ts.entityID,
	})

	list, err := ts.GetActionSchemas(ctx, filter)
	if err != nil {
		return nil, err
	}

	res := make(map[string]*Tool, len(list))
	for _, action := range list {
		if action == nil {
			continue
		}
		tool, err := NewTool(action, ts.ExecuteToolCall, ts.entityID, ts.callback)
		if err != nil {
			if ts.policy == SchemaErrorSkip {
				metricskey.StatsSchemaConversionFailed.IncrCounter(1, action.Name)
				logger.ContextKV(ctx, xlog.WARNING,
					"reason", "skip_action",
					"action", action.Name,
					"err", err.Error(),
				)
				continue
			}
			return nil, err
		}
		res[tool.Name()] = tool
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"actions", len(list),
		"tools", len(res),
	)
	return res, nil
}

// GetActionSchemas returns the action schemas matching the filter.
func (ts *Toolset) GetActionSchemas(ctx context.Context, filter *Filter) ([]*composio.ActionSchema, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	list, err := ts.client.ListActions(ctx, filter.Request())
	if err != nil {
		return nil, err
	}
	metricskey.StatsActionsFetched.IncrCounter(float64(len(list)), ts.entityID)
	return list, nil
}

// ExecuteToolCall executes the action on behalf of entityID,
// empty entityID means the configured default.
// The remote result is returned as one JSON encoded string.
func (ts *Toolset) ExecuteToolCall(ctx context.Context, inv ToolInvocation, entityID string) (string, error) {
	args := inv.Arguments
	if b, ok := args.([]byte); ok {
		args = string(b)
	}
	ts.record(ctx, EventExecuteToolCall, map[string]any{
		"name":      inv.Name,
		"arguments": args,
		"entityId":  entityID,
	})

	if inv.Name == "" {
		return "", errors.Mark(errors.New("tool name is required"), ErrInvalidArguments)
	}

	params, err := NormalizeArguments(inv.Arguments)
	if err != nil {
		return "", errors.Wrapf(err, "action %s", inv.Name)
	}

	entity := values.StringsCoalesce(entityID, ts.entityID)
	raw, err := ts.client.ExecuteAction(ctx, &composio.ExecuteActionRequest{
		Action:   inv.Name,
		Params:   params,
		EntityID: entity,
	})
	if err != nil {
		return "", err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"action", inv.Name,
		"entity", entity,
		"result_size", len(raw),
	)
	return encodeResult(raw)
}

// record sends the event to telemetry, a failing sink never affects the caller
func (ts *Toolset) record(ctx context.Context, event string, params map[string]any) {
	defer func() {
		if v := recover(); v != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "telemetry",
				"event", event,
				"err", v,
			)
		}
	}()
	ts.telemetry.Record(ctx, event, map[string]any{
		telemetry.KeySource: SourceComponent,
		telemetry.KeyParams: snapshot(params),
	})
}

// snapshot returns a copy of params sharing no references with the caller,
// as sinks may read the event after the call returns.
func snapshot(params map[string]any) map[string]any {
	js, err := json.Marshal(params)
	if err == nil {
		var m map[string]any
		if err = json.Unmarshal(js, &m); err == nil {
			return m
		}
	}
	return map[string]any{"error": "unable to encode params: " + err.Error()}
}

// Definitions returns the function definitions of the tools, sorted by name.
func Definitions(list map[string]*Tool) []llms.Tool {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]llms.Tool, 0, len(names))
	for _, name := range names {
		res = append(res, list[name].Definition())
	}
	return res
}

// ITools returns the tools as tools.ITool, sorted by name.
func ITools(list map[string]*Tool) []tools.ITool {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]tools.ITool, 0, len(names))
	for _, name := range names {
		res = append(res, list[name])
	}
	return res
}
