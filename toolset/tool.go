package toolset

import (
	"context"
	"time"

	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/pkg/llms"
	"github.com/Deduction-Dev/composio/pkg/metricskey"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/Deduction-Dev/composio/tools"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
)

// Executor executes the tool invocation on behalf of the entity.
type Executor func(ctx context.Context, inv ToolInvocation, entityID string) (string, error)

// Tool is a callable remote action.
type Tool struct {
	action   *composio.ActionSchema
	params   *schema.Parameters
	exec     Executor
	entityID string
	callback tools.Callback
}

// ensure compliance
var _ tools.ITool = (*Tool)(nil)

// NewTool returns Tool for the action,
// exec is called with the action name and entityID on each execution.
// No remote call is made until the tool is executed.
func NewTool(action *composio.ActionSchema, exec Executor, entityID string, cb tools.Callback) (*Tool, error) {
	if action == nil || action.Name == "" {
		return nil, errors.New("action name is required")
	}
	if exec == nil {
		return nil, errors.New("executor is required")
	}

	params, err := schema.Convert(action.Parameters)
	if err != nil {
		return nil, errors.Wrapf(err, "action %s", action.Name)
	}

	return &Tool{
		action:   action,
		params:   params,
		exec:     exec,
		entityID: entityID,
		callback: cb,
	}, nil
}

// Name returns the action name.
func (t *Tool) Name() string {
	return t.action.Name
}

// Description returns the action description verbatim.
func (t *Tool) Description() string {
	return t.action.Description
}

// Parameters returns the parameters definition, *jsonschema.Schema.
func (t *Tool) Parameters() any {
	return t.params.Schema
}

// Schema returns the converted parameters schema.
func (t *Tool) Schema() *schema.Parameters {
	return t.params
}

// Action returns the action schema the tool was built from.
func (t *Tool) Action() *composio.ActionSchema {
	return t.action
}

// EntityID returns the entity the tool executes for.
func (t *Tool) EntityID() string {
	return t.entityID
}

// Definition returns the function definition for LLM calls.
func (t *Tool) Definition() llms.Tool {
	return llms.Tool{
		Type: llms.ToolTypeFunction,
		Function: &llms.FunctionDefinition{
			Name:        t.action.Name,
			Description: t.action.Description,
			Parameters:  t.params.Schema,
		},
	}
}

// Execute validates the arguments and executes the action.
// The result is returned as produced by the executor.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return t.execute(ctx, args, t.entityID)
}

// Call parses the model produced JSON input and executes the action.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return t.Invoke(ctx, input, "")
}

// Invoke is Call on behalf of entityID,
// empty entityID means the entity of the tool.
func (t *Tool) Invoke(ctx context.Context, input, entityID string) (string, error) {
	entity := values.StringsCoalesce(entityID, t.entityID)
	if t.callback != nil {
		t.callback.OnToolStart(ctx, t, entity, input)
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, t.Name())

	output, err := t.call(ctx, input, entity)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, t.Name())
		if t.callback != nil {
			t.callback.OnToolError(ctx, t, entity, input, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, t.Name())
	if t.callback != nil {
		t.callback.OnToolEnd(ctx, t, entity, input, output)
	}
	return output, nil
}

func (t *Tool) call(ctx context.Context, input, entityID string) (string, error) {
	args, err := parseInput(input)
	if err != nil {
		metricskey.StatsToolCallsInvalidArguments.IncrCounter(1, t.Name())
		return "", errors.Wrapf(err, "action %s", t.Name())
	}
	return t.execute(ctx, args, entityID)
}

func (t *Tool) execute(ctx context.Context, args map[string]any, entityID string) (string, error) {
	if err := t.params.Validate(args); err != nil {
		metricskey.StatsToolCallsInvalidArguments.IncrCounter(1, t.Name())
		return "", errors.Wrapf(err, "action %s", t.Name())
	}
	if args == nil {
		args = map[string]any{}
	}
	return t.exec(ctx, ToolInvocation{Name: t.Name(), Arguments: args}, entityID)
}
