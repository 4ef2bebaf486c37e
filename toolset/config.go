package toolset

import (
	"net/http"

	"github.com/Deduction-Dev/composio/pkg/composio"
	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/Deduction-Dev/composio/tools"
	"github.com/cockroachdb/errors"
)

// SchemaErrorPolicy specifies how GetTools handles an action
// with malformed parameters schema.
type SchemaErrorPolicy string

const (
	// SchemaErrorFail aborts the fetch
	SchemaErrorFail SchemaErrorPolicy = "fail"
	// SchemaErrorSkip logs a warning and drops the action
	SchemaErrorSkip SchemaErrorPolicy = "skip"
)

// Validate returns error if the policy is unknown.
func (p SchemaErrorPolicy) Validate() error {
	switch p {
	case "", SchemaErrorFail, SchemaErrorSkip:
		return nil
	}
	return errors.Errorf("unsupported schema error policy: %q", string(p))
}

// Config of the Toolset.
// All fields are optional.
type Config struct {
	// APIKey of the platform, COMPOSIO_API_KEY environment variable is used if empty
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL of the platform, COMPOSIO_BASE_URL environment variable or
	// https://backend.composio.dev is used if empty
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// EntityID is the default acting user, "default" if empty
	EntityID string `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	// SchemaErrorPolicy is fail|skip, fail if empty
	SchemaErrorPolicy SchemaErrorPolicy `json:"schema_error_policy,omitempty" yaml:"schema_error_policy,omitempty"`
}

type options struct {
	client     composio.API
	httpClient composio.Doer
	telemetry  telemetry.Sink
	callback   tools.Callback
	policy     SchemaErrorPolicy
}

// Option configures the Toolset.
type Option func(*options)

// WithClient sets the platform client, APIKey and BaseURL of the Config are ignored.
func WithClient(client composio.API) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets HTTP client for the platform client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTelemetry sets the telemetry sink.
// A sink other than *telemetry.Async or *telemetry.Pipeline is wrapped
// in telemetry.Async, call Toolset.Close to deliver pending events.
func WithTelemetry(sink telemetry.Sink) Option {
	return func(o *options) {
		o.telemetry = sink
	}
}

// WithCallback sets the callback for tool calls.
func WithCallback(cb tools.Callback) Option {
	return func(o *options) {
		o.callback = cb
	}
}

// WithSchemaErrorPolicy overrides SchemaErrorPolicy of the Config.
func WithSchemaErrorPolicy(p SchemaErrorPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
