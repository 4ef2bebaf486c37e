package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsActionsFetched is base for counter metric for total action schemas fetched from the platform
	StatsActionsFetched = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_actions_fetched",
		Help:         "stats_actions_fetched provides total action schemas fetched from the platform",
		RequiredTags: []string{"entity"},
	}

	StatsSchemaConversionFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_schema_conversion_failed",
		Help:         "stats_schema_conversion_failed provides total action schemas failed to convert",
		RequiredTags: []string{"action"},
	}

	StatsRemoteCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_remote_calls_failed",
		Help:         "stats_remote_calls_failed provides total failed calls to the platform API",
		RequiredTags: []string{"op"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsInvalidArguments = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_invalid_arguments",
		Help:         "stats_tool_calls_invalid_arguments provides total tool calls rejected before execution",
		RequiredTags: []string{"tool"},
	}

	StatsTelemetryDropped = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_telemetry_dropped",
		Help:         "stats_telemetry_dropped provides total telemetry events dropped",
		RequiredTags: []string{"event"},
	}
)

// Perf
var (
	PerfRemoteCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_remote_call",
		Help:         "perf_remote_call provides duration of the platform API call",
		RequiredTags: []string{"op"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfRemoteCall,
	&PerfToolCall,
	&StatsActionsFetched,
	&StatsRemoteCallsFailed,
	&StatsSchemaConversionFailed,
	&StatsTelemetryDropped,
	&StatsToolCallsFailed,
	&StatsToolCallsInvalidArguments,
	&StatsToolCallsSucceeded,
}
