package store

import (
	"context"
	"time"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/Deduction-Dev/composio", "store")

// DefaultMaxEvents is the number of events kept per source
const DefaultMaxEvents = 1000

// Event is a recorded method invocation.
type Event struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"event" yaml:"event"`
	Source    string         `json:"source" yaml:"source"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// EventStore persists telemetry events grouped by source component.
type EventStore interface {
	// Add appends the event, only the last max events are kept per source
	Add(ctx context.Context, ev *Event) error
	// Events returns events of the source in the order they were added
	Events(ctx context.Context, source string) ([]*Event, error)
	// Sources returns the sorted list of sources with events
	Sources(ctx context.Context) ([]string, error)
	// Reset deletes events of the source
	Reset(ctx context.Context, source string) error
}
