// Package telemetry records method invocation events.
// Sinks are best effort: Record never returns an error and
// delivery failures are logged and dropped.
package telemetry

import (
	"context"
	"time"

	"github.com/Deduction-Dev/composio/store"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/Deduction-Dev/composio", "telemetry")

// Metadata keys
const (
	KeySource = "source"
	KeyParams = "params"
)

// UnknownSource is used when metadata has no source
const UnknownSource = "unknown"

// Sink records events.
type Sink interface {
	Record(ctx context.Context, event string, metadata map[string]any)
}

// NewEvent returns a new event with generated ID,
// the source is taken from KeySource of the metadata.
func NewEvent(event string, metadata map[string]any) *store.Event {
	ev := &store.Event{
		ID:        uuid.New().String(),
		Name:      event,
		Source:    UnknownSource,
		Timestamp: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		ev.Metadata = make(map[string]any, len(metadata))
		for k, v := range metadata {
			if k == KeySource {
				if s, ok := v.(string); ok && s != "" {
					ev.Source = s
				}
				continue
			}
			ev.Metadata[k] = v
		}
	}
	return ev
}

type noop struct{}

// Noop is the Sink that discards events.
var Noop Sink = noop{}

func (noop) Record(context.Context, string, map[string]any) {}

// Fanout records events to all sinks.
type Fanout []Sink

// Record implements Sink.
func (f Fanout) Record(ctx context.Context, event string, metadata map[string]any) {
	for _, s := range f {
		s.Record(ctx, event, metadata)
	}
}

type logSink struct {
	logger *xlog.PackageLogger
}

// NewLogger returns Sink writing events to the logger,
// nil logger means the package logger.
func NewLogger(l *xlog.PackageLogger) Sink {
	if l == nil {
		l = logger
	}
	return &logSink{logger: l}
}

func (s *logSink) Record(ctx context.Context, event string, metadata map[string]any) {
	ev := NewEvent(event, metadata)
	s.logger.ContextKV(ctx, xlog.INFO,
		"event", ev.Name,
		"source", ev.Source,
		"id", ev.ID,
		"metadata", ev.Metadata,
	)
}

type storeSink struct {
	store store.EventStore
}

// NewStore returns Sink persisting events in the store.
func NewStore(st store.EventStore) Sink {
	return &storeSink{store: st}
}

func (s *storeSink) Record(ctx context.Context, event string, metadata map[string]any) {
	ev := NewEvent(event, metadata)
	if err := s.store.Add(ctx, ev); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "store",
			"event", event,
			"err", err.Error(),
		)
	}
}
