package telemetry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Deduction-Dev/composio/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// DefaultQueueSize is the default buffer of Async
const DefaultQueueSize = 100

type record struct {
	ctx      context.Context
	event    string
	metadata map[string]any
}

// Async delivers events to the wrapped Sink on a background goroutine.
// Record never blocks: events are dropped when the queue is full.
type Async struct {
	sink  Sink
	queue chan record
	done  chan struct{}

	lock    sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewAsync starts delivery of events to the sink,
// size <= 0 means DefaultQueueSize.
func NewAsync(sink Sink, size int) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{
		sink:  sink,
		queue: make(chan record, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Record implements Sink.
func (a *Async) Record(ctx context.Context, event string, metadata map[string]any) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	if !a.closed {
		select {
		case a.queue <- record{ctx: context.WithoutCancel(ctx), event: event, metadata: metadata}:
			return
		default:
		}
	}

	a.dropped.Add(1)
	metricskey.StatsTelemetryDropped.IncrCounter(1, event)
}

// Dropped returns the number of events dropped.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits for queued events to be delivered.
func (a *Async) Close() error {
	a.lock.Lock()
	if a.closed {
		a.lock.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.lock.Unlock()

	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for r := range a.queue {
		a.deliver(r)
	}
}

func (a *Async) deliver(r record) {
	defer func() {
		if v := recover(); v != nil {
			logger.ContextKV(r.ctx, xlog.ERROR,
				"reason", "panic",
				"event", r.event,
				"err", v,
			)
		}
	}()
	a.sink.Record(r.ctx, r.event, r.metadata)
}
