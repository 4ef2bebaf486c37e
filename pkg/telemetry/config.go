package telemetry

import (
	"context"

	"github.com/Deduction-Dev/composio/store"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Config of the telemetry sinks.
// Nothing is recorded when no sink is enabled.
type Config struct {
	// Log records events with the package logger
	Log bool `json:"log,omitempty" yaml:"log,omitempty"`
	// Endpoint receives events as JSON POST requests
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// QueueSize of the async delivery, DefaultQueueSize if zero
	QueueSize int `json:"queue_size,omitempty" yaml:"queue_size,omitempty"`
	// Store keeps recent events per source
	Store *StoreConfig `json:"store,omitempty" yaml:"store,omitempty"`
}

// StoreConfig of the telemetry event store.
type StoreConfig struct {
	// RedisURL in redis://[user:password@]host:port/db format,
	// in-memory store is used if empty
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	// Prefix of the redis keys
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// MaxEvents kept per source, store.DefaultMaxEvents if zero
	MaxEvents int `json:"max_events,omitempty" yaml:"max_events,omitempty"`
}

// Pipeline is the telemetry Sink built from Config.
type Pipeline struct {
	*Async

	store store.EventStore
	redis *redis.Client
}

// New returns the Pipeline delivering events to the configured sinks.
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	p := new(Pipeline)
	var sinks Fanout
	if cfg.Log {
		sinks = append(sinks, NewLogger(nil))
	}
	if cfg.Endpoint != "" {
		sinks = append(sinks, NewHTTP(cfg.Endpoint, nil))
	}
	if sc := cfg.Store; sc != nil {
		if sc.RedisURL != "" {
			opts, err := redis.ParseURL(sc.RedisURL)
			if err != nil {
				return nil, errors.Wrap(err, "invalid redis URL")
			}
			p.redis = redis.NewClient(opts)
			p.store = store.NewRedisStore(p.redis, sc.Prefix, sc.MaxEvents)
		} else {
			p.store = store.NewMemoryStore(sc.MaxEvents)
		}
		sinks = append(sinks, NewStore(p.store))
	}

	var sink Sink = Noop
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = sinks
	}
	p.Async = NewAsync(sink, cfg.QueueSize)
	return p, nil
}

// Store returns the event store, nil if not configured.
func (p *Pipeline) Store() store.EventStore {
	return p.store
}

// Events returns the stored events of the source,
// call Close before to make sure all the queued events are stored.
func (p *Pipeline) Events(ctx context.Context, source string) ([]*store.Event, error) {
	if p.store == nil {
		return nil, errors.New("telemetry store is not configured")
	}
	return p.store.Events(ctx, source)
}

// Close delivers the queued events and releases the store connection.
func (p *Pipeline) Close() error {
	err := p.Async.Close()
	if p.redis != nil {
		if cerr := p.redis.Close(); cerr != nil && err == nil {
			err = errors.WithStack(cerr)
		}
		p.redis = nil
	}
	return err
}
