package store

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps telemetry events in Redis lists.
// The keys namespace is organized as follows:
// - `/<prefix>/telemetry/<source>/events` for the list of events of a source

type redisStore struct {
	client *redis.Client
	prefix string
	max    int
}

// NewRedisStore returns EventStore backed by Redis,
// max <= 0 means DefaultMaxEvents.
func NewRedisStore(client *redis.Client, prefix string, max int) EventStore {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &redisStore{
		client: client,
		prefix: prefix,
		max:    max,
	}
}

func (m *redisStore) rootKey() string {
	return path.Join(m.prefix, "telemetry")
}

func (m *redisStore) getRedisEventsKey(source string) string {
	return path.Join(m.rootKey(), source, "events")
}

func (m *redisStore) Add(ctx context.Context, ev *Event) error {
	if ev == nil || ev.Source == "" {
		return errors.New("invalid event: source is required")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	key := m.getRedisEventsKey(ev.Source)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-m.max), -1)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store event in Redis")
	}
	return nil
}

func (m *redisStore) Events(ctx context.Context, source string) ([]*Event, error) {
	data, err := m.client.LRange(ctx, m.getRedisEventsKey(source), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get events from Redis")
	}

	var list []*Event
	for _, item := range data {
		ev := new(Event)
		if err := json.Unmarshal([]byte(item), ev); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal event", "err", err.Error())
			continue
		}
		list = append(list, ev)
	}
	return list, nil
}

func (m *redisStore) Sources(ctx context.Context) ([]string, error) {
	root := m.rootKey()
	// Use SCAN instead of KEYS for better performance
	iter := m.client.Scan(ctx, 0, root+"/*", 0).Iterator()
	sources := make(map[string]struct{})

	for iter.Next(ctx) {
		parts := strings.Split(strings.TrimPrefix(iter.Val(), root+"/"), "/")
		if len(parts) > 0 && parts[0] != "" {
			sources[parts[0]] = struct{}{}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan sources from Redis")
	}

	result := make([]string, 0, len(sources))
	for source := range sources {
		result = append(result, source)
	}
	sort.Strings(result)
	return result, nil
}

func (m *redisStore) Reset(ctx context.Context, source string) error {
	if err := m.client.Del(ctx, m.getRedisEventsKey(source)).Err(); err != nil {
		return errors.Wrap(err, "failed to reset events in Redis")
	}
	return nil
}
