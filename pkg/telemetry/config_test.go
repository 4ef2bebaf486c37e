package telemetry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("noop", func(t *testing.T) {
		p, err := telemetry.New(nil)
		require.NoError(t, err)
		p.Record(ctx, "getTools", nil)
		assert.Nil(t, p.Store())
		_, err = p.Events(ctx, "GoToolset")
		assert.EqualError(t, err, "telemetry store is not configured")
		require.NoError(t, p.Close())
		// closed pipeline drops events
		p.Record(ctx, "getTools", nil)
		assert.Equal(t, uint64(1), p.Dropped())
	})

	t.Run("invalid redis", func(t *testing.T) {
		_, err := telemetry.New(&telemetry.Config{
			Store: &telemetry.StoreConfig{RedisURL: "mysql://localhost"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid redis URL")
	})

	t.Run("all", func(t *testing.T) {
		var (
			lock     sync.Mutex
			received []string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var m map[string]any
			_ = json.NewDecoder(r.Body).Decode(&m)
			lock.Lock()
			received = append(received, m["event"].(string))
			lock.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		p, err := telemetry.New(&telemetry.Config{
			Log:       true,
			Endpoint:  srv.URL,
			QueueSize: 10,
			Store:     &telemetry.StoreConfig{MaxEvents: 5},
		})
		require.NoError(t, err)
		require.NotNil(t, p.Store())

		p.Record(ctx, "getTools", map[string]any{telemetry.KeySource: "GoToolset"})
		p.Record(ctx, "executeToolCall", map[string]any{telemetry.KeySource: "GoToolset"})
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())

		events, err := p.Events(ctx, "GoToolset")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "getTools", events[0].Name)
		assert.Equal(t, "executeToolCall", events[1].Name)

		lock.Lock()
		assert.Equal(t, []string{"getTools", "executeToolCall"}, received)
		lock.Unlock()
	})
}
