package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/Deduction-Dev/composio/store"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(source, name string) *store.Event {
	return &store.Event{
		ID:        gofakeit.UUID(),
		Name:      name,
		Source:    source,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Metadata: map[string]any{
			"entityId": gofakeit.Username(),
		},
	}
}

// testEventStore expects the store created with max=3
func testEventStore(t *testing.T, st store.EventStore) {
	ctx := context.Background()

	assert.EqualError(t, st.Add(ctx, nil), "invalid event: source is required")
	assert.EqualError(t, st.Add(ctx, &store.Event{Name: "getTools"}), "invalid event: source is required")

	list, err := st.Events(ctx, "GoToolset")
	require.NoError(t, err)
	assert.Empty(t, list)

	var added []*store.Event
	for _, name := range []string{"getTools", "executeToolCall", "getTools", "executeToolCall"} {
		ev := newEvent("GoToolset", name)
		require.NoError(t, st.Add(ctx, ev))
		added = append(added, ev)
	}
	require.NoError(t, st.Add(ctx, newEvent("cli", "exec")))

	list, err = st.Events(ctx, "GoToolset")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, ev := range list {
		exp := added[i+1]
		assert.Equal(t, exp.ID, ev.ID)
		assert.Equal(t, exp.Name, ev.Name)
		assert.Equal(t, exp.Source, ev.Source)
		assert.True(t, exp.Timestamp.Equal(ev.Timestamp))
		assert.Equal(t, exp.Metadata["entityId"], ev.Metadata["entityId"])
	}

	sources, err := st.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GoToolset", "cli"}, sources)

	require.NoError(t, st.Reset(ctx, "GoToolset"))
	list, err = st.Events(ctx, "GoToolset")
	require.NoError(t, err)
	assert.Empty(t, list)

	sources, err = st.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cli"}, sources)
}

func Test_MemoryStore(t *testing.T) {
	testEventStore(t, store.NewMemoryStore(3))
}
