package sessions

import (
	"testing"
	"time"

	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, capacity int) (*Store, *viewer.ManualClock) {
	t.Helper()
	clock := viewer.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store, err := NewStore(capacity, nil, clock)
	require.NoError(t, err)
	return store, clock
}

func TestStore_OpenAndGet(t *testing.T) {
	store, _ := newTestStore(t, 4)

	s := store.Open(OpenOptions{Index: 1, Total: 3})
	require.NotEmpty(t, s.ID)

	found, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, found)

	state, events := s.Do(nil)
	assert.Equal(t, 1, state.Index)
	assert.Equal(t, 3, state.Total)
	assert.Empty(t, events)
}

func TestStore_GetErrors(t *testing.T) {
	store, _ := newTestStore(t, 4)

	_, err := store.Get("")
	assert.EqualError(t, err, "session ID is required")

	_, err = store.Get("nope")
	assert.EqualError(t, err, "session not found: nope")

	assert.Error(t, store.Close("nope"))
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store, _ := newTestStore(t, 2)

	a := store.Open(OpenOptions{Total: 1})
	b := store.Open(OpenOptions{Total: 1})
	_, err := store.Get(a.ID)
	require.NoError(t, err)

	c := store.Open(OpenOptions{Total: 1})

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(b.ID)
	assert.Error(t, err, "b was least recently used")
	_, err = store.Get(a.ID)
	assert.NoError(t, err)
	_, err = store.Get(c.ID)
	assert.NoError(t, err)
}

func TestStore_CloseAndCleanup(t *testing.T) {
	store, _ := newTestStore(t, 4)

	a := store.Open(OpenOptions{Total: 1})
	store.Open(OpenOptions{Total: 1})
	require.Len(t, store.IDs(), 2)

	require.NoError(t, store.Close(a.ID))
	assert.Equal(t, 1, store.Len())

	store.CleanupAll()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.IDs())
}

func TestSession_RecordsNavigationEvents(t *testing.T) {
	store, clock := newTestStore(t, 4)
	s := store.Open(OpenOptions{Index: 2, Total: 5, Viewport: types.Size{Width: 400}})

	s.Do(func(c *viewer.Controller) {
		c.TouchStart([]types.TouchPoint{{X: 200, Y: 300}})
	})
	clock.Advance(150 * time.Millisecond)
	s.Do(func(c *viewer.Controller) {
		c.TouchMove([]types.TouchPoint{{X: 120, Y: 300}})
		c.TouchEnd(nil)
	})

	clock.Advance(time.Second)
	state, events := s.Do(nil)

	require.Len(t, events, 1)
	assert.Equal(t, Event{Type: "next", Index: 3}, events[0])
	assert.Equal(t, 3, state.Index)
	assert.False(t, state.Animating)

	_, events = s.Do(nil)
	assert.Empty(t, events, "events are drained once")
}

func TestSession_RecordsClose(t *testing.T) {
	store, clock := newTestStore(t, 4)
	s := store.Open(OpenOptions{Index: 0, Total: 2})

	s.Do(func(c *viewer.Controller) {
		c.TouchStart([]types.TouchPoint{{X: 200, Y: 100}})
	})
	clock.Advance(200 * time.Millisecond)
	_, events := s.Do(func(c *viewer.Controller) {
		c.TouchMove([]types.TouchPoint{{X: 205, Y: 200}})
		c.TouchEnd(nil)
	})

	require.Len(t, events, 1)
	assert.Equal(t, "close", events[0].Type)
	assert.True(t, s.Closed())
}
