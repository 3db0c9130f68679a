package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/mobile-next/galleryview/gallery"
	"github.com/mobile-next/galleryview/sessions"
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *viewer.ManualClock {
	t.Helper()
	clock := viewer.NewManualClock(time.Unix(1000, 0))
	store, err := sessions.NewStore(4, nil, clock)
	require.NoError(t, err)

	prev := GetStore()
	SetStore(store)
	t.Cleanup(func() { SetStore(prev) })
	return clock
}

func openSession(t *testing.T, index, total int) string {
	t.Helper()
	resp := OpenCommand(OpenRequest{Index: index, Total: total, ViewportWidth: 400, ViewportHeight: 800})
	require.Equal(t, "ok", resp.Status, resp.Error)
	return resp.Data.(OpenResponse).SessionID
}

func stateOf(t *testing.T, resp *CommandResponse) StateResponse {
	t.Helper()
	require.Equal(t, "ok", resp.Status, resp.Error)
	return resp.Data.(StateResponse)
}

func TestOpenCommand(t *testing.T) {
	setupStore(t)

	resp := OpenCommand(OpenRequest{Index: 9, Total: 3})
	require.Equal(t, "ok", resp.Status)

	open := resp.Data.(OpenResponse)
	assert.NotEmpty(t, open.SessionID)
	assert.Equal(t, 2, open.State.Index)
	assert.Equal(t, 3, open.State.Total)
	assert.Equal(t, "3 / 3", open.State.Overlay.Counter)

	resp = OpenCommand(OpenRequest{Total: 0})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "total must be positive")
}

func TestCommandsWithoutStore(t *testing.T) {
	prev := GetStore()
	SetStore(nil)
	defer SetStore(prev)

	assert.Equal(t, "error", OpenCommand(OpenRequest{Total: 1}).Status)
	assert.Equal(t, "error", StateCommand(SessionRequest{SessionID: "x"}).Status)
	assert.Equal(t, "error", ListCommand().Status)
	assert.Equal(t, "error", CloseCommand(SessionRequest{SessionID: "x"}).Status)
}

func TestTouchCommandSwipeNavigates(t *testing.T) {
	clock := setupStore(t)
	id := openSession(t, 1, 5)

	stateOf(t, TouchCommand(TouchRequest{SessionID: id, Phase: "start", Points: []types.TouchPoint{{X: 300, Y: 400}}}))
	clock.Advance(100 * time.Millisecond)
	moved := stateOf(t, TouchCommand(TouchRequest{SessionID: id, Phase: "move", Points: []types.TouchPoint{{X: 100, Y: 400}}}))
	assert.Equal(t, -150.0, moved.State.Transform.SwipeOffset)
	assert.True(t, moved.State.Dragging)

	released := stateOf(t, TouchCommand(TouchRequest{SessionID: id, Phase: "end"}))
	assert.True(t, released.State.Animating)
	assert.Empty(t, released.Events)

	clock.Advance(250 * time.Millisecond)
	mid := stateOf(t, StateCommand(SessionRequest{SessionID: id}))
	require.Len(t, mid.Events, 1)
	assert.Equal(t, sessions.Event{Type: "next", Index: 2}, mid.Events[0])
	assert.Equal(t, 2, mid.State.Index)

	clock.Advance(time.Second)
	done := stateOf(t, StateCommand(SessionRequest{SessionID: id}))
	assert.Empty(t, done.Events)
	assert.False(t, done.State.Animating)
	assert.Equal(t, 0.0, done.State.Transform.SwipeOffset)
}

func TestTouchCommandDismiss(t *testing.T) {
	clock := setupStore(t)
	id := openSession(t, 0, 2)

	TouchCommand(TouchRequest{SessionID: id, Phase: "start", Points: []types.TouchPoint{{X: 200, Y: 200}}})
	clock.Advance(200 * time.Millisecond)
	TouchCommand(TouchRequest{SessionID: id, Phase: "move", Points: []types.TouchPoint{{X: 205, Y: 320}}})
	resp := stateOf(t, TouchCommand(TouchRequest{SessionID: id, Phase: "end"}))

	assert.True(t, resp.Closed)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "close", resp.Events[0].Type)
}

func TestTouchCommandRejectsBadInput(t *testing.T) {
	setupStore(t)
	id := openSession(t, 0, 2)

	resp := TouchCommand(TouchRequest{SessionID: id, Phase: "hover"})
	assert.Equal(t, "error", resp.Status)

	resp = TouchCommand(TouchRequest{SessionID: "missing", Phase: "start"})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "session not found")
}

func TestTapCommandDoubleTapZooms(t *testing.T) {
	clock := setupStore(t)
	id := openSession(t, 0, 2)

	first := stateOf(t, TapCommand(TapRequest{SessionID: id, X: 200, Y: 400}))
	assert.Equal(t, 1.0, first.State.Transform.Scale)

	clock.Advance(150 * time.Millisecond)
	second := stateOf(t, TapCommand(TapRequest{SessionID: id, X: 205, Y: 402}))
	assert.Equal(t, 2.0, second.State.Transform.Scale)
	assert.True(t, second.State.Overlay.ShowZoomHint)
	assert.False(t, second.State.Overlay.ShowCounter)
}

func TestSetIndexCommand(t *testing.T) {
	setupStore(t)
	id := openSession(t, 0, 3)

	total := 10
	resp := stateOf(t, SetIndexCommand(SetIndexRequest{SessionID: id, Index: 7, Total: &total}))
	assert.Equal(t, 7, resp.State.Index)
	assert.Equal(t, 10, resp.State.Total)

	resp = stateOf(t, SetIndexCommand(SetIndexRequest{SessionID: id, Index: 20}))
	assert.Equal(t, 9, resp.State.Index)
	assert.Equal(t, types.Size{Width: 400, Height: 800}, resp.State.Viewport)
}

func TestSetIndexCommandRejectsEmptyTotal(t *testing.T) {
	setupStore(t)
	id := openSession(t, 1, 3)

	zero := 0
	resp := SetIndexCommand(SetIndexRequest{SessionID: id, Index: 0, Total: &zero})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "total must be positive, got 0")

	// the session is left untouched
	state := stateOf(t, StateCommand(SessionRequest{SessionID: id}))
	assert.Equal(t, 3, state.State.Total)
	assert.Equal(t, "2 / 3", state.State.Overlay.Counter)
}

func TestSetIndexCommandUpdatesViewport(t *testing.T) {
	clock := setupStore(t)
	id := openSession(t, 0, 3)

	resp := stateOf(t, SetIndexCommand(SetIndexRequest{SessionID: id, Index: 0, ViewportWidth: 600}))
	assert.Equal(t, types.Size{Width: 600, Height: 800}, resp.State.Viewport)

	TouchCommand(TouchRequest{SessionID: id, Phase: "start", Points: []types.TouchPoint{{X: 300, Y: 400}}})
	clock.Advance(100 * time.Millisecond)
	TouchCommand(TouchRequest{SessionID: id, Phase: "move", Points: []types.TouchPoint{{X: 200, Y: 400}}})
	TouchCommand(TouchRequest{SessionID: id, Phase: "end"})

	// the next image enters from the new right edge
	clock.Advance(200 * time.Millisecond)
	resp = stateOf(t, StateCommand(SessionRequest{SessionID: id}))
	assert.Equal(t, "sliding-in", resp.State.Phase)
	assert.Equal(t, 600.0, resp.State.Transform.SwipeOffset)
	assert.Equal(t, 1, resp.State.Index)
}

func TestResetZoomCommand(t *testing.T) {
	clock := setupStore(t)
	id := openSession(t, 0, 2)

	TapCommand(TapRequest{SessionID: id, X: 200, Y: 400})
	clock.Advance(150 * time.Millisecond)
	zoomed := stateOf(t, TapCommand(TapRequest{SessionID: id, X: 200, Y: 400}))
	require.Equal(t, 2.0, zoomed.State.Transform.Scale)

	resp := stateOf(t, ResetZoomCommand(SessionRequest{SessionID: id}))
	assert.Equal(t, viewer.Transform{Scale: 1}, resp.State.Transform)
	assert.True(t, resp.State.Overlay.ShowCounter)

	assert.Equal(t, "error", ResetZoomCommand(SessionRequest{SessionID: "missing"}).Status)
}

func TestListAndCloseCommands(t *testing.T) {
	setupStore(t)
	a := openSession(t, 0, 1)
	b := openSession(t, 0, 1)

	resp := ListCommand()
	require.Equal(t, "ok", resp.Status)
	ids := resp.Data.(map[string]interface{})["sessions"].([]string)
	assert.ElementsMatch(t, []string{a, b}, ids)

	assert.Equal(t, "ok", CloseCommand(SessionRequest{SessionID: a}).Status)
	assert.Equal(t, "error", CloseCommand(SessionRequest{SessionID: a}).Status)
	assert.Equal(t, "error", StateCommand(SessionRequest{SessionID: a}).Status)
}

func newGalleryServer(t *testing.T, images []gallery.Image) string {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/images", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"images": images})
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestOpenCommandFromGallery(t *testing.T) {
	setupStore(t)
	url := newGalleryServer(t, []gallery.Image{{ID: 3}, {ID: 8}, {ID: 12}})

	resp := OpenCommand(OpenRequest{GalleryURL: url, ImageID: 8})
	require.Equal(t, "ok", resp.Status, resp.Error)

	open := resp.Data.(OpenResponse)
	assert.Equal(t, 3, open.State.Total)
	assert.Equal(t, 1, open.State.Index)
	assert.Len(t, open.Images, 3)

	resp = OpenCommand(OpenRequest{GalleryURL: url, ImageID: 99})
	assert.Equal(t, "error", resp.Status)
}

func TestGalleryListCommand(t *testing.T) {
	url := newGalleryServer(t, []gallery.Image{{ID: 1, Filename: "one.jpg"}})

	resp := GalleryListCommand(GalleryListRequest{URL: url})
	require.Equal(t, "ok", resp.Status, resp.Error)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 1, data["total"])

	resp = GalleryListCommand(GalleryListRequest{})
	assert.Equal(t, "error", resp.Status)
}
