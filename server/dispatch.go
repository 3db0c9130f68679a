package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobile-next/galleryview/commands"
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/utils"
	"github.com/sirupsen/logrus"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// paramsError marks a request whose params could not be decoded
type paramsError struct {
	msg string
}

func (e *paramsError) Error() string {
	return e.msg
}

// ErrMethodNotFound is returned by Execute for unregistered methods
var ErrMethodNotFound = errors.New("method not found")

// internalError reports a handler that panicked
type internalError struct {
	method string
	value  interface{}
}

func (e *internalError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.method, e.value)
}

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and embedded clients
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"viewer_open":       handleViewerOpen,
		"viewer_touch":      handleViewerTouch,
		"viewer_tap":        handleViewerTap,
		"viewer_state":      handleViewerState,
		"viewer_set_index":  handleViewerSetIndex,
		"viewer_reset_zoom": handleViewerResetZoom,
		"viewer_close":      handleViewerClose,
		"viewer_list":       handleViewerList,
		"gallery_list":      handleGalleryList,
		"gallery_image":     handleGalleryImage,
		"gallery_thumbnail": handleGalleryThumbnail,
	}
}

// methods is the registry served by Execute
var methods = GetMethodRegistry()

// Execute dispatches a method call using the registry
// This is the main entry point for both transports and embedded clients
func Execute(method string, params json.RawMessage) (result interface{}, err error) {
	handler, exists := methods[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}

	defer func() {
		if r := recover(); r != nil {
			utils.Logger().WithFields(logrus.Fields{
				"method": method,
				"panic":  r,
			}).Error("JSON-RPC handler panicked")
			result, err = nil, &internalError{method: method, value: r}
		}
	}()

	return handler(params)
}

// errorCode maps a handler error to its JSON-RPC code and title
func errorCode(err error) (int, string) {
	var perr *paramsError
	if errors.As(err, &perr) {
		return ErrCodeInvalidParams, errTitleInvalidParams
	}
	var ierr *internalError
	if errors.As(err, &ierr) {
		return ErrCodeInternalError, errTitleInternal
	}
	return ErrCodeServerError, errTitleServerError
}

// decodeParams unmarshals params into v, fields names the expected keys
func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return &paramsError{msg: fmt.Sprintf("'params' is required with fields: %s", fields)}
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &paramsError{msg: fmt.Sprintf("invalid parameters: %v. Expected fields: %s", err, fields)}
	}
	return nil
}

func result(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

type ViewerOpenParams struct {
	Index          int     `json:"index"`
	Total          int     `json:"total"`
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
	GalleryURL     string  `json:"galleryUrl"`
	ImageID        int     `json:"imageId"`
}

type ViewerTouchParams struct {
	SessionID string             `json:"sessionId"`
	Phase     string             `json:"phase"`
	Points    []types.TouchPoint `json:"points"`
}

type ViewerTapParams struct {
	SessionID string  `json:"sessionId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type ViewerSessionParams struct {
	SessionID string `json:"sessionId"`
}

type ViewerSetIndexParams struct {
	SessionID      string  `json:"sessionId"`
	Index          int     `json:"index"`
	Total          *int    `json:"total,omitempty"`
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
}

type GalleryListParams struct {
	URL string `json:"url"`
}

type GalleryFetchParams struct {
	URL string `json:"url"`
	ID  int    `json:"id"`
}

func handleViewerOpen(params json.RawMessage) (interface{}, error) {
	var p ViewerOpenParams
	if err := decodeParams(params, &p, "total, index, viewportWidth, viewportHeight or galleryUrl"); err != nil {
		return nil, err
	}

	return result(commands.OpenCommand(commands.OpenRequest{
		Index:          p.Index,
		Total:          p.Total,
		ViewportWidth:  p.ViewportWidth,
		ViewportHeight: p.ViewportHeight,
		GalleryURL:     p.GalleryURL,
		ImageID:        p.ImageID,
	}))
}

func handleViewerTouch(params json.RawMessage) (interface{}, error) {
	var p ViewerTouchParams
	if err := decodeParams(params, &p, "sessionId, phase, points"); err != nil {
		return nil, err
	}
	if _, err := types.ParseTouchPhase(p.Phase); err != nil {
		return nil, &paramsError{msg: err.Error()}
	}

	return result(commands.TouchCommand(commands.TouchRequest{
		SessionID: p.SessionID,
		Phase:     p.Phase,
		Points:    p.Points,
	}))
}

func handleViewerTap(params json.RawMessage) (interface{}, error) {
	var p ViewerTapParams
	if err := decodeParams(params, &p, "sessionId, x, y"); err != nil {
		return nil, err
	}

	return result(commands.TapCommand(commands.TapRequest{
		SessionID: p.SessionID,
		X:         p.X,
		Y:         p.Y,
	}))
}

func handleViewerState(params json.RawMessage) (interface{}, error) {
	var p ViewerSessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}

	return result(commands.StateCommand(commands.SessionRequest{SessionID: p.SessionID}))
}

func handleViewerSetIndex(params json.RawMessage) (interface{}, error) {
	var p ViewerSetIndexParams
	if err := decodeParams(params, &p, "sessionId, index, total, viewportWidth, viewportHeight"); err != nil {
		return nil, err
	}

	return result(commands.SetIndexCommand(commands.SetIndexRequest{
		SessionID:      p.SessionID,
		Index:          p.Index,
		Total:          p.Total,
		ViewportWidth:  p.ViewportWidth,
		ViewportHeight: p.ViewportHeight,
	}))
}

func handleViewerResetZoom(params json.RawMessage) (interface{}, error) {
	var p ViewerSessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}

	return result(commands.ResetZoomCommand(commands.SessionRequest{SessionID: p.SessionID}))
}

func handleViewerClose(params json.RawMessage) (interface{}, error) {
	var p ViewerSessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}

	if _, err := result(commands.CloseCommand(commands.SessionRequest{SessionID: p.SessionID})); err != nil {
		return nil, err
	}
	return okResponse, nil
}

func handleViewerList(params json.RawMessage) (interface{}, error) {
	return result(commands.ListCommand())
}

func handleGalleryList(params json.RawMessage) (interface{}, error) {
	var p GalleryListParams
	if err := decodeParams(params, &p, "url"); err != nil {
		return nil, err
	}

	return result(commands.GalleryListCommand(commands.GalleryListRequest{URL: p.URL}))
}

func handleGalleryImage(params json.RawMessage) (interface{}, error) {
	return galleryFetch(params, false)
}

func handleGalleryThumbnail(params json.RawMessage) (interface{}, error) {
	return galleryFetch(params, true)
}

func galleryFetch(params json.RawMessage, thumbnail bool) (interface{}, error) {
	var p GalleryFetchParams
	if err := decodeParams(params, &p, "url, id"); err != nil {
		return nil, err
	}

	client, err := commands.GalleryClient(p.URL)
	if err != nil {
		return nil, &paramsError{msg: err.Error()}
	}

	return result(commands.GalleryFetchCommand(client, commands.GalleryFetchRequest{
		ID:        p.ID,
		Thumbnail: thumbnail,
	}))
}
