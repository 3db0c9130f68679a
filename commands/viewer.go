package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mobile-next/galleryview/gallery"
	"github.com/mobile-next/galleryview/sessions"
	"github.com/mobile-next/galleryview/types"
	"github.com/mobile-next/galleryview/viewer"
)

const galleryTimeout = 10 * time.Second

// OpenRequest represents the parameters for opening a viewer session
type OpenRequest struct {
	Index          int     `json:"index"`
	Total          int     `json:"total"`
	ViewportWidth  float64 `json:"viewportWidth,omitempty"`
	ViewportHeight float64 `json:"viewportHeight,omitempty"`
	GalleryURL     string  `json:"galleryUrl,omitempty"` // take total from a gallery server
	ImageID        int     `json:"imageId,omitempty"`    // open at this gallery image instead of index
}

// OpenResponse is returned by OpenCommand
type OpenResponse struct {
	SessionID string          `json:"sessionId"`
	State     viewer.State    `json:"state"`
	Images    []gallery.Image `json:"images,omitempty"`
}

// TouchRequest represents one touch event sent to a session
type TouchRequest struct {
	SessionID string             `json:"sessionId"`
	Phase     string             `json:"phase"`
	Points    []types.TouchPoint `json:"points"`
}

// TapRequest represents a synthetic tap on a session
type TapRequest struct {
	SessionID string  `json:"sessionId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// SessionRequest addresses a session without further parameters
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// SetIndexRequest is sent by the gallery when it shows another image
type SetIndexRequest struct {
	SessionID      string  `json:"sessionId"`
	Index          int     `json:"index"`
	Total          *int    `json:"total,omitempty"`
	ViewportWidth  float64 `json:"viewportWidth,omitempty"`
	ViewportHeight float64 `json:"viewportHeight,omitempty"`
}

// StateResponse carries a session snapshot and the effects a request produced
type StateResponse struct {
	SessionID string           `json:"sessionId"`
	State     viewer.State     `json:"state"`
	Events    []sessions.Event `json:"events,omitempty"`
	Closed    bool             `json:"closed"`
}

// OpenCommand starts a new viewer session
func OpenCommand(req OpenRequest) *CommandResponse {
	if sessionStore == nil {
		return NewErrorResponse(fmt.Errorf("session store is not initialized"))
	}

	var images []gallery.Image
	if req.GalleryURL != "" {
		client, err := GalleryClient(req.GalleryURL)
		if err != nil {
			return NewErrorResponse(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), galleryTimeout)
		defer cancel()

		images, err = client.List(ctx)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("error listing gallery images: %w", err))
		}
		req.Total = len(images)

		if req.ImageID != 0 {
			i, ok := gallery.IndexOf(images, req.ImageID)
			if !ok {
				return NewErrorResponse(fmt.Errorf("image not found in gallery: %d", req.ImageID))
			}
			req.Index = i
		}
	}

	if req.Total <= 0 {
		return NewErrorResponse(fmt.Errorf("total must be positive, got %d", req.Total))
	}

	s := sessionStore.Open(sessions.OpenOptions{
		Index:    req.Index,
		Total:    req.Total,
		Viewport: types.Size{Width: req.ViewportWidth, Height: req.ViewportHeight},
	})
	state, _ := s.Do(nil)

	return NewSuccessResponse(OpenResponse{
		SessionID: s.ID,
		State:     state,
		Images:    images,
	})
}

// TouchCommand feeds one touch event to a session
func TouchCommand(req TouchRequest) *CommandResponse {
	phase, err := types.ParseTouchPhase(req.Phase)
	if err != nil {
		return NewErrorResponse(err)
	}

	s, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return stateResponse(s, func(c *viewer.Controller) {
		c.Touch(phase, req.Points)
	})
}

// TapCommand sends a zero-length touch at (x, y). Two taps in quick
// succession toggle zoom.
func TapCommand(req TapRequest) *CommandResponse {
	s, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	p := types.TouchPoint{X: req.X, Y: req.Y}
	return stateResponse(s, func(c *viewer.Controller) {
		c.TouchStart([]types.TouchPoint{p})
		c.TouchEnd(nil)
	})
}

// StateCommand returns the current state of a session
func StateCommand(req SessionRequest) *CommandResponse {
	s, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}
	return stateResponse(s, nil)
}

// SetIndexCommand tells a session which image the gallery shows. A
// non-zero viewport dimension replaces the one the session was opened with.
func SetIndexCommand(req SetIndexRequest) *CommandResponse {
	if req.Total != nil && *req.Total <= 0 {
		return NewErrorResponse(fmt.Errorf("total must be positive, got %d", *req.Total))
	}

	s, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return stateResponse(s, func(c *viewer.Controller) {
		if req.Total != nil {
			c.SetTotal(*req.Total)
		}
		c.SetIndex(req.Index)
		c.SetViewport(types.Size{Width: req.ViewportWidth, Height: req.ViewportHeight})
	})
}

// ResetZoomCommand returns a session to scale 1 with no pan
func ResetZoomCommand(req SessionRequest) *CommandResponse {
	s, err := FindSession(req.SessionID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return stateResponse(s, func(c *viewer.Controller) {
		c.ResetZoom()
	})
}

// CloseCommand ends a session
func CloseCommand(req SessionRequest) *CommandResponse {
	if sessionStore == nil {
		return NewErrorResponse(fmt.Errorf("session store is not initialized"))
	}
	if err := sessionStore.Close(req.SessionID); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Closed session %s", req.SessionID),
	})
}

// ListCommand lists live session ids
func ListCommand() *CommandResponse {
	if sessionStore == nil {
		return NewErrorResponse(fmt.Errorf("session store is not initialized"))
	}

	return NewSuccessResponse(map[string]interface{}{
		"sessions": sessionStore.IDs(),
	})
}

func stateResponse(s *sessions.Session, fn func(c *viewer.Controller)) *CommandResponse {
	state, events := s.Do(fn)
	return NewSuccessResponse(StateResponse{
		SessionID: s.ID,
		State:     state,
		Events:    events,
		Closed:    s.Closed(),
	})
}
