package commands

import (
	"fmt"

	"github.com/mobile-next/galleryview/sessions"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// sessionStore holds the viewer sessions served by this process.
// It is set once at startup via SetStore.
var sessionStore *sessions.Store

// SetStore sets the global session store. This should be called once at
// application startup (main.go or server.go).
func SetStore(store *sessions.Store) {
	sessionStore = store
}

// GetStore returns the current session store.
// Returns nil if SetStore has not been called yet.
func GetStore() *sessions.Store {
	return sessionStore
}

// FindSession finds a live viewer session by ID
func FindSession(sessionID string) (*sessions.Session, error) {
	if sessionStore == nil {
		return nil, fmt.Errorf("session store is not initialized")
	}
	return sessionStore.Get(sessionID)
}
