package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mobile-next/galleryview/utils"
	"github.com/sirupsen/logrus"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

const methodShutdown = "server.shutdown"

// error titles and messages shared by the HTTP and WebSocket transports
const (
	errTitleParseError    = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleNotFound      = "Method not found"
	errTitleInvalidParams = "Invalid params"
	errTitleServerError   = "Server error"
	errTitleInternal      = "Internal error"

	errMsgParseError = "expecting jsonrpc payload"
	errMsgVersion    = "'jsonrpc' must be '2.0'"
	errMsgIDRequired = "'id' field is required"
	errMsgMethod     = "'method' is required"
	errMsgTextOnly   = "only text messages accepted for requests"
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewHandler builds the HTTP routes of the viewer server. shutdown is
// invoked asynchronously when a client calls server.shutdown.
func NewHandler(enableCORS bool, shutdown func()) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", sendBanner).Methods(http.MethodGet)
	r.HandleFunc("/rpc", newRPCHandler(shutdown)).Methods(http.MethodPost)
	r.Handle("/ws", NewWebSocketHandler(enableCORS)).Methods(http.MethodGet)

	if enableCORS {
		return corsMiddleware(r)
	}
	return r
}

func StartServer(addr string, enableCORS bool) error {
	addr, err := utils.NormalizeListenAddr(addr)
	if err != nil {
		return err
	}
	if err := utils.CheckListenAddr(addr); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
	server.Handler = NewHandler(enableCORS, func() {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			utils.Warn("Server shutdown failed: %v", err)
		}
	})

	utils.Info("Starting server on http://%s...", server.Addr)
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		utils.Info("Server stopped")
		return nil
	}
	return err
}

func newRPCHandler(shutdown func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
			return
		}

		if req.JSONRPC != "2.0" {
			sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgVersion)
			return
		}

		if req.ID == nil {
			sendJSONRPCError(w, nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
			return
		}

		if req.Method == "" {
			sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethod)
			return
		}

		utils.Logger().WithFields(logrus.Fields{
			"id":     req.ID,
			"method": req.Method,
			"params": string(req.Params),
		}).Debug("JSON-RPC request")

		if req.Method == methodShutdown {
			sendJSONRPCResponse(w, req.ID, okResponse)
			if shutdown != nil {
				// respond first, the server stops accepting after this
				go shutdown()
			}
			return
		}

		result, err := Execute(req.Method, req.Params)
		if errors.Is(err, ErrMethodNotFound) {
			sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleNotFound, fmt.Sprintf("Method '%s' not found", req.Method))
			return
		}
		if err != nil {
			code, title := errorCode(err)
			if code != ErrCodeInvalidParams {
				utils.Warn("Error executing method %s: %v", req.Method, err)
			}
			sendJSONRPCError(w, req.ID, code, title, err.Error())
			return
		}

		sendJSONRPCResponse(w, req.ID, result)
	}
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
