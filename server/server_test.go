package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPServer(t *testing.T, enableCORS bool, shutdown func()) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewHandler(enableCORS, shutdown))
	t.Cleanup(server.Close)
	return server
}

func postRPC(t *testing.T, url string, payload interface{}) JSONRPCResponse {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))
	assert.Equal(t, "2.0", jsonResp.JSONRPC)
	return jsonResp
}

// withMethod registers an extra handler for the duration of a test
func withMethod(t *testing.T, name string, handler HandlerFunc) {
	t.Helper()
	methods[name] = handler
	t.Cleanup(func() { delete(methods, name) })
}

func rpc(method string, params interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}
	return payload
}

// TestRootEndpoint tests that the root endpoint returns status "ok"
func TestRootEndpoint(t *testing.T) {
	server := newTestHTTPServer(t, false, nil)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))

	assert.Equal(t, "ok", data["status"])
}

// TestRPCEndpointMethods tests HTTP method handling for /rpc endpoint
func TestRPCEndpointMethods(t *testing.T) {
	server := newTestHTTPServer(t, false, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/rpc", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestHTTPServer(t, true, nil)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/rpc", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// TestJSONRPCValidation tests JSON-RPC request validation
func TestJSONRPCValidation(t *testing.T) {
	server := newTestHTTPServer(t, false, nil)

	tests := []struct {
		name    string
		payload interface{}
		code    int
		data    string
	}{
		{
			name:    "Empty POST body should return parse error",
			payload: "",
			code:    ErrCodeParseError,
			data:    errMsgParseError,
		},
		{
			name:    "Invalid jsonrpc version should return error",
			payload: map[string]interface{}{"jsonrpc": "1.0", "method": "viewer_list", "id": 1},
			code:    ErrCodeInvalidRequest,
			data:    errMsgVersion,
		},
		{
			name:    "Missing id field should return error",
			payload: map[string]interface{}{"jsonrpc": "2.0", "method": "viewer_list"},
			code:    ErrCodeInvalidRequest,
			data:    errMsgIDRequired,
		},
		{
			name:    "Missing method should return error",
			payload: map[string]interface{}{"jsonrpc": "2.0", "id": 1},
			code:    ErrCodeInvalidRequest,
			data:    errMsgMethod,
		},
		{
			name:    "Unknown method",
			payload: rpc("unknown_method", nil),
			code:    ErrCodeMethodNotFound,
			data:    "Method 'unknown_method' not found",
		},
		{
			name:    "Touch requires params",
			payload: rpc("viewer_touch", nil),
			code:    ErrCodeInvalidParams,
			data:    "'params' is required with fields: sessionId, phase, points",
		},
		{
			name:    "Touch rejects unknown phase",
			payload: rpc("viewer_touch", map[string]interface{}{"sessionId": "x", "phase": "hover"}),
			code:    ErrCodeInvalidParams,
			data:    "invalid touch phase 'hover', expected one of: start, move, end",
		},
		{
			name:    "Open rejects empty gallery",
			payload: rpc("viewer_open", map[string]interface{}{"total": 0}),
			code:    ErrCodeServerError,
			data:    "total must be positive, got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.payload == "" {
				body = []byte("")
			} else {
				var err error
				body, err = json.Marshal(tt.payload)
				require.NoError(t, err)
			}

			resp, err := http.Post(server.URL+"/rpc", "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			var jsonResp JSONRPCResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))

			errorMap, ok := jsonResp.Error.(map[string]interface{})
			require.True(t, ok, "Expected error to be map, got %T", jsonResp.Error)

			assert.Equal(t, float64(tt.code), errorMap["code"])
			assert.Equal(t, tt.data, errorMap["data"])
		})
	}
}

func TestViewerLifecycleOverHTTP(t *testing.T) {
	server := newTestHTTPServer(t, false, nil)

	resp := postRPC(t, server.URL, rpc("viewer_open", map[string]interface{}{"index": 1, "total": 3}))
	require.Nil(t, resp.Error)
	sessionID := resp.Result.(map[string]interface{})["sessionId"].(string)

	resp = postRPC(t, server.URL, rpc("viewer_tap", map[string]interface{}{"sessionId": sessionID, "x": 100, "y": 100}))
	require.Nil(t, resp.Error)
	resp = postRPC(t, server.URL, rpc("viewer_tap", map[string]interface{}{"sessionId": sessionID, "x": 102, "y": 101}))
	require.Nil(t, resp.Error)

	state := resp.Result.(map[string]interface{})["state"].(map[string]interface{})
	assert.Equal(t, 2.0, state["transform"].(map[string]interface{})["scale"])

	resp = postRPC(t, server.URL, rpc("viewer_reset_zoom", map[string]interface{}{"sessionId": sessionID}))
	require.Nil(t, resp.Error)
	state = resp.Result.(map[string]interface{})["state"].(map[string]interface{})
	assert.Equal(t, 1.0, state["transform"].(map[string]interface{})["scale"])

	resp = postRPC(t, server.URL, rpc("viewer_set_index", map[string]interface{}{
		"sessionId": sessionID, "index": 0, "viewportWidth": 1024, "viewportHeight": 768,
	}))
	require.Nil(t, resp.Error)
	state = resp.Result.(map[string]interface{})["state"].(map[string]interface{})
	assert.Equal(t, 0.0, state["index"])
	assert.Equal(t, map[string]interface{}{"width": 1024.0, "height": 768.0}, state["viewport"])

	resp = postRPC(t, server.URL, rpc("viewer_set_index", map[string]interface{}{"sessionId": sessionID, "index": 0, "total": 0}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "total must be positive, got 0", resp.Error.(map[string]interface{})["data"])

	resp = postRPC(t, server.URL, rpc("viewer_list", nil))
	require.Nil(t, resp.Error)
	assert.Contains(t, resp.Result.(map[string]interface{})["sessions"], sessionID)

	resp = postRPC(t, server.URL, rpc("viewer_close", map[string]interface{}{"sessionId": sessionID}))
	require.Nil(t, resp.Error)
	assert.Equal(t, "ok", resp.Result.(map[string]interface{})["status"])

	resp = postRPC(t, server.URL, rpc("viewer_state", map[string]interface{}{"sessionId": sessionID}))
	require.NotNil(t, resp.Error)
}

func TestServerShutdown(t *testing.T) {
	called := make(chan struct{})
	server := newTestHTTPServer(t, false, func() { close(called) })

	resp := postRPC(t, server.URL, rpc("server.shutdown", nil))
	require.Nil(t, resp.Error)
	assert.Equal(t, "ok", resp.Result.(map[string]interface{})["status"])

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was not requested")
	}
}

func TestExecute(t *testing.T) {
	result, err := Execute("viewer_list", nil)
	require.NoError(t, err)
	assert.NotNil(t, result)

	_, err = Execute("viewer_zoom", nil)
	assert.True(t, errors.Is(err, ErrMethodNotFound))
	assert.EqualError(t, err, "method not found: viewer_zoom")
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	withMethod(t, "test_panic", func(params json.RawMessage) (interface{}, error) {
		panic("boom")
	})

	result, err := Execute("test_panic", nil)
	assert.Nil(t, result)
	require.EqualError(t, err, "internal error in test_panic: boom")

	code, title := errorCode(err)
	assert.Equal(t, ErrCodeInternalError, code)
	assert.Equal(t, "Internal error", title)
}

func TestHandlerPanicReturnsInternalError(t *testing.T) {
	server := newTestHTTPServer(t, false, nil)
	withMethod(t, "test_panic", func(params json.RawMessage) (interface{}, error) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	})

	resp := postRPC(t, server.URL, rpc("test_panic", nil))
	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInternalError), errorMap["code"])
	assert.Equal(t, "Internal error", errorMap["message"])
	assert.Contains(t, errorMap["data"], "internal error in test_panic")

	// the server keeps serving
	resp = postRPC(t, server.URL, rpc("viewer_list", nil))
	assert.Nil(t, resp.Error)
}

func TestGalleryFetchOverHTTP(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/images/{id:[0-9]+}/{kind}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if vars["id"] != "3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(vars["kind"] + " bytes"))
	}).Methods(http.MethodGet)
	gallery := httptest.NewServer(r)
	defer gallery.Close()

	server := newTestHTTPServer(t, false, nil)

	tests := []struct {
		method string
		data   string
	}{
		{method: "gallery_image", data: "file bytes"},
		{method: "gallery_thumbnail", data: "thumbnail bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := postRPC(t, server.URL, rpc(tt.method, map[string]interface{}{"url": gallery.URL, "id": 3}))
			require.Nil(t, resp.Error)

			result := resp.Result.(map[string]interface{})
			assert.Equal(t, float64(len(tt.data)), result["size"])
			raw, err := base64.StdEncoding.DecodeString(result["data"].(string))
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(raw))
		})
	}

	resp := postRPC(t, server.URL, rpc("gallery_image", map[string]interface{}{"url": gallery.URL, "id": 9}))
	errorMap := resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeServerError), errorMap["code"])
	assert.Contains(t, errorMap["data"], "404 Not Found")

	resp = postRPC(t, server.URL, rpc("gallery_image", map[string]interface{}{"id": 3}))
	errorMap = resp.Error.(map[string]interface{})
	assert.Equal(t, float64(ErrCodeInvalidParams), errorMap["code"])
	assert.Equal(t, "gallery URL is required", errorMap["data"])
}
