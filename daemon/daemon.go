package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mobile-next/galleryview/server"
	"github.com/mobile-next/galleryview/utils"
	"github.com/sevlyar/go-daemon"
)

const (
	// DaemonEnvVar is the environment variable that marks a daemon child process
	DaemonEnvVar = "GALLERYVIEW_DAEMON_CHILD"

	clientTimeout = 10 * time.Second
)

// Options control how the server detaches
type Options struct {
	// LogFile receives the child's stdout and stderr, empty discards them
	LogFile string
}

// Daemonize re-executes the current command in the background.
// A nil process means the caller is the child.
func Daemonize(opts Options) (*os.Process, error) {
	ctx := &daemon.Context{
		LogFileName: opts.LogFile,
		LogFilePerm: 0640,
		WorkDir:     "/",
		Umask:       027,
		Args:        os.Args,
		Env:         append(os.Environ(), DaemonEnvVar+"=1"),
	}

	child, err := ctx.Reborn()
	if err != nil {
		return nil, fmt.Errorf("failed to daemonize: %w", err)
	}
	if child != nil {
		utils.Verbose("Spawned server daemon with pid %d", child.Pid)
	}
	return child, nil
}

// IsChild returns true if this is the daemon child process
func IsChild() bool {
	return os.Getenv(DaemonEnvVar) == "1"
}

// serverURL turns a listen address into the base URL of a local server
func serverURL(addr string) string {
	if normalized, err := utils.NormalizeListenAddr(addr); err == nil {
		addr = normalized
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// ErrNotRunning is returned when nothing listens on the server address
var ErrNotRunning = errors.New("server is not running")

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Client calls a running viewer server over its HTTP /rpc endpoint
type Client struct {
	url        string
	httpClient *http.Client
	nextID     int
}

// NewClient creates a client for a server listening on addr
func NewClient(addr string) *Client {
	return &Client{
		url:        serverURL(addr),
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// URL returns the server's base URL
func (c *Client) URL() string {
	return c.url
}

// Call invokes method and decodes its result into out, which may be nil
func (c *Client) Call(ctx context.Context, method string, params, out interface{}) error {
	c.nextID++
	body, err := json.Marshal(server.JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		ID:      c.nextID,
		Params:  encodeParams(params),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/rpc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("%w on %s", ErrNotRunning, c.url)
		}
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Status)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("%s failed: %s (%d): %v", method, decoded.Error.Message, decoded.Error.Code, decoded.Error.Data)
	}
	if out == nil || len(decoded.Result) == 0 {
		return nil
	}
	return json.Unmarshal(decoded.Result, out)
}

func encodeParams(params interface{}) json.RawMessage {
	if params == nil {
		return nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	return raw
}

// Status describes a running server
type Status struct {
	URL      string   `json:"url"`
	Sessions []string `json:"sessions"`
}

// ServerStatus asks the server on addr for its live viewer sessions
func ServerStatus(addr string) (*Status, error) {
	client := NewClient(addr)
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var result struct {
		Sessions []string `json:"sessions"`
	}
	if err := client.Call(ctx, "viewer_list", nil, &result); err != nil {
		return nil, err
	}

	if result.Sessions == nil {
		result.Sessions = []string{}
	}
	return &Status{URL: client.URL(), Sessions: result.Sessions}, nil
}

// KillServer connects to the server and sends a shutdown command via JSON-RPC
func KillServer(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()
	return NewClient(addr).Call(ctx, "server.shutdown", nil, nil)
}
