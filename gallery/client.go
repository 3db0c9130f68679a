package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/galleryview/utils"
)

const (
	// DefaultCacheSize is the number of image payloads kept in memory
	DefaultCacheSize = 32

	requestTimeout = 15 * time.Second
)

type listResponse struct {
	Images []Image `json:"images"`
	Error  string  `json:"error,omitempty"`
}

// HTTPClient talks to the gallery's LAN API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache[string, []byte]
}

// NormalizeURL turns "192.168.1.10:3000/api/" into "http://192.168.1.10:3000"
func NormalizeURL(raw string) (string, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", fmt.Errorf("gallery URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimSuffix(baseURL, "/api"), nil
}

// NewHTTPClient creates a client for a server such as http://192.168.1.10:3000
func NewHTTPClient(baseURL string, cacheSize int) (*HTTPClient, error) {
	baseURL, err := NormalizeURL(baseURL)
	if err != nil {
		return nil, err
	}

	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
	}, nil
}

// BaseURL returns the normalized server address
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// List returns all images in gallery order
func (c *HTTPClient) List(ctx context.Context) ([]Image, error) {
	body, err := c.get(ctx, "/api/images")
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse image list: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("gallery error: %s", resp.Error)
	}
	return resp.Images, nil
}

func (c *HTTPClient) FetchImage(ctx context.Context, id int) ([]byte, error) {
	return c.cached(ctx, fmt.Sprintf("/api/images/%d/file", id))
}

func (c *HTTPClient) FetchThumbnail(ctx context.Context, id int) ([]byte, error) {
	return c.cached(ctx, fmt.Sprintf("/api/images/%d/thumbnail", id))
}

func (c *HTTPClient) cached(ctx context.Context, path string) ([]byte, error) {
	if data, ok := c.cache.Get(path); ok {
		utils.Verbose("Gallery cache hit for %s", path)
		return data, nil
	}

	data, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, data)
	return data, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	utils.Verbose("GET %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gallery: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gallery returned %s for %s", resp.Status, path)
	}
	return body, nil
}
