package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/galleryview/gallery"
	"github.com/mobile-next/galleryview/utils"
)

// galleryClientLimit bounds how many gallery servers keep a warm image cache
const galleryClientLimit = 8

var (
	galleryClientsOnce sync.Once
	galleryClients     *lru.Cache[string, *gallery.HTTPClient]
)

// GalleryClient returns a client for the gallery at url. Clients are
// reused per server so fetched images stay cached between requests.
func GalleryClient(url string) (*gallery.HTTPClient, error) {
	baseURL, err := gallery.NormalizeURL(url)
	if err != nil {
		return nil, err
	}

	galleryClientsOnce.Do(func() {
		galleryClients, _ = lru.New[string, *gallery.HTTPClient](galleryClientLimit)
	})

	if client, ok := galleryClients.Get(baseURL); ok {
		return client, nil
	}

	client, err := gallery.NewHTTPClient(baseURL, gallery.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	galleryClients.Add(baseURL, client)
	utils.Verbose("Created gallery client for %s", baseURL)
	return client, nil
}

// GalleryListRequest represents the parameters for listing a gallery
type GalleryListRequest struct {
	URL string `json:"url"`
}

// GalleryFetchRequest selects one image of a gallery
type GalleryFetchRequest struct {
	ID        int  `json:"id"`
	Thumbnail bool `json:"thumbnail,omitempty"`
}

// GalleryFetchResponse carries an image payload, base64 encoded
type GalleryFetchResponse struct {
	ID          int    `json:"id"`
	Kind        string `json:"kind"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
	Data        string `json:"data,omitempty"`
	Path        string `json:"path,omitempty"`
}

// GalleryListCommand lists the images of a gallery server
func GalleryListCommand(req GalleryListRequest) *CommandResponse {
	client, err := GalleryClient(req.URL)
	if err != nil {
		return NewErrorResponse(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), galleryTimeout)
	defer cancel()

	images, err := client.List(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error listing gallery images: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"total":  len(images),
		"images": images,
	})
}

// GalleryFetchCommand downloads a full image or its thumbnail from src
func GalleryFetchCommand(src gallery.Source, req GalleryFetchRequest) *CommandResponse {
	if src == nil {
		return NewErrorResponse(fmt.Errorf("gallery source is required"))
	}
	if req.ID <= 0 {
		return NewErrorResponse(fmt.Errorf("image id must be positive, got %d", req.ID))
	}

	ctx, cancel := context.WithTimeout(context.Background(), galleryTimeout)
	defer cancel()

	kind := "image"
	fetch := src.FetchImage
	if req.Thumbnail {
		kind = "thumbnail"
		fetch = src.FetchThumbnail
	}

	data, err := fetch(ctx, req.ID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error fetching %s %d: %w", kind, req.ID, err))
	}

	return NewSuccessResponse(GalleryFetchResponse{
		ID:          req.ID,
		Kind:        kind,
		Size:        len(data),
		ContentType: http.DetectContentType(data),
		Data:        base64.StdEncoding.EncodeToString(data),
	})
}
