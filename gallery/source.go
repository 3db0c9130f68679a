package gallery

import (
	"context"
	"fmt"
)

// Image is one entry of the gallery as served by the LAN API
type Image struct {
	ID            int     `json:"id"`
	Filename      string  `json:"filename"`
	Path          string  `json:"path"`
	Size          int64   `json:"size"`
	ThumbnailPath *string `json:"thumbnail_path,omitempty"`
	Description   *string `json:"description,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// Source is the image collaborator of the viewer: an ordered list with
// random access to image and thumbnail bytes
type Source interface {
	List(ctx context.Context) ([]Image, error)
	FetchImage(ctx context.Context, id int) ([]byte, error)
	FetchThumbnail(ctx context.Context, id int) ([]byte, error)
}

// IndexOf returns the position of the image with the given id
func IndexOf(images []Image, id int) (int, bool) {
	for i, img := range images {
		if img.ID == id {
			return i, true
		}
	}
	return 0, false
}

// StaticSource serves a fixed in-memory list
type StaticSource struct {
	Images     []Image
	Files      map[int][]byte
	Thumbnails map[int][]byte
}

func (s *StaticSource) List(ctx context.Context) ([]Image, error) {
	out := make([]Image, len(s.Images))
	copy(out, s.Images)
	return out, nil
}

func (s *StaticSource) FetchImage(ctx context.Context, id int) ([]byte, error) {
	data, ok := s.Files[id]
	if !ok {
		return nil, fmt.Errorf("image not found: %d", id)
	}
	return data, nil
}

func (s *StaticSource) FetchThumbnail(ctx context.Context, id int) ([]byte, error) {
	data, ok := s.Thumbnails[id]
	if !ok {
		return nil, fmt.Errorf("thumbnail not found: %d", id)
	}
	return data, nil
}
