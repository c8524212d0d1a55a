package source

import (
	"context"
	"fmt"
	"os"
)

// File is a Source that returns the same still image on every call.
//
// The capture time of the frame is the file's modification time.
type File struct {
	Path  string
	Cache *ImageCache
}

// NewFile returns a File source for path. A nil cache gets a private one.
func NewFile(path string, cache *ImageCache) *File {
	if cache == nil {
		cache = NewImageCache()
	}
	return &File{Path: path, Cache: cache}
}

// Frame loads the image. Errors wrap ErrUnavailable.
func (f *File) Frame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	stat, err := os.Stat(f.Path)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	img, err := f.Cache.Load(f.Path)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, f.Path, err)
	}

	return Frame{Image: img, Captured: stat.ModTime()}, nil
}
