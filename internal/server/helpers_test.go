package server

import (
	"image"
	"sync"
	"testing"

	"github.com/ironsheep/piece-segmenter/internal/config"
)

type countingSink struct {
	mu sync.Mutex
	n  int
}

func (c *countingSink) Submit(name string, img image.Image) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func mustLoad(t *testing.T, path string) *config.Parameters {
	t.Helper()
	p, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return p
}
