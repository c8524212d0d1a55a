// Package diag writes diagnostic images in the background.
//
// Pipeline stages hand intermediate images to a Writer, which queues them and
// encodes them to disk on its own goroutine. Submitting never blocks: when the
// queue is full the image is dropped and counted. Shutdown either discards or
// drains the queue.
package diag

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// DefaultCapacity is the queue length used when New is given a non-positive
// capacity.
const DefaultCapacity = 64

// Policy selects what Close does with images still in the queue.
type Policy int

const (
	// Discard stops after the image currently being written.
	Discard Policy = iota

	// Drain writes every queued image before stopping.
	Drain
)

// Outcome reports how Close finished.
type Outcome int

const (
	// Closed means the worker stopped before the context expired.
	Closed Outcome = iota

	// TimedOut means the context expired first. The worker keeps running
	// until its current job ends, but nothing waits for it.
	TimedOut
)

func (o Outcome) String() string {
	if o == TimedOut {
		return "timed out"
	}
	return "closed"
}

type job struct {
	name string
	img  image.Image
}

// Writer persists diagnostic images under a directory.
//
// Writer is safe for concurrent use. Images passed to Submit must not be
// modified afterwards.
type Writer struct {
	dir   string
	log   zerolog.Logger
	queue chan job
	stop  chan Policy
	done  chan struct{}

	mu     sync.Mutex
	closed bool

	written atomic.Int64
	dropped atomic.Int64
}

// New creates dir if needed and starts the writer goroutine.
func New(dir string, capacity int, log zerolog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics directory: %w", err)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	w := &Writer{
		dir:   dir,
		log:   log,
		queue: make(chan job, capacity),
		stop:  make(chan Policy, 1),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Submit queues img to be written as name (relative to the output directory).
// The file format follows the extension of name.
//
// Submit never blocks. After Close, or when the queue is full, the image is
// dropped.
func (w *Writer) Submit(name string, img image.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.drop(name, "writer closed")
		return
	}
	select {
	case w.queue <- job{name: name, img: img}:
	default:
		w.drop(name, "queue full")
	}
}

func (w *Writer) drop(name, reason string) {
	w.dropped.Add(1)
	w.log.Warn().Str("file", name).Str("reason", reason).Msg("diagnostic image dropped")
}

// Close stops the writer according to policy and waits for the worker until
// ctx is done. Calling Close more than once only waits again.
func (w *Writer) Close(ctx context.Context, policy Policy) Outcome {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.stop <- policy
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		w.log.Debug().
			Int64("written", w.written.Load()).
			Int64("dropped", w.dropped.Load()).
			Msg("diagnostics writer closed")
		return Closed
	case <-ctx.Done():
		w.log.Warn().Err(ctx.Err()).Msg("diagnostics writer did not stop in time")
		return TimedOut
	}
}

// Written returns the number of images written so far.
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Dropped returns the number of images dropped so far.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case p := <-w.stop:
			if p == Drain {
				w.drain()
			} else if n := len(w.queue); n > 0 {
				w.dropped.Add(int64(n))
				w.log.Debug().Int("pending", n).Msg("discarding queued diagnostic images")
			}
			return
		case j := <-w.queue:
			w.write(j)
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case j := <-w.queue:
			w.write(j)
		default:
			return
		}
	}
}

func (w *Writer) write(j job) {
	path := filepath.Join(w.dir, j.name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.log.Error().Err(err).Str("file", path).Msg("failed to create directory")
		return
	}
	if err := imaging.Save(j.img, path); err != nil {
		w.log.Error().Err(err).Str("file", path).Msg("failed to write diagnostic image")
		return
	}
	w.written.Add(1)
	w.log.Debug().Str("file", path).Msg("diagnostic image written")
}
