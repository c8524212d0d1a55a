package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// levels is the number of flood priorities; edge costs are 8-bit differences.
const levels = 256

// notQueued marks a pixel that has never been pushed.
const notQueued = levels

// Watershed floods the unknown pixels of markers from its labeled seeds,
// ranking pixels by the guide image.
//
// Parameters:
//   - guide: Gray or color image with the size of markers. Color images are
//     compared on their R, G and B channels; alpha is ignored.
//   - markers: Initial labels. Pixels >= 1 are seeds, 0 is unknown. The map
//     is not modified.
//
// Returns:
//   - *LabelMap: A new map in which every pixel is a seed label (>= 1) or -1.
//   - error: ErrDimensionMismatch when guide and markers differ in size,
//     ErrInvalidMarker when markers contains a negative label.
//
// # Algorithm
//
// The cost of the edge between two 4-neighbors is the largest absolute
// per-channel difference of their guide pixels. Unknown pixels wait in 256
// FIFO buckets keyed by the cheapest edge that connects them to a labeled
// neighbor, and the lowest non-empty bucket is always served first:
//
//  1. Every unknown pixel with a labeled neighbor is queued in raster order.
//  2. A pixel popped at level L that borders two different region labels
//     (>= 2) becomes -1 whatever the edge costs. Otherwise it looks at its
//     labeled neighbors whose edge cost is at most L. If they all carry one
//     label the pixel takes it and queues its unknown neighbors; if they carry
//     background and a region label the pixel becomes -1. Boundary pixels
//     never propagate and are never revisited.
//  3. A queued pixel reached again through a cheaper edge is queued again at
//     the lower level; the stale entry is skipped when popped.
//  4. Unknown pixels no seed can reach become -1.
//  5. A flooded pixel that ends up touching two different region labels, for
//     example background squeezed between two regions, becomes -1.
//
// Neighbors are visited left, right, up, down and equal priorities are served
// first in, first out, so identical inputs always produce identical maps. No
// boundary frame is drawn around the image.
func Watershed(guide image.Image, markers *LabelMap) (*LabelMap, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	gb := guide.Bounds()
	if gb.Dx() != markers.Width || gb.Dy() != markers.Height {
		return nil, fmt.Errorf("%w: guide %dx%d, markers %dx%d",
			ErrDimensionMismatch, gb.Dx(), gb.Dy(), markers.Width, markers.Height)
	}
	for i, l := range markers.Labels {
		if l < 0 {
			return nil, fmt.Errorf("%w: label %d at (%d,%d)", ErrInvalidMarker, l, i%markers.Width, i/markers.Width)
		}
	}

	w, h := markers.Width, markers.Height
	out := markers.Clone()
	if w == 0 || h == 0 {
		return out, nil
	}

	cost := edgeCost(guide)
	labels := out.Labels
	best := make([]uint16, w*h)
	for i := range best {
		best[i] = notQueued
	}
	q := newBucketQueue()

	neighbors := func(i int, fn func(j int)) {
		x, y := i%w, i/w
		if x > 0 {
			fn(i - 1)
		}
		if x < w-1 {
			fn(i + 1)
		}
		if y > 0 {
			fn(i - w)
		}
		if y < h-1 {
			fn(i + w)
		}
	}

	for i, l := range labels {
		if l != LabelUnknown {
			continue
		}
		lowest := notQueued
		neighbors(i, func(j int) {
			if labels[j] > 0 {
				if c := cost(i, j); c < lowest {
					lowest = c
				}
			}
		})
		if lowest < notQueued {
			best[i] = uint16(lowest)
			q.push(i, lowest)
		}
	}

	for {
		i, level, ok := q.pop()
		if !ok {
			break
		}
		if labels[i] != LabelUnknown || int(best[i]) != level {
			continue
		}

		adopted, region := LabelUnknown, LabelUnknown
		neighbors(i, func(j int) {
			l := labels[j]
			if l <= 0 {
				return
			}
			if l > LabelBackground {
				region = merge(region, l)
			}
			if cost(i, j) <= level {
				adopted = merge(adopted, l)
			}
		})
		if region == LabelBoundary {
			adopted = LabelBoundary
		}
		if adopted == LabelUnknown {
			continue
		}
		labels[i] = adopted
		if adopted == LabelBoundary {
			continue
		}

		neighbors(i, func(j int) {
			if labels[j] != LabelUnknown {
				return
			}
			if c := cost(i, j); c < int(best[j]) {
				best[j] = uint16(c)
				q.push(j, c)
			}
		})
	}

	for i, l := range labels {
		if l == LabelUnknown {
			labels[i] = LabelBoundary
		}
	}

	flooded := append([]int32(nil), labels...)
	for i, l := range flooded {
		if markers.Labels[i] != LabelUnknown || l == LabelBoundary {
			continue
		}
		region := LabelUnknown
		if l > LabelBackground {
			region = l
		}
		neighbors(i, func(j int) {
			if n := flooded[j]; n > LabelBackground {
				region = merge(region, n)
			}
		})
		if region == LabelBoundary {
			labels[i] = LabelBoundary
		}
	}
	return out, nil
}

// merge folds label l into the running label acc: the first label is kept,
// a second different one turns acc into LabelBoundary.
func merge(acc, l int32) int32 {
	switch acc {
	case LabelUnknown:
		return l
	case l, LabelBoundary:
		return acc
	default:
		return LabelBoundary
	}
}

// edgeCost returns a function giving the 4-neighbor edge cost between two
// pixel indices of guide.
func edgeCost(guide image.Image) func(i, j int) int {
	if g, ok := guide.(*image.Gray); ok {
		pix := imaging.CloneGray(g).Pix
		return func(i, j int) int {
			return absDiff(pix[i], pix[j])
		}
	}

	pix := imaging.ToNRGBA(guide).Pix
	return func(i, j int) int {
		a, b := pix[i*4:i*4+3:i*4+3], pix[j*4:j*4+3:j*4+3]
		d := absDiff(a[0], b[0])
		if c := absDiff(a[1], b[1]); c > d {
			d = c
		}
		if c := absDiff(a[2], b[2]); c > d {
			d = c
		}
		return d
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// bucketQueue is a monotone priority queue of pixel indices with one FIFO per
// level. Pushing below the current level moves the cursor back.
type bucketQueue struct {
	buckets [levels][]int
	heads   [levels]int
	cursor  int
}

func newBucketQueue() *bucketQueue {
	return &bucketQueue{cursor: levels}
}

func (q *bucketQueue) push(i, level int) {
	q.buckets[level] = append(q.buckets[level], i)
	if level < q.cursor {
		q.cursor = level
	}
}

// pop removes the oldest entry of the lowest non-empty bucket.
func (q *bucketQueue) pop() (int, int, bool) {
	for q.cursor < levels {
		b := q.cursor
		if q.heads[b] < len(q.buckets[b]) {
			i := q.buckets[b][q.heads[b]]
			q.heads[b]++
			return i, b, true
		}
		q.buckets[b] = q.buckets[b][:0]
		q.heads[b] = 0
		q.cursor++
	}
	return 0, 0, false
}
