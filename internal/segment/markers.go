package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// BuildMarkers turns the sure-foreground mask into the initial label map for
// Watershed.
//
// Parameters:
//   - foreground: Sure-foreground mask; any nonzero pixel is foreground.
//   - unknown: The unknown band (see Estimate.Unknown); any nonzero pixel is
//     unknown. Must have the size of foreground.
//
// Returns:
//   - *LabelMap: Background 1, region i labeled i+2, unknown pixels 0.
//   - int: The number of regions.
//   - error: ErrDimensionMismatch when the masks differ in size, ErrNoRegions
//     when foreground is empty.
//
// # Algorithm
//
//  1. Find the external 8-connected components of foreground. Each component
//     is filled: its holes, and any component nested inside a hole, belong to
//     it. Components are numbered in raster order of their first pixel.
//  2. Initialize every label to 1.
//  3. Paint component i with i+2.
//  4. In a second pass, reset every pixel flagged in unknown to 0. This pass
//     runs after painting so that a foreground pixel that is also unknown ends
//     up 0.
func BuildMarkers(foreground, unknown *image.Gray) (*LabelMap, int, error) {
	if !imaging.SameSize(foreground.Bounds(), unknown.Bounds()) {
		return nil, 0, fmt.Errorf("%w: foreground %dx%d, unknown %dx%d", ErrDimensionMismatch,
			foreground.Bounds().Dx(), foreground.Bounds().Dy(), unknown.Bounds().Dx(), unknown.Bounds().Dy())
	}

	fg := imaging.CloneGray(foreground)
	w, h := fg.Rect.Dx(), fg.Rect.Dy()
	owner, count := externalComponents(fg.Pix, w, h)
	if count == 0 {
		return nil, 0, ErrNoRegions
	}

	labels := NewLabelMap(w, h, LabelBackground)

	// label pass
	for i, c := range owner {
		if c >= 0 {
			labels.Labels[i] = FirstRegionLabel + c
		}
	}

	// unknown-override pass
	unk := imaging.CloneGray(unknown)
	for i, v := range unk.Pix {
		if v != 0 {
			labels.Labels[i] = LabelUnknown
		}
	}

	return labels, count, nil
}

// externalComponents returns, for every pixel, the 0-based index of the filled
// external component covering it, or -1. pix is a w*h mask where nonzero is
// foreground.
func externalComponents(pix []uint8, w, h int) ([]int32, int) {
	owner := make([]int32, w*h)
	for i := range owner {
		owner[i] = -1
	}

	var count int32
	var stack []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if pix[i] == 0 || owner[i] >= 0 {
				continue
			}
			var pixels []image.Point
			pixels, stack = collectComponent(pix, owner, w, h, x, y, count, stack)
			fillHoles(owner, w, pixels, count)
			count++
		}
	}
	return owner, int(count)
}

// collectComponent flood-fills the 8-connected component at (x, y), marking
// it with id in owner, and returns its pixels.
//
// Uses an explicit stack so large components cannot overflow the goroutine
// stack. The stack buffer is returned for reuse.
func collectComponent(pix []uint8, owner []int32, w, h, x, y int, id int32, stack []image.Point) ([]image.Point, []image.Point) {
	var pixels []image.Point
	stack = append(stack[:0], image.Pt(x, y))
	owner[y*w+x] = id

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pixels = append(pixels, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if pix[j] == 0 || owner[j] >= 0 {
					continue
				}
				owner[j] = id
				stack = append(stack, image.Pt(nx, ny))
			}
		}
	}
	return pixels, stack
}

// fillHoles assigns id to every pixel enclosed by the component made of
// pixels.
//
// The component's bounding box, grown by one pixel on each side, is flooded
// from its border through 4-connected pixels that are not part of the
// component. Whatever the flood cannot reach is enclosed.
func fillHoles(owner []int32, w int, pixels []image.Point, id int32) {
	box := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels[1:] {
		box = box.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	box = box.Inset(-1)
	bw, bh := box.Dx(), box.Dy()

	const (
		open = iota
		wall
		outside
	)
	state := make([]uint8, bw*bh)
	for _, p := range pixels {
		state[(p.Y-box.Min.Y)*bw+(p.X-box.Min.X)] = wall
	}

	// The grown box border never touches the component, so its corner is
	// outside.
	state[0] = outside
	queue := []int{0}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%bw, i/bw
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= bw || ny < 0 || ny >= bh {
				continue
			}
			j := ny*bw + nx
			if state[j] != open {
				continue
			}
			state[j] = outside
			queue = append(queue, j)
		}
	}

	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			if state[by*bw+bx] == open {
				owner[(by+box.Min.Y)*w+(bx+box.Min.X)] = id
			}
		}
	}
}
