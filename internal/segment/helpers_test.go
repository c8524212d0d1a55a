package segment

import (
	"image"
	"image/color"
)

// newMask creates a black single-channel image.
func newMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// fillRect paints r with 255.
func fillRect(m *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{255})
		}
	}
}

// fillDisc paints every pixel within radius r of (cx, cy) with 255.
func fillDisc(m *image.Gray, cx, cy, r int) {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				m.SetGray(x, y, color.Gray{255})
			}
		}
	}
}

// countNonZero returns the number of nonzero pixels.
func countNonZero(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// runEngine runs threshold, estimation, markers and watershed on a gray
// image and returns the final map and the number of seeds.
func runEngine(img *image.Gray, thresholdLow int, strategy Strategy, opts Options) (*LabelMap, int, error) {
	binary, err := Threshold(img, thresholdLow)
	if err != nil {
		return nil, 0, err
	}
	est, err := NewEstimator(strategy, opts)
	if err != nil {
		return nil, 0, err
	}
	e, err := est.Estimate(binary)
	if err != nil {
		return nil, 0, err
	}
	markers, n, err := BuildMarkers(e.SureForeground, e.Unknown())
	if err != nil {
		return nil, 0, err
	}
	labels, err := Watershed(img, markers)
	return labels, n, err
}
