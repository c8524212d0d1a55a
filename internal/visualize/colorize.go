package visualize

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// DefaultSeed is the palette seed used when callers have no preference.
const DefaultSeed int64 = 12345

var (
	backgroundColor = color.NRGBA{0, 0, 0, 255}
	boundaryColor   = color.NRGBA{255, 255, 255, 255}
)

// LabelColor returns the palette color of label.
//
// The color is drawn from a pseudo-random generator seeded with seed+label, so
// a label always maps to the same color for a given seed. Hue is uniform over
// the color wheel; saturation and value stay in the upper half so that regions
// never come out black or white.
func LabelColor(label int32, seed int64) color.NRGBA {
	rng := rand.New(rand.NewSource(seed + int64(label)))
	h := rng.Float64() * 360
	s := 0.5 + rng.Float64()*0.5
	v := 0.6 + rng.Float64()*0.4

	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Colorize paints every pixel of m with its label color.
//
// Background (label 1), unknown (label 0) and any label listed in background
// are painted black; boundaries (-1) are white. Use the extra background
// labels to hide ids that carry no region, such as a sentinel value.
//
// A map whose label count does not match its size fails with
// segment.ErrDimensionMismatch.
func Colorize(m *segment.LabelMap, seed int64, background ...int32) (*image.NRGBA, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(m.Bounds())

	palette := map[int32]color.NRGBA{
		segment.LabelBoundary:   boundaryColor,
		segment.LabelUnknown:    backgroundColor,
		segment.LabelBackground: backgroundColor,
	}
	for _, l := range background {
		palette[l] = backgroundColor
	}

	for i, l := range m.Labels {
		c, ok := palette[l]
		if !ok {
			c = LabelColor(l, seed)
			palette[l] = c
		}
		off := i * 4
		dst.Pix[off+0] = c.R
		dst.Pix[off+1] = c.G
		dst.Pix[off+2] = c.B
		dst.Pix[off+3] = c.A
	}
	return dst, nil
}

// Boundaries returns a mask that is 255 on boundary pixels (-1) and 0
// elsewhere.
func Boundaries(m *segment.LabelMap) (*image.Gray, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	dst := image.NewGray(m.Bounds())
	for i, l := range m.Labels {
		if l == segment.LabelBoundary {
			dst.Pix[i] = 255
		}
	}
	return dst, nil
}
