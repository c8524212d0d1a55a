package segment

import (
	"fmt"
	"image"
)

// Label values with a fixed meaning.
const (
	LabelBoundary   int32 = -1
	LabelUnknown    int32 = 0
	LabelBackground int32 = 1

	// FirstRegionLabel is the label of the first discovered region; region i
	// (0-based) is labeled FirstRegionLabel+i.
	FirstRegionLabel int32 = 2
)

// LabelMap is a grid of signed 32-bit labels, row-major with no padding.
//
// 0 marks unknown pixels, 1 background, 2 and up the regions in discovery
// order and -1 boundaries. Boundaries only appear in Watershed output.
type LabelMap struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Labels []int32 `json:"labels"`
}

// NewLabelMap allocates a LabelMap with every pixel set to fill.
func NewLabelMap(width, height int, fill int32) *LabelMap {
	m := &LabelMap{
		Width:  width,
		Height: height,
		Labels: make([]int32, width*height),
	}
	if fill != 0 {
		for i := range m.Labels {
			m.Labels[i] = fill
		}
	}
	return m
}

// At returns the label at (x, y). No bounds checking is performed.
func (m *LabelMap) At(x, y int) int32 {
	return m.Labels[y*m.Width+x]
}

// Set stores label at (x, y). No bounds checking is performed.
func (m *LabelMap) Set(x, y int, label int32) {
	m.Labels[y*m.Width+x] = label
}

// Bounds returns the rectangle covered by the map.
func (m *LabelMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Clone returns a deep copy of m.
func (m *LabelMap) Clone() *LabelMap {
	c := &LabelMap{Width: m.Width, Height: m.Height, Labels: make([]int32, len(m.Labels))}
	copy(c.Labels, m.Labels)
	return c
}

// Histogram counts the pixels carrying each label.
func (m *LabelMap) Histogram() map[int32]int {
	h := make(map[int32]int)
	for _, l := range m.Labels {
		h[l]++
	}
	return h
}

// Validate checks that the map holds exactly Width*Height labels. It fails
// with ErrDimensionMismatch otherwise.
func (m *LabelMap) Validate() error {
	if m.Width < 0 || m.Height < 0 || len(m.Labels) != m.Width*m.Height {
		return fmt.Errorf("%w: label map %dx%d holds %d labels",
			ErrDimensionMismatch, m.Width, m.Height, len(m.Labels))
	}
	return nil
}
