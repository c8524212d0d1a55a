package recognition

import (
	"fmt"
	"sort"

	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// Criteria decides which segmented regions count as candidates.
//
// A zero field disables its check, so the zero Criteria accepts everything.
type Criteria struct {
	// MinArea is the smallest accepted area in pixels.
	MinArea int `json:"min_area"`

	// MaxArea is the largest accepted area in pixels.
	MaxArea int `json:"max_area"`

	// MaxElongation rejects regions stretched beyond this value (0.0 to 1.0).
	// See segment.Region.Elongation.
	MaxElongation float64 `json:"max_elongation"`

	// MinFill is the smallest accepted ratio of area to bounding-box area
	// (0.0 to 1.0). A filled axis-aligned rectangle scores 1.0, a disc about
	// 0.785.
	MinFill float64 `json:"min_fill"`
}

// Validate checks that the bounds are non-negative and ordered.
func (c Criteria) Validate() error {
	if c.MinArea < 0 || c.MaxArea < 0 {
		return fmt.Errorf("criteria: negative area bound")
	}
	if c.MaxArea > 0 && c.MinArea > c.MaxArea {
		return fmt.Errorf("criteria: min area %d above max area %d", c.MinArea, c.MaxArea)
	}
	if c.MaxElongation < 0 || c.MaxElongation > 1 {
		return fmt.Errorf("criteria: max elongation %g outside [0,1]", c.MaxElongation)
	}
	if c.MinFill < 0 || c.MinFill > 1 {
		return fmt.Errorf("criteria: min fill %g outside [0,1]", c.MinFill)
	}
	return nil
}

// Fill returns the ratio of a region's area to its bounding-box area.
func Fill(r segment.Region) float64 {
	box := r.Bounds.Dx() * r.Bounds.Dy()
	if box == 0 {
		return 0
	}
	return float64(r.Area) / float64(box)
}

// Accept reports whether r passes every enabled check.
func (c Criteria) Accept(r segment.Region) bool {
	if r.Area < c.MinArea {
		return false
	}
	if c.MaxArea > 0 && r.Area > c.MaxArea {
		return false
	}
	if c.MaxElongation > 0 && r.Elongation > c.MaxElongation {
		return false
	}
	if c.MinFill > 0 && Fill(r) < c.MinFill {
		return false
	}
	return true
}

// Filter returns the accepted regions sorted by area, largest first. Equal
// areas keep label order.
func (c Criteria) Filter(regions []segment.Region) []segment.Region {
	accepted := make([]segment.Region, 0, len(regions))
	for _, r := range regions {
		if c.Accept(r) {
			accepted = append(accepted, r)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Area > accepted[j].Area
	})
	return accepted
}
