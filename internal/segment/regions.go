package segment

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a sub-pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region summarizes all pixels carrying one region label (>= 2).
type Region struct {
	// Label is the region's label in the map.
	Label int32 `json:"label"`

	// Area is the pixel count.
	Area int `json:"area"`

	// Centroid is the mean pixel position.
	Centroid Point `json:"centroid"`

	// Bounds is the bounding box; Max is exclusive.
	Bounds image.Rectangle `json:"bounds"`

	// Elongation is 1 - λmin/λmax of the pixel-position covariance: 0 for a
	// disc or square, approaching 1 for a thin line. Regions of fewer than two
	// pixels have elongation 0.
	Elongation float64 `json:"elongation"`
}

// Regions computes the statistics of every region label in m, ordered by
// label. Background, unknown and boundary pixels are ignored.
func Regions(m *LabelMap) []Region {
	xs := make(map[int32][]float64)
	ys := make(map[int32][]float64)
	bounds := make(map[int32]image.Rectangle)

	for i, l := range m.Labels {
		if l < FirstRegionLabel {
			continue
		}
		x, y := i%m.Width, i/m.Width
		xs[l] = append(xs[l], float64(x))
		ys[l] = append(ys[l], float64(y))
		px := image.Rect(x, y, x+1, y+1)
		if b, ok := bounds[l]; ok {
			bounds[l] = b.Union(px)
		} else {
			bounds[l] = px
		}
	}

	regions := make([]Region, 0, len(xs))
	for l, x := range xs {
		y := ys[l]
		regions = append(regions, Region{
			Label:      l,
			Area:       len(x),
			Centroid:   Point{X: stat.Mean(x, nil), Y: stat.Mean(y, nil)},
			Bounds:     bounds[l],
			Elongation: elongation(x, y),
		})
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Label < regions[j].Label
	})
	return regions
}

// elongation derives 1 - λmin/λmax from the eigenvalues of the 2x2 covariance
// matrix of the pixel coordinates.
func elongation(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	cxx := stat.Covariance(xs, xs, nil)
	cyy := stat.Covariance(ys, ys, nil)
	cxy := stat.Covariance(xs, ys, nil)

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy}), false) {
		return 0
	}
	values := eig.Values(nil)
	lo, hi := values[0], values[1]
	if hi <= 0 {
		return 0
	}
	if lo < 0 {
		lo = 0
	}
	return 1 - lo/hi
}
