package segment

import (
	"image"
	"math"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// infDistance stands in for "no zero pixel seen yet" in squared distances.
const infDistance = 1e20

// EuclideanDistance returns the exact Euclidean distance from every pixel of
// mask to the nearest zero pixel.
//
// Zero pixels map to 0. Distances are measured between pixel centers and only
// zero pixels inside the image count; the image border is not treated as
// background. A mask with no zero pixel yields an all-zero map.
//
// # Algorithm
//
// Squared distances are computed with the separable lower-envelope method of
// Felzenszwalb and Huttenlocher: one 1D pass down every column, then one along
// every row. Both passes are linear, so the whole transform is O(width*height).
func EuclideanDistance(mask *image.Gray) *imaging.FloatImage {
	src := imaging.CloneGray(mask)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := imaging.NewFloatImage(w, h)

	hasZero := false
	grid := make([]float64, w*h)
	for i, v := range src.Pix {
		if v == 0 {
			hasZero = true
		} else {
			grid[i] = infDistance
		}
	}
	if !hasZero {
		return out
	}

	n := w
	if h > n {
		n = h
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = grid[y*w+x]
		}
		edt1D(f[:h], d[:h], v, z)
		for y := 0; y < h; y++ {
			grid[y*w+x] = d[y]
		}
	}
	for y := 0; y < h; y++ {
		copy(f[:w], grid[y*w:(y+1)*w])
		edt1D(f[:w], d[:w], v, z)
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = float32(math.Sqrt(d[x]))
		}
	}
	return out
}

// edt1D computes the 1D squared distance transform of the sampled function f
// into d. v and z are scratch buffers of at least len(f) and len(f)+1.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	if n == 0 {
		return
	}
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// intersect returns the abscissa where the parabolas rooted at q and p meet.
func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}

// Rescale linearly maps the samples of dist onto [0, 255].
//
// The smallest sample becomes 0 and the largest 255, with rounding to the
// nearest integer. A constant map (including an empty one) rescales to all 0.
func Rescale(dist *imaging.FloatImage) *image.Gray {
	dst := imaging.NewGray(dist.Width, dist.Height)
	lo, hi := dist.MinMax()
	if hi <= lo {
		return dst
	}
	scale := 255 / float64(hi-lo)
	for i, v := range dist.Pix {
		dst.Pix[i] = imaging.Saturate(int(math.Round(float64(v-lo) * scale)))
	}
	return dst
}
