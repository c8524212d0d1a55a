//go:build gocv

package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// Operators implements segment.Operators with OpenCV.
type Operators struct{}

var _ segment.Operators = Operators{}

// New returns the OpenCV operators.
func New() (segment.Operators, error) {
	return Operators{}, nil
}

func (Operators) Erode(mask *image.Gray, iterations int) (*image.Gray, error) {
	return Erode(mask, iterations)
}

func (Operators) Dilate(mask *image.Gray, iterations int) (*image.Gray, error) {
	return Dilate(mask, iterations)
}

func (Operators) EuclideanDistance(mask *image.Gray) (*imaging.FloatImage, error) {
	return EuclideanDistance(mask)
}

func (Operators) Watershed(guide image.Image, markers *segment.LabelMap) (*segment.LabelMap, error) {
	return Watershed(guide, markers)
}

// grayToMat copies a gray image into a new 8UC1 Mat.
func grayToMat(img *image.Gray) (gocv.Mat, error) {
	c := imaging.CloneGray(img)
	b := c.Bounds()
	return gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, c.Pix)
}

// matToGray copies an 8UC1 Mat into a new gray image.
func matToGray(mat gocv.Mat) *image.Gray {
	rows, cols := mat.Rows(), mat.Cols()
	dst := imaging.NewGray(cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dst.Pix[y*dst.Stride+x] = mat.GetUCharAt(y, x)
		}
	}
	return dst
}

func morph(mask *image.Gray, iterations int, op func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat)) (*image.Gray, error) {
	src, err := grayToMat(mask)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	src.CopyTo(&dst)
	for i := 0; i < iterations; i++ {
		op(dst, &dst, kernel)
	}
	return matToGray(dst), nil
}

// Erode applies a 3x3 rectangular erosion iterations times.
func Erode(mask *image.Gray, iterations int) (*image.Gray, error) {
	return morph(mask, iterations, gocv.Erode)
}

// Dilate applies a 3x3 rectangular dilation iterations times.
func Dilate(mask *image.Gray, iterations int) (*image.Gray, error) {
	return morph(mask, iterations, gocv.Dilate)
}

// EuclideanDistance computes the exact L2 distance of every non-zero pixel
// to the nearest zero pixel.
func EuclideanDistance(mask *image.Gray) (*imaging.FloatImage, error) {
	src, err := grayToMat(mask)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(src, &dist, &labels, gocv.DistL2, gocv.DistanceMaskPrecise, gocv.DistanceLabelCComp)

	out := imaging.NewFloatImage(dist.Cols(), dist.Rows())
	for y := 0; y < dist.Rows(); y++ {
		for x := 0; x < dist.Cols(); x++ {
			out.Set(x, y, dist.GetFloatAt(y, x))
		}
	}
	return out, nil
}

// Watershed floods markers with cv::watershed guided by guide.
//
// The guide is converted to 8-bit BGR. Unlike segment.Watershed, OpenCV
// also marks the outermost image frame as boundary.
func Watershed(guide image.Image, markers *segment.LabelMap) (*segment.LabelMap, error) {
	b := guide.Bounds()
	if b.Dx() != markers.Width || b.Dy() != markers.Height {
		return nil, fmt.Errorf("%w: guide %dx%d, markers %dx%d", segment.ErrDimensionMismatch,
			b.Dx(), b.Dy(), markers.Width, markers.Height)
	}

	rgba := imaging.ToNRGBA(guide)
	src, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(src, &bgr, gocv.ColorRGBAToBGR)

	m := gocv.NewMatWithSize(markers.Height, markers.Width, gocv.MatTypeCV32S)
	defer m.Close()
	for y := 0; y < markers.Height; y++ {
		for x := 0; x < markers.Width; x++ {
			m.SetIntAt(y, x, markers.At(x, y))
		}
	}

	gocv.Watershed(bgr, &m)

	out := segment.NewLabelMap(markers.Width, markers.Height, segment.LabelUnknown)
	for y := 0; y < markers.Height; y++ {
		for x := 0; x < markers.Width; x++ {
			out.Set(x, y, m.GetIntAt(y, x))
		}
	}
	return out, nil
}
