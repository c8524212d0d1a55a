package segment

import (
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// Operators are the primitive stages the estimators and the recognizer are
// built from. Native runs them with the functions of this package; package
// opencv provides an OpenCV implementation.
type Operators interface {
	Erode(mask *image.Gray, iterations int) (*image.Gray, error)
	Dilate(mask *image.Gray, iterations int) (*image.Gray, error)
	EuclideanDistance(mask *image.Gray) (*imaging.FloatImage, error)
	Watershed(guide image.Image, markers *LabelMap) (*LabelMap, error)
}

// Native implements Operators in pure Go.
type Native struct{}

func (Native) Erode(mask *image.Gray, iterations int) (*image.Gray, error) {
	return Erode(mask, iterations), nil
}

func (Native) Dilate(mask *image.Gray, iterations int) (*image.Gray, error) {
	return Dilate(mask, iterations), nil
}

func (Native) EuclideanDistance(mask *image.Gray) (*imaging.FloatImage, error) {
	return EuclideanDistance(mask), nil
}

func (Native) Watershed(guide image.Image, markers *LabelMap) (*LabelMap, error) {
	return Watershed(guide, markers)
}
