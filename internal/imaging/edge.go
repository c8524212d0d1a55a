package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// sharpenKernel is the fixed 3x3 sharpening kernel, row-major.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Sharpen convolves img with the fixed 3x3 sharpening kernel.
//
// The kernel is applied per color channel without normalization. Border pixels
// use replicated edge values: a neighbor outside the image reads the nearest
// in-bounds pixel. Results are rounded half-up and clamped to [0, 255]. Alpha is
// copied unchanged. The result has origin (0, 0).
//
// Each output pixel depends only on the input, so the operation is stateless and
// independent of evaluation order.
func Sharpen(img image.Image) *image.NRGBA {
	return imaging.Convolve3x3(img, sharpenKernel, nil)
}

// SharpenGray applies Sharpen to a single-channel image.
func SharpenGray(img *image.Gray) *image.Gray {
	return firstChannel(Sharpen(img))
}

// firstChannel copies the red channel of an NRGBA image into a Gray image.
// For images produced from gray sources all three color channels are equal.
func firstChannel(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := NewGray(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = src.Pix[src.PixOffset(x+b.Min.X, y+b.Min.Y)]
		}
	}
	return dst
}
