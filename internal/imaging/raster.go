package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// FloatImage is a single-channel image of 32-bit float samples.
//
// It holds values that do not fit an 8-bit channel, such as distance transform
// output. Pixels are stored row-major with no padding: the sample for (x, y)
// lives at Pix[y*Width+x]. The origin is always (0, 0).
type FloatImage struct {
	Width  int
	Height int
	Pix    []float32
}

// NewFloatImage allocates a zero-filled FloatImage of the given size.
func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// At returns the sample at (x, y). No bounds checking is performed.
func (f *FloatImage) At(x, y int) float32 {
	return f.Pix[y*f.Width+x]
}

// Set stores v at (x, y). No bounds checking is performed.
func (f *FloatImage) Set(x, y int, v float32) {
	f.Pix[y*f.Width+x] = v
}

// Bounds returns the rectangle covered by the image.
func (f *FloatImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// MinMax returns the smallest and largest sample. An empty image returns (0, 0).
func (f *FloatImage) MinMax() (float32, float32) {
	if len(f.Pix) == 0 {
		return 0, 0
	}
	lo, hi := f.Pix[0], f.Pix[0]
	for _, v := range f.Pix[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Saturate clamps an integer to the 8-bit range [0, 255].
func Saturate(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// AddSaturate returns a + delta clamped to [0, 255].
func AddSaturate(a uint8, delta int) uint8 {
	return Saturate(int(a) + delta)
}

// SubSaturate returns a - b floored at 0.
func SubSaturate(a, b uint8) uint8 {
	if b >= a {
		return 0
	}
	return a - b
}

// NewGray allocates a black 8-bit image of the given size with origin (0, 0).
func NewGray(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// CloneGray copies src into a new image whose origin is (0, 0) and whose
// stride equals its width.
func CloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := NewGray(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		srcOff := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[srcOff:srcOff+b.Dx()])
	}
	return dst
}

// SubtractGray returns the pixelwise a - b floored at 0.
//
// Both images must have the same dimensions; the caller is responsible for
// checking. The result has origin (0, 0).
func SubtractGray(a, b *image.Gray) *image.Gray {
	a = CloneGray(a)
	b = CloneGray(b)
	for i := range a.Pix {
		a.Pix[i] = SubSaturate(a.Pix[i], b.Pix[i])
	}
	return a
}

// SameSize reports whether two rectangles have the same width and height.
func SameSize(a, b image.Rectangle) bool {
	return a.Dx() == b.Dx() && a.Dy() == b.Dy()
}

// ToNRGBA converts img to a non-premultiplied RGBA image with origin (0, 0)
// and a stride of 4*width.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
