package segment

import (
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// Erode applies a 3x3 square minimum filter iterations times.
//
// Neighbors outside the image are ignored, so an all-255 mask stays all-255
// after any number of erosions.
func Erode(mask *image.Gray, iterations int) *image.Gray {
	return morph(mask, iterations, minByte)
}

// Dilate applies a 3x3 square maximum filter iterations times.
//
// Neighbors outside the image are ignored.
func Dilate(mask *image.Gray, iterations int) *image.Gray {
	return morph(mask, iterations, maxByte)
}

// Open erodes iterations times and then dilates iterations times.
// Blobs narrower than about 2*iterations+1 pixels disappear while larger
// regions keep their shape.
func Open(mask *image.Gray, iterations int) *image.Gray {
	return Dilate(Erode(mask, iterations), iterations)
}

func minByte(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// morph runs a separable 3x3 rank filter. The square window clipped to the
// image is a product of a row range and a column range, so a horizontal pass
// followed by a vertical pass gives the same result as the full window.
func morph(mask *image.Gray, iterations int, pick func(a, b uint8) uint8) *image.Gray {
	cur := imaging.CloneGray(mask)
	w, h := cur.Rect.Dx(), cur.Rect.Dy()
	if w == 0 || h == 0 {
		return cur
	}
	tmp := imaging.NewGray(w, h)

	for it := 0; it < iterations; it++ {
		// horizontal
		for y := 0; y < h; y++ {
			row := cur.Pix[y*w : (y+1)*w]
			out := tmp.Pix[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				v := row[x]
				if x > 0 {
					v = pick(v, row[x-1])
				}
				if x < w-1 {
					v = pick(v, row[x+1])
				}
				out[x] = v
			}
		}
		// vertical
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				v := tmp.Pix[i]
				if y > 0 {
					v = pick(v, tmp.Pix[i-w])
				}
				if y < h-1 {
					v = pick(v, tmp.Pix[i+w])
				}
				cur.Pix[i] = v
			}
		}
	}
	return cur
}
