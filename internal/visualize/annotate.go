package visualize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// DefaultMarkColor is the overlay color used when none is given.
const DefaultMarkColor = "#FF0000"

// Annotate draws the segmentation result over img.
//
// Parameters:
//   - img: The analyzed image (usually the preprocessed ROI). Must have the
//     size of labels.
//   - labels: Watershed output; boundary pixels are painted in markColorHex.
//   - regions: Regions to mark; each gets a cross at its centroid and its label
//     number next to it.
//   - markColorHex: Overlay color as "#RRGGBB" or "#RRGGBBAA". An invalid value
//     falls back to DefaultMarkColor.
//
// Returns a new image with origin (0, 0), or an error wrapping
// segment.ErrDimensionMismatch.
func Annotate(img image.Image, labels *segment.LabelMap, regions []segment.Region, markColorHex string) (*image.RGBA, error) {
	if err := labels.Validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() != labels.Width || bounds.Dy() != labels.Height {
		return nil, fmt.Errorf("%w: image %dx%d, labels %dx%d", segment.ErrDimensionMismatch,
			bounds.Dx(), bounds.Dy(), labels.Width, labels.Height)
	}

	mark, err := parseHexColor(markColorHex)
	if err != nil {
		mark, _ = parseHexColor(DefaultMarkColor)
	}

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	// Boundaries
	for i, l := range labels.Labels {
		if l == segment.LabelBoundary {
			result.Set(i%labels.Width, i/labels.Width, mark)
		}
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}
	for _, r := range regions {
		cx, cy := int(r.Centroid.X+0.5), int(r.Centroid.Y+0.5)
		drawCross(result, cx, cy, 3, mark)
		drawLabel(result, cx+3, cy+3, strconv.Itoa(int(r.Label)), labelColor, bgColor)
	}

	return result, nil
}

// drawCross draws a plus sign of the given arm length centered at (x, y).
func drawCross(img *image.RGBA, x, y, arm int, c color.RGBA) {
	bounds := img.Bounds()
	for d := -arm; d <= arm; d++ {
		if p := image.Pt(x+d, y); p.In(bounds) {
			img.Set(p.X, p.Y, c)
		}
		if p := image.Pt(x, y+d); p.In(bounds) {
			img.Set(p.X, p.Y, c)
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// glyphs is a 3x5 pixel font for digits and the minus sign.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text with the built-in font on a filled box whose top-left
// corner is (x, y). Unknown characters leave a blank cell.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if p := image.Pt(x+dx, y+dy); p.In(bounds) {
				img.Set(p.X, p.Y, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := image.Pt(cx+col, y+row); p.In(bounds) {
					img.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
