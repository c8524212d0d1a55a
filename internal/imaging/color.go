package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Channel identifies a single 8-bit channel that can be extracted from a color
// image.
type Channel int

// Supported channels. Hue uses the 8-bit half-degree convention (0-179);
// saturation and value are scaled to 0-255; Lab uses L*255/100 and a, b offset
// by 128.
const (
	ChannelGray Channel = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelHue
	ChannelSaturation
	ChannelValue
	ChannelLabL
	ChannelLabA
	ChannelLabB
)

var channelNames = map[Channel]string{
	ChannelGray:       "gray",
	ChannelRed:        "red",
	ChannelGreen:      "green",
	ChannelBlue:       "blue",
	ChannelHue:        "hue",
	ChannelSaturation: "saturation",
	ChannelValue:      "value",
	ChannelLabL:       "lab-l",
	ChannelLabA:       "lab-a",
	ChannelLabB:       "lab-b",
}

// String returns the channel name used in parameter files.
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseChannel maps a channel name back to its Channel.
func ParseChannel(name string) (Channel, error) {
	for c, n := range channelNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel: %s", name)
}

// ExtractChannel returns one channel of img as a new 8-bit image with origin
// (0, 0).
//
// # Conversions
//
//   - gray: ITU-R BT.601 luminance (0.299*R + 0.587*G + 0.114*B), rounded
//   - red, green, blue: the raw 8-bit component
//   - hue: HSV hue in degrees divided by 2 (0-179)
//   - saturation, value: HSV components scaled to 0-255
//   - lab-l: CIE L* scaled to 0-255
//   - lab-a, lab-b: CIE a*, b* offset by 128 and clamped to 0-255
//
// Alpha is ignored.
func ExtractChannel(img image.Image, c Channel) (*image.Gray, error) {
	switch c {
	case ChannelGray:
		return firstChannel(imaging.Grayscale(img)), nil
	case ChannelRed:
		return CloneGray(channel.Extract(img, channel.Red)), nil
	case ChannelGreen:
		return CloneGray(channel.Extract(img, channel.Green)), nil
	case ChannelBlue:
		return CloneGray(channel.Extract(img, channel.Blue)), nil
	case ChannelHue, ChannelSaturation, ChannelValue, ChannelLabL, ChannelLabA, ChannelLabB:
		return mapPixels(img, func(col colorful.Color) uint8 {
			return convertColor(col, c)
		}), nil
	default:
		return nil, fmt.Errorf("unsupported channel: %s", c)
	}
}

// convertColor picks one 8-bit component of col in the color space named by c.
func convertColor(col colorful.Color, c Channel) uint8 {
	switch c {
	case ChannelHue:
		h, _, _ := col.Hsv()
		return Saturate(int(math.Round(h/2)) % 180)
	case ChannelSaturation:
		_, s, _ := col.Hsv()
		return Saturate(int(math.Round(s * 255)))
	case ChannelValue:
		_, _, v := col.Hsv()
		return Saturate(int(math.Round(v * 255)))
	case ChannelLabL:
		l, _, _ := col.Lab()
		return Saturate(int(math.Round(l * 255)))
	case ChannelLabA:
		_, a, _ := col.Lab()
		return Saturate(int(math.Round(a*100)) + 128)
	case ChannelLabB:
		_, _, b := col.Lab()
		return Saturate(int(math.Round(b*100)) + 128)
	}
	return 0
}

// mapPixels converts every pixel of img with fn.
func mapPixels(img image.Image, fn func(colorful.Color) uint8) *image.Gray {
	src := imaging.Clone(img)
	b := src.Bounds()
	dst := NewGray(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			off := src.PixOffset(x+b.Min.X, y+b.Min.Y)
			s := src.Pix[off : off+3 : off+3]
			col := colorful.Color{
				R: float64(s[0]) / 255.0,
				G: float64(s[1]) / 255.0,
				B: float64(s[2]) / 255.0,
			}
			dst.Pix[y*dst.Stride+x] = fn(col)
		}
	}
	return dst
}

// HueInRange reports whether hue lies in the band [low, high].
//
// Hues are on the 8-bit half-degree scale (0-180). When low > high the band
// wraps around red: it covers [low, 180] and [0, high]. For example
// HueInRange(5, 170, 10) and HueInRange(175, 170, 10) are true while
// HueInRange(90, 170, 10) is false.
func HueInRange(hue, low, high int) bool {
	if low <= high {
		return hue >= low && hue <= high
	}
	return hue >= low || hue <= high
}

// HSVParams holds the parameters of the HSV recognition path.
type HSVParams struct {
	HueLow     int        `json:"hue_low"`
	HueHigh    int        `json:"hue_high"`
	Saturation GrayParams `json:"saturation"`
	Value      GrayParams `json:"value"`
}

// Validate checks hue bounds are in [0, 180] and both channel parameter sets.
func (p HSVParams) Validate() error {
	if p.HueLow < 0 || p.HueLow > 180 || p.HueHigh < 0 || p.HueHigh > 180 {
		return fmt.Errorf("%w: hue band [%d,%d] outside [0,180]", ErrInvalidThreshold, p.HueLow, p.HueHigh)
	}
	if err := p.Saturation.Validate(); err != nil {
		return fmt.Errorf("saturation: %w", err)
	}
	if err := p.Value.Validate(); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	return nil
}

// HueMask returns a binary image that is 255 where the hue channel lies in
// [low, high] (with wraparound, see HueInRange) and 0 elsewhere.
func HueMask(hue *image.Gray, low, high int) *image.Gray {
	dst := CloneGray(hue)
	for i, v := range dst.Pix {
		if HueInRange(int(v), low, high) {
			dst.Pix[i] = 255
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}

// IntersectMasks returns the pixelwise minimum of the given masks.
// All masks must share the dimensions of the first one.
func IntersectMasks(first *image.Gray, rest ...*image.Gray) (*image.Gray, error) {
	dst := CloneGray(first)
	for _, m := range rest {
		if !SameSize(m.Bounds(), dst.Bounds()) {
			return nil, fmt.Errorf("%w: mask %dx%d vs %dx%d", ErrDimensionMismatch,
				m.Bounds().Dx(), m.Bounds().Dy(), dst.Bounds().Dx(), dst.Bounds().Dy())
		}
		src := CloneGray(m)
		for i, v := range src.Pix {
			if v < dst.Pix[i] {
				dst.Pix[i] = v
			}
		}
	}
	return dst, nil
}
