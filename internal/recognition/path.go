package recognition

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// ErrUnknownPath is returned for a recognition path name that does not exist.
var ErrUnknownPath = errors.New("unknown recognition path")

// Path selects how a cropped color frame is turned into the binary mask the
// engine segments.
type Path int

const (
	PathGray Path = iota
	PathRed
	PathGreen
	PathBlue
	PathHue
	PathSaturation
	PathValue
	PathLabL
	PathLabA
	PathLabB

	// PathHSVMask intersects a hue band with thresholded saturation and value
	// channels.
	PathHSVMask
)

var pathChannels = map[Path]imaging.Channel{
	PathGray:       imaging.ChannelGray,
	PathRed:        imaging.ChannelRed,
	PathGreen:      imaging.ChannelGreen,
	PathBlue:       imaging.ChannelBlue,
	PathHue:        imaging.ChannelHue,
	PathSaturation: imaging.ChannelSaturation,
	PathValue:      imaging.ChannelValue,
	PathLabL:       imaging.ChannelLabL,
	PathLabA:       imaging.ChannelLabA,
	PathLabB:       imaging.ChannelLabB,
}

const hsvMaskName = "hsv-mask"

func (p Path) String() string {
	if p == PathHSVMask {
		return hsvMaskName
	}
	if c, ok := pathChannels[p]; ok {
		return c.String()
	}
	return fmt.Sprintf("Path(%d)", int(p))
}

// Paths lists every recognition path in declaration order.
func Paths() []Path {
	return []Path{
		PathGray, PathRed, PathGreen, PathBlue,
		PathHue, PathSaturation, PathValue,
		PathLabL, PathLabA, PathLabB,
		PathHSVMask,
	}
}

// ParsePath maps a name such as "red" or "hsv-mask" to its Path.
func ParsePath(name string) (Path, error) {
	for _, p := range Paths() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPath, name)
}

// binaryMask runs the path's channel selection, normalization and
// thresholding on crop.
func binaryMask(crop image.Image, p Path, gray imaging.GrayParams, hsv imaging.HSVParams) (*image.Gray, error) {
	if p == PathHSVMask {
		return hsvMask(crop, hsv)
	}
	c, ok := pathChannels[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	ch, err := imaging.ExtractChannel(crop, c)
	if err != nil {
		return nil, err
	}
	return thresholdChannel(ch, gray)
}

func thresholdChannel(ch *image.Gray, params imaging.GrayParams) (*image.Gray, error) {
	normalized, err := imaging.Normalize(ch, params.MedianTarget)
	if err != nil {
		return nil, err
	}
	return segment.Threshold(normalized, params.ThresholdLow)
}

func hsvMask(crop image.Image, params imaging.HSVParams) (*image.Gray, error) {
	hue, err := imaging.ExtractChannel(crop, imaging.ChannelHue)
	if err != nil {
		return nil, err
	}
	sat, err := imaging.ExtractChannel(crop, imaging.ChannelSaturation)
	if err != nil {
		return nil, err
	}
	val, err := imaging.ExtractChannel(crop, imaging.ChannelValue)
	if err != nil {
		return nil, err
	}

	satMask, err := thresholdChannel(sat, params.Saturation)
	if err != nil {
		return nil, fmt.Errorf("saturation: %w", err)
	}
	valMask, err := thresholdChannel(val, params.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return imaging.IntersectMasks(imaging.HueMask(hue, params.HueLow, params.HueHigh), satMask, valMask)
}
