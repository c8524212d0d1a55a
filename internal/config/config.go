// Package config loads recognizer parameters from XML files and the
// environment.
//
// A parameter file describes one camera: the frame size and ROI, the
// segmentation strategy and backend, region criteria and any number of named
// channel parameter sets. Each <gray> entry is named after the recognition path it
// configures ("red", "lab-a", ...). Each <hsv> entry has a free-form name and
// always uses the hsv-mask path.
//
//	<parameters>
//	  <image source="cam0" width="640" height="480">
//	    <roi x="0" y="0" width="640" height="480"/>
//	  </image>
//	  <segmentation strategy="distance" peakCutoff="100" sharpen="true" backend="native"/>
//	  <criteria minArea="50" maxArea="0" maxElongation="0" minFill="0"/>
//	  <gray name="red" medianTarget="100" thresholdLow="-128"/>
//	  <hsv name="green" hueLow="40" hueHigh="80"
//	       saturationMedianTarget="128" saturationThresholdLow="60"
//	       valueMedianTarget="128" valueThresholdLow="40"/>
//	</parameters>
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
	"github.com/ironsheep/piece-segmenter/internal/recognition"
	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// ErrUnknownParameterSet is returned by Settings for a name with no <gray> or
// <hsv> entry.
var ErrUnknownParameterSet = errors.New("unknown parameter set")

// Defaults used for attributes a file leaves out and by Default.
const (
	DefaultStrategy     = "distance"
	DefaultMedianTarget = 128
	DefaultThresholdLow = 160
)

// Parameters is the decoded parameter file.
type Parameters struct {
	XMLName      xml.Name     `xml:"parameters"`
	Image        Image        `xml:"image"`
	Segmentation Segmentation `xml:"segmentation"`
	Criteria     Criteria     `xml:"criteria"`
	Gray         []Gray       `xml:"gray"`
	HSV          []HSV        `xml:"hsv"`
}

// Image is the <image> element.
type Image struct {
	Source string `xml:"source,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
	ROI    ROI    `xml:"roi"`
}

// ROI is the <roi> element.
type ROI struct {
	X      int `xml:"x,attr"`
	Y      int `xml:"y,attr"`
	Width  int `xml:"width,attr"`
	Height int `xml:"height,attr"`
}

// Segmentation is the <segmentation> element.
type Segmentation struct {
	Strategy   string `xml:"strategy,attr"`
	PeakCutoff int    `xml:"peakCutoff,attr"`
	Sharpen    bool   `xml:"sharpen,attr"`

	// Backend is "native" (the default) or "opencv".
	Backend string `xml:"backend,attr"`
}

// Criteria is the <criteria> element.
type Criteria struct {
	MinArea       int     `xml:"minArea,attr"`
	MaxArea       int     `xml:"maxArea,attr"`
	MaxElongation float64 `xml:"maxElongation,attr"`
	MinFill       float64 `xml:"minFill,attr"`
}

// Gray is a <gray> element.
type Gray struct {
	Name         string `xml:"name,attr"`
	MedianTarget int    `xml:"medianTarget,attr"`
	ThresholdLow int    `xml:"thresholdLow,attr"`
}

// HSV is an <hsv> element.
type HSV struct {
	Name                   string `xml:"name,attr"`
	HueLow                 int    `xml:"hueLow,attr"`
	HueHigh                int    `xml:"hueHigh,attr"`
	SaturationMedianTarget int    `xml:"saturationMedianTarget,attr"`
	SaturationThresholdLow int    `xml:"saturationThresholdLow,attr"`
	ValueMedianTarget      int    `xml:"valueMedianTarget,attr"`
	ValueThresholdLow      int    `xml:"valueThresholdLow,attr"`
}

// Default returns parameters for a width x height frame: full-frame ROI,
// distance strategy and a single "gray" entry.
func Default(width, height int) *Parameters {
	return &Parameters{
		Image: Image{
			Source: "default",
			Width:  width,
			Height: height,
			ROI:    ROI{Width: width, Height: height},
		},
		Segmentation: Segmentation{
			Strategy:   DefaultStrategy,
			PeakCutoff: segment.DefaultPeakCutoff,
		},
		Gray: []Gray{{
			Name:         recognition.PathGray.String(),
			MedianTarget: DefaultMedianTarget,
			ThresholdLow: DefaultThresholdLow,
		}},
	}
}

// Parse decodes and validates a parameter file.
func Parse(r io.Reader) (*Parameters, error) {
	p := &Parameters{
		Segmentation: Segmentation{
			Strategy:   DefaultStrategy,
			PeakCutoff: segment.DefaultPeakCutoff,
		},
	}
	if err := xml.NewDecoder(r).Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads the parameter file at path.
func Load(path string) (*Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameters: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate builds the settings of every parameter set and reports the first
// error. Names must be unique across <gray> and <hsv>.
func (p *Parameters) Validate() error {
	names := p.Names()
	if len(names) == 0 {
		return errors.New("parameters: no <gray> or <hsv> entries")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range p.allNames() {
		if seen[n] {
			return fmt.Errorf("parameters: duplicate name %q", n)
		}
		seen[n] = true
	}
	for _, n := range names {
		s, err := p.Settings(n)
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("parameters %q: %w", n, err)
		}
	}
	return nil
}

// Names returns the parameter set names, sorted.
func (p *Parameters) Names() []string {
	names := p.allNames()
	sort.Strings(names)
	return names
}

func (p *Parameters) allNames() []string {
	names := make([]string, 0, len(p.Gray)+len(p.HSV))
	for _, g := range p.Gray {
		names = append(names, g.Name)
	}
	for _, h := range p.HSV {
		names = append(names, h.Name)
	}
	return names
}

// Settings returns the recognizer settings for the named parameter set.
func (p *Parameters) Settings(name string) (recognition.Settings, error) {
	strategy, err := segment.ParseStrategy(p.Segmentation.Strategy)
	if err != nil {
		return recognition.Settings{}, err
	}
	backend, err := recognition.ParseBackend(p.Segmentation.Backend)
	if err != nil {
		return recognition.Settings{}, err
	}

	s := recognition.Settings{
		Name: name,
		Image: recognition.ImageSettings{
			Source: p.Image.Source,
			Width:  p.Image.Width,
			Height: p.Image.Height,
			ROI: imaging.ROI{
				X:      p.Image.ROI.X,
				Y:      p.Image.ROI.Y,
				Width:  p.Image.ROI.Width,
				Height: p.Image.ROI.Height,
			},
		},
		Strategy:   strategy,
		Backend:    backend,
		PeakCutoff: p.Segmentation.PeakCutoff,
		Sharpen:    p.Segmentation.Sharpen,
		Criteria: recognition.Criteria{
			MinArea:       p.Criteria.MinArea,
			MaxArea:       p.Criteria.MaxArea,
			MaxElongation: p.Criteria.MaxElongation,
			MinFill:       p.Criteria.MinFill,
		},
	}

	for _, g := range p.Gray {
		if g.Name != name {
			continue
		}
		path, err := recognition.ParsePath(g.Name)
		if err != nil {
			return recognition.Settings{}, err
		}
		if path == recognition.PathHSVMask {
			return recognition.Settings{}, fmt.Errorf("%w: %q needs an <hsv> entry", recognition.ErrUnknownPath, g.Name)
		}
		s.Path = path
		s.Gray = imaging.GrayParams{MedianTarget: g.MedianTarget, ThresholdLow: g.ThresholdLow}
		return s, nil
	}

	for _, h := range p.HSV {
		if h.Name != name {
			continue
		}
		s.Path = recognition.PathHSVMask
		s.HSV = imaging.HSVParams{
			HueLow:     h.HueLow,
			HueHigh:    h.HueHigh,
			Saturation: imaging.GrayParams{MedianTarget: h.SaturationMedianTarget, ThresholdLow: h.SaturationThresholdLow},
			Value:      imaging.GrayParams{MedianTarget: h.ValueMedianTarget, ThresholdLow: h.ValueThresholdLow},
		}
		return s, nil
	}

	return recognition.Settings{}, fmt.Errorf("%w: %q", ErrUnknownParameterSet, name)
}
