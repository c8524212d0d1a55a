package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
	"github.com/ironsheep/piece-segmenter/internal/segment"
	"github.com/ironsheep/piece-segmenter/internal/source"
	"github.com/ironsheep/piece-segmenter/internal/visualize"
)

// DiagnosticSink receives intermediate images. Submit must not block;
// *diag.Writer satisfies it.
type DiagnosticSink interface {
	Submit(name string, img image.Image)
}

// ImageSettings describes the frames a Recognizer expects.
type ImageSettings struct {
	// Source identifies the camera or file the settings were made for.
	Source string `json:"source"`

	Width  int         `json:"width"`
	Height int         `json:"height"`
	ROI    imaging.ROI `json:"roi"`
}

// Settings is the full parameter set of one recognizer.
type Settings struct {
	// Name labels log events and diagnostic files.
	Name string `json:"name"`

	Image      ImageSettings    `json:"image"`
	Strategy   segment.Strategy `json:"-"`
	Backend    Backend          `json:"-"`
	PeakCutoff int              `json:"peak_cutoff"`
	Sharpen    bool             `json:"sharpen"`
	Criteria   Criteria         `json:"criteria"`

	// Path selects the channel. Gray applies to single-channel paths and HSV
	// to PathHSVMask.
	Path Path               `json:"-"`
	Gray imaging.GrayParams `json:"gray"`
	HSV  imaging.HSVParams  `json:"hsv"`
}

// Validate checks every parameter that does not depend on a frame.
func (s Settings) Validate() error {
	if s.Image.Width <= 0 || s.Image.Height <= 0 {
		return fmt.Errorf("%w: expected frame size %dx%d", imaging.ErrDimensionMismatch, s.Image.Width, s.Image.Height)
	}
	if err := s.Image.ROI.Validate(image.Rect(0, 0, s.Image.Width, s.Image.Height)); err != nil {
		return err
	}
	if _, ok := backendNames[s.Backend]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, s.Backend)
	}
	if s.Path == PathHSVMask {
		if err := s.HSV.Validate(); err != nil {
			return err
		}
	} else {
		if _, ok := pathChannels[s.Path]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPath, s.Path)
		}
		if err := s.Gray.Validate(); err != nil {
			return err
		}
	}
	return s.Criteria.Validate()
}

// Result is the outcome of one frame.
type Result struct {
	Status Status `json:"status"`

	// Labels is the watershed output. It is set whenever the engine ran to
	// completion, including when no region passed the criteria.
	Labels *segment.LabelMap `json:"-"`

	// Regions holds the accepted regions, largest first.
	Regions []segment.Region `json:"regions"`

	Captured time.Time `json:"captured"`

	// Cause is the source error behind an InternalError status.
	Cause error `json:"-"`
}

// Best returns the largest accepted region.
func (r Result) Best() (segment.Region, bool) {
	if len(r.Regions) == 0 {
		return segment.Region{}, false
	}
	return r.Regions[0], true
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithDiagnostics sends the crop, mask, markers and label images of every
// frame to sink.
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(r *Recognizer) {
		r.sink = sink
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Recognizer) {
		r.log = log
	}
}

// Recognizer runs the segmentation pipeline on frames.
//
// A Recognizer holds no per-frame state and may be used from several
// goroutines at once.
type Recognizer struct {
	settings  Settings
	ops       segment.Operators
	estimator segment.Estimator
	sink      DiagnosticSink
	log       zerolog.Logger
}

// New validates settings and builds a Recognizer. Selecting BackendOpenCV in
// a binary built without OpenCV fails with opencv.ErrUnavailable.
func New(settings Settings, opts ...Option) (*Recognizer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	ops, err := settings.Backend.operators()
	if err != nil {
		return nil, err
	}
	est, err := segment.NewEstimator(settings.Strategy, segment.Options{
		PeakCutoff: settings.PeakCutoff,
		Operators:  ops,
	})
	if err != nil {
		return nil, err
	}

	r := &Recognizer{
		settings:  settings,
		ops:       ops,
		estimator: est,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Settings returns the recognizer's parameters.
func (r *Recognizer) Settings() Settings {
	return r.settings
}

// Recognize takes one frame from src and segments it.
//
// A source failure is not returned as an error: it yields an InternalError
// result carrying the cause. Errors are reserved for configuration mistakes
// such as a frame of the wrong size.
func (r *Recognizer) Recognize(ctx context.Context, src source.Source) (Result, error) {
	frame, err := src.Frame(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("settings", r.settings.Name).Msg("no frame")
		return Result{Status: InternalError, Cause: err}, nil
	}
	return r.RecognizeImage(frame.Image, frame.Captured)
}

// RecognizeImage segments img.
//
// # Pipeline
//
//  1. Validate the frame size and crop to the ROI, optionally sharpening
//  2. Build a binary mask through the configured path
//  3. Estimate sure foreground and sure background
//  4. Label the foreground components; none means Unsuccessful
//  5. Flood the unknown band with the watershed, guided by the crop
//  6. Measure the regions and apply the criteria
func (r *Recognizer) RecognizeImage(img image.Image, captured time.Time) (Result, error) {
	s := r.settings
	result := Result{Status: Unsuccessful, Captured: captured}
	prefix := diagPrefix(s.Name, captured)

	crop, err := imaging.Preprocess(img, imaging.PreprocessOptions{
		ExpectedWidth:  s.Image.Width,
		ExpectedHeight: s.Image.Height,
		ROI:            s.Image.ROI,
		Sharpen:        s.Sharpen,
	})
	if err != nil {
		return result, err
	}
	r.submit(prefix, "roi", crop)

	mask, err := binaryMask(crop, s.Path, s.Gray, s.HSV)
	if err != nil {
		return result, err
	}
	r.submit(prefix, "mask", mask)

	est, err := r.estimator.Estimate(mask)
	if err != nil {
		return result, err
	}
	r.submit(prefix, "markers", segment.SentinelMarkers(est))

	markers, n, err := segment.BuildMarkers(est.SureForeground, est.Unknown())
	if errors.Is(err, segment.ErrNoRegions) {
		r.log.Debug().Str("settings", s.Name).Msg("no foreground regions")
		return result, nil
	}
	if err != nil {
		return result, err
	}

	labels, err := r.ops.Watershed(crop, markers)
	if err != nil {
		return result, err
	}
	result.Labels = labels
	if r.sink != nil {
		colored, err := visualize.Colorize(labels, visualize.DefaultSeed)
		if err != nil {
			return result, err
		}
		r.submit(prefix, "labels", colored)
		lines, err := visualize.Boundaries(labels)
		if err != nil {
			return result, err
		}
		r.submit(prefix, "boundaries", lines)
	}

	regions := segment.Regions(labels)
	result.Regions = s.Criteria.Filter(regions)
	if len(result.Regions) > 0 {
		result.Status = Successful
	}

	r.log.Debug().
		Str("settings", s.Name).
		Int("seeds", n).
		Int("regions", len(regions)).
		Int("accepted", len(result.Regions)).
		Str("status", result.Status.String()).
		Msg("frame segmented")
	return result, nil
}

func (r *Recognizer) submit(prefix, stage string, img image.Image) {
	if r.sink == nil {
		return
	}
	r.sink.Submit(prefix+stage+".png", img)
}

func diagPrefix(name string, captured time.Time) string {
	if captured.IsZero() {
		captured = time.Now()
	}
	if name == "" {
		name = "frame"
	}
	return captured.UTC().Format("20060102T150405.000") + "_" + name + "_"
}
