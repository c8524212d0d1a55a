package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/ironsheep/piece-segmenter/internal/config"
	"github.com/ironsheep/piece-segmenter/internal/diag"
	"github.com/ironsheep/piece-segmenter/internal/logger"
	"github.com/ironsheep/piece-segmenter/internal/recognition"
	"github.com/ironsheep/piece-segmenter/internal/segment"
	"github.com/ironsheep/piece-segmenter/internal/server"
	"github.com/ironsheep/piece-segmenter/internal/source"
	"github.com/ironsheep/piece-segmenter/internal/visualize"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitSuccessful   = 0
	exitConfig       = 1
	exitInternal     = 2
	exitUnsuccessful = 3
)

const closeTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "segmenter - watershed segmentation of touching objects")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  segmenter [options] <image|video>   Segment one frame and print the result as JSON")
	fmt.Fprintln(w, "  segmenter serve [-params file]      Run the MCP server on stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -params file     XML parameter file (default: full-frame gray defaults)")
	fmt.Fprintln(w, "  -set name        Parameter set to use (default: first in the file)")
	fmt.Fprintln(w, "  -strategy name   Override the strategy: distance or erosion")
	fmt.Fprintln(w, "  -backend name    Override the backend: native or opencv (needs -tags gocv)")
	fmt.Fprintln(w, "  -video           Input is a video; grab one frame with ffmpeg")
	fmt.Fprintln(w, "  -offset dur      Video position of the frame, e.g. 1.5s")
	fmt.Fprintln(w, "  -out dir         Write diagnostic images to dir")
	fmt.Fprintln(w, "  -drain           Write every queued diagnostic image before exiting")
	fmt.Fprintln(w, "  -render file     Write the colorized label map to file")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Log level\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=dir       Diagnostic image directory (same as -out)\n", config.EnvDiagDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status: 0 successful, 1 configuration error, 2 no frame, 3 nothing recognized.")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Handle --version and -v flags
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "segmenter %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return exitSuccessful
		case "--help", "-h", "help":
			printHelp(stdout)
			return exitSuccessful
		}
	}

	env := config.FromEnv()
	log := logger.Console(stderr, logger.ParseLevel(env.LogLevel))

	if len(args) > 0 && args[0] == "serve" {
		return serve(ctx, args[1:], env, log, stdin, stdout, stderr)
	}
	return segmentFrame(ctx, args, env, log, stdout, stderr)
}

type segmentFlags struct {
	params   string
	set      string
	strategy string
	backend  string
	video    bool
	offset   time.Duration
	out      string
	drain    bool
	render   string
}

func parseSegmentFlags(args []string, env config.Env, stderr io.Writer) (*segmentFlags, string, error) {
	f := &segmentFlags{}
	fs := flag.NewFlagSet("segmenter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(stderr) }
	fs.StringVar(&f.params, "params", "", "XML parameter file")
	fs.StringVar(&f.set, "set", "", "parameter set name")
	fs.StringVar(&f.strategy, "strategy", "", "distance or erosion")
	fs.StringVar(&f.backend, "backend", "", "native or opencv")
	fs.BoolVar(&f.video, "video", false, "input is a video")
	fs.DurationVar(&f.offset, "offset", 0, "video frame position")
	fs.StringVar(&f.out, "out", env.DiagDir, "diagnostic image directory")
	fs.BoolVar(&f.drain, "drain", false, "drain diagnostics on exit")
	fs.StringVar(&f.render, "render", "", "write the colorized label map")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		return nil, "", errors.New("expected exactly one input file")
	}
	return f, fs.Arg(0), nil
}

func segmentFrame(ctx context.Context, args []string, env config.Env, log zerolog.Logger, stdout, stderr io.Writer) int {
	f, input, err := parseSegmentFlags(args, env, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "segmenter: %v\n", err)
		}
		return exitConfig
	}

	var src source.Source = source.NewFile(input, nil)
	if f.video {
		src = &source.Video{Path: input, Offset: f.offset, Log: logger.Component(log, "video")}
	}

	frame, err := src.Frame(ctx)
	if err != nil {
		log.Error().Err(err).Str("input", input).Msg("no frame")
		printResult(stdout, recognition.Result{Status: recognition.InternalError, Cause: err})
		return exitInternal
	}

	settings, err := loadSettings(f, frame)
	if err != nil {
		log.Error().Err(err).Msg("invalid parameters")
		return exitConfig
	}

	opts := []recognition.Option{recognition.WithLogger(logger.Component(log, "recognition"))}
	if f.out != "" {
		w, err := diag.New(f.out, diag.DefaultCapacity, logger.Component(log, "diag"))
		if err != nil {
			log.Error().Err(err).Msg("diagnostics disabled")
		} else {
			defer closeDiagnostics(w, f.drain, log)
			opts = append(opts, recognition.WithDiagnostics(w))
		}
	}

	rec, err := recognition.New(settings, opts...)
	if err != nil {
		log.Error().Err(err).Msg("invalid parameters")
		return exitConfig
	}

	result, err := rec.RecognizeImage(frame.Image, frame.Captured)
	if err != nil {
		log.Error().Err(err).Msg("segmentation failed")
		return exitConfig
	}

	if f.render != "" && result.Labels != nil {
		if err := render(result.Labels, f.render); err != nil {
			log.Error().Err(err).Str("file", f.render).Msg("failed to write rendering")
		}
	}

	printResult(stdout, result)
	if result.Status != recognition.Successful {
		return exitUnsuccessful
	}
	return exitSuccessful
}

func render(labels *segment.LabelMap, path string) error {
	colored, err := visualize.Colorize(labels, visualize.DefaultSeed)
	if err != nil {
		return err
	}
	return imaging.Save(colored, path)
}

func loadSettings(f *segmentFlags, frame source.Frame) (recognition.Settings, error) {
	var params *config.Parameters
	if f.params != "" {
		p, err := config.Load(f.params)
		if err != nil {
			return recognition.Settings{}, err
		}
		params = p
	} else {
		b := frame.Image.Bounds()
		params = config.Default(b.Dx(), b.Dy())
	}

	name := f.set
	if name == "" {
		name = params.Names()[0]
	}
	settings, err := params.Settings(name)
	if err != nil {
		return recognition.Settings{}, err
	}
	if f.strategy != "" {
		s, err := segment.ParseStrategy(f.strategy)
		if err != nil {
			return recognition.Settings{}, err
		}
		settings.Strategy = s
	}
	if f.backend != "" {
		b, err := recognition.ParseBackend(f.backend)
		if err != nil {
			return recognition.Settings{}, err
		}
		settings.Backend = b
	}
	return settings, nil
}

func closeDiagnostics(w *diag.Writer, drain bool, log zerolog.Logger) {
	policy := diag.Discard
	if drain {
		policy = diag.Drain
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	outcome := w.Close(ctx, policy)
	log.Debug().
		Str("outcome", outcome.String()).
		Int64("written", w.Written()).
		Int64("dropped", w.Dropped()).
		Str("dir", w.Dir()).
		Msg("diagnostics closed")
}

// output is the JSON printed for one frame.
type output struct {
	Status   recognition.Status `json:"status"`
	Count    int                `json:"count"`
	Regions  []segment.Region   `json:"regions"`
	Captured *time.Time         `json:"captured,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func printResult(w io.Writer, r recognition.Result) {
	out := output{Status: r.Status, Count: len(r.Regions), Regions: r.Regions}
	if out.Regions == nil {
		out.Regions = []segment.Region{}
	}
	if !r.Captured.IsZero() {
		out.Captured = &r.Captured
	}
	if r.Cause != nil {
		out.Error = r.Cause.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func serve(ctx context.Context, args []string, env config.Env, log zerolog.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paramsPath := fs.String("params", "", "default XML parameter file")
	out := fs.String("out", env.DiagDir, "diagnostic image directory")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	log.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("starting MCP server")

	var opts []server.Option
	if *paramsPath != "" {
		p, err := config.Load(*paramsPath)
		if err != nil {
			log.Error().Err(err).Msg("invalid parameters")
			return exitConfig
		}
		opts = append(opts, server.WithParameters(p))
	}
	if *out != "" {
		w, err := diag.New(*out, diag.DefaultCapacity, logger.Component(log, "diag"))
		if err != nil {
			log.Error().Err(err).Msg("diagnostics disabled")
		} else {
			defer closeDiagnostics(w, false, log)
			opts = append(opts, server.WithDiagnostics(w))
		}
	}

	srv := server.New(logger.Component(log, "server"), opts...)
	if err := srv.Run(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server error")
		return exitInternal
	}
	return exitSuccessful
}
