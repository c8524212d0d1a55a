package segment

import (
	"errors"
	"image"
	"testing"
)

func TestNewEstimator(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		opts     Options
		wantErr  error
	}{
		{"distance", DistanceTransform, DefaultOptions(), nil},
		{"erosion", ErosionDilation, Options{}, nil},
		{"unknown strategy", Strategy(7), DefaultOptions(), ErrUnknownStrategy},
		{"cutoff too high", DistanceTransform, Options{PeakCutoff: 256}, ErrInvalidThreshold},
		{"cutoff negative", DistanceTransform, Options{PeakCutoff: -1}, ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := NewEstimator(tt.strategy, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if est.Strategy() != tt.strategy {
				t.Errorf("Strategy: got %v, want %v", est.Strategy(), tt.strategy)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{DistanceTransform, ErosionDilation} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q): got %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStrategy("laplace"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("got %v, want ErrUnknownStrategy", err)
	}
}

func TestEstimate_DistanceSquares(t *testing.T) {
	m := newMask(60, 30)
	fillRect(m, image.Rect(5, 5, 25, 25))
	fillRect(m, image.Rect(35, 5, 55, 25))

	est, _ := NewEstimator(DistanceTransform, DefaultOptions())
	e, err := est.Estimate(m)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// Seeds are the pixels at least 4 from the edge (14x14), dilated once.
	if n := countNonZero(e.SureForeground); n != 2*16*16 {
		t.Errorf("sure foreground: got %d pixels, want %d", n, 2*16*16)
	}
	// Opening keeps the squares; three dilations grow each to 26x26.
	if n := countNonZero(e.SureBackground); n != 2*26*26 {
		t.Errorf("sure background: got %d pixels, want %d", n, 2*26*26)
	}
	if e.Distance == nil || e.Distance.GrayAt(14, 14).Y != 255 {
		t.Error("distance map should peak at 255 in the square centers")
	}
}

func TestEstimate_ErosionSquare(t *testing.T) {
	m := newMask(40, 40)
	fillRect(m, image.Rect(10, 10, 30, 30))

	est, _ := NewEstimator(ErosionDilation, Options{})
	e, err := est.Estimate(m)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if n := countNonZero(e.SureForeground); n != 12*12 {
		t.Errorf("sure foreground: got %d pixels, want 144", n)
	}
	if n := countNonZero(e.SureBackground); n != 28*28 {
		t.Errorf("sure background: got %d pixels, want 784", n)
	}
	if e.Distance != nil {
		t.Error("erosion strategy should not produce a distance map")
	}
}

func TestEstimate_MasksAreBinary(t *testing.T) {
	m := newMask(50, 50)
	fillDisc(m, 20, 20, 12)
	fillDisc(m, 34, 30, 10)

	for _, s := range []Strategy{DistanceTransform, ErosionDilation} {
		est, _ := NewEstimator(s, DefaultOptions())
		e, err := est.Estimate(m)
		if err != nil {
			t.Fatalf("%v: Estimate failed: %v", s, err)
		}
		for _, mask := range []*image.Gray{e.SureForeground, e.SureBackground} {
			if mask.Bounds() != m.Bounds() {
				t.Errorf("%v: mask bounds %v, want %v", s, mask.Bounds(), m.Bounds())
			}
			for i, v := range mask.Pix {
				if v != 0 && v != 255 {
					t.Fatalf("%v: pixel %d has value %d", s, i, v)
				}
			}
		}
	}
}

func TestEstimate_ForegroundNeverUnknown(t *testing.T) {
	m := newMask(50, 50)
	fillDisc(m, 20, 20, 12)
	fillDisc(m, 34, 30, 10)
	fillRect(m, image.Rect(40, 2, 48, 6))

	for _, s := range []Strategy{DistanceTransform, ErosionDilation} {
		est, _ := NewEstimator(s, DefaultOptions())
		e, err := est.Estimate(m)
		if err != nil {
			t.Fatalf("%v: Estimate failed: %v", s, err)
		}
		unknown := e.Unknown()
		for i, v := range e.SureForeground.Pix {
			if v != 0 && unknown.Pix[i] != 0 {
				t.Fatalf("%v: foreground pixel %d is unknown", s, i)
			}
		}
	}
}

func TestSentinelMarkers(t *testing.T) {
	fg := newMask(3, 1)
	bg := newMask(3, 1)
	copy(fg.Pix, []uint8{255, 0, 0})
	copy(bg.Pix, []uint8{255, 255, 0})

	got := SentinelMarkers(Estimate{SureForeground: fg, SureBackground: bg})
	want := []uint8{255, 0, BackgroundSentinel}
	for i, w := range want {
		if got.Pix[i] != w {
			t.Errorf("pixel %d: got %d, want %d", i, got.Pix[i], w)
		}
	}
}
