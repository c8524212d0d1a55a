package visualize

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// createInMemoryImage creates an image filled with a single color.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func sampleLabels() *segment.LabelMap {
	return &segment.LabelMap{
		Width:  4,
		Height: 2,
		Labels: []int32{1, 2, 2, -1, 3, 3, 0, 7},
	}
}

func TestLabelColor_Deterministic(t *testing.T) {
	for _, l := range []int32{2, 3, 10, 500} {
		a := LabelColor(l, DefaultSeed)
		b := LabelColor(l, DefaultSeed)
		if a != b {
			t.Errorf("label %d: %v then %v", l, a, b)
		}
		if a.A != 255 {
			t.Errorf("label %d: alpha %d, want 255", l, a.A)
		}
	}
	if LabelColor(2, DefaultSeed) == LabelColor(3, DefaultSeed) {
		t.Error("neighboring labels should not share a color")
	}
}

func TestColorize(t *testing.T) {
	m := sampleLabels()
	img, err := Colorize(m, DefaultSeed, 7)
	if err != nil {
		t.Fatalf("Colorize failed: %v", err)
	}

	black := color.NRGBA{0, 0, 0, 255}
	white := color.NRGBA{255, 255, 255, 255}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"background", 0, 0, black},
		{"region 2", 1, 0, LabelColor(2, DefaultSeed)},
		{"region 2 again", 2, 0, LabelColor(2, DefaultSeed)},
		{"boundary", 3, 0, white},
		{"region 3", 0, 1, LabelColor(3, DefaultSeed)},
		{"unknown", 2, 1, black},
		{"extra background", 3, 1, black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundaries(t *testing.T) {
	mask, err := Boundaries(sampleLabels())
	if err != nil {
		t.Fatalf("Boundaries failed: %v", err)
	}
	for i, v := range mask.Pix {
		want := uint8(0)
		if i == 3 {
			want = 255
		}
		if v != want {
			t.Errorf("pixel %d: got %d, want %d", i, v, want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})
	labels := segment.NewLabelMap(20, 20, segment.LabelBackground)
	labels.Set(5, 5, segment.LabelBoundary)
	regions := []segment.Region{{Label: 2, Area: 9, Centroid: segment.Point{X: 12, Y: 12}}}

	result, err := Annotate(img, labels, regions, "#00FF00")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if c := result.RGBAAt(5, 5); c.G != 255 || c.R != 0 {
		t.Errorf("boundary pixel: got %v, want green", c)
	}
	if c := result.RGBAAt(12, 9); c.G != 255 {
		t.Errorf("cross arm: got %v, want green", c)
	}
	if c := result.RGBAAt(1, 1); c.G != 0 {
		t.Errorf("untouched pixel: got %v, want black", c)
	}
}

func TestAnnotate_OffsetImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(50, 50, 60, 55))
	labels := segment.NewLabelMap(10, 5, segment.LabelBackground)

	result, err := Annotate(img, labels, nil, "")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if result.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Errorf("bounds: got %v", result.Bounds())
	}
}

func TestAnnotate_DimensionMismatch(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)
	_, err := Annotate(img, segment.NewLabelMap(10, 11, 1), nil, DefaultMarkColor)
	if !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestInconsistentLabelMap(t *testing.T) {
	short := &segment.LabelMap{Width: 4, Height: 2, Labels: []int32{1, 2, 3}}

	if _, err := Colorize(short, DefaultSeed); !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Errorf("Colorize: got %v, want ErrDimensionMismatch", err)
	}
	if _, err := Boundaries(short); !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Errorf("Boundaries: got %v, want ErrDimensionMismatch", err)
	}
	img := createInMemoryImage(4, 2, color.Black)
	if _, err := Annotate(img, short, nil, DefaultMarkColor); !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Errorf("Annotate: got %v, want ErrDimensionMismatch", err)
	}
}

func TestEncode(t *testing.T) {
	img, err := Colorize(sampleLabels(), DefaultSeed)
	if err != nil {
		t.Fatalf("Colorize failed: %v", err)
	}

	enc, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc.Width != 4 || enc.Height != 2 || enc.MimeType != "image/png" {
		t.Errorf("got %dx%d %s", enc.Width, enc.Height, enc.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 4 {
		t.Errorf("decoded width: got %d, want 4", decoded.Bounds().Dx())
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#00FF00", 0, 255, 0, 255, false},
		{"FF0000", 255, 0, 0, 255, false},
		{"#FF000080", 255, 0, 0, 128, false},
		{"", 0, 0, 0, 0, true},
		{"#FFF", 0, 0, 0, 0, true},
		{"#GGGGGG", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	drawLabel(img, 2, 2, "1-", fg, bg)

	// '1' has its top-middle pixel set
	if c := img.RGBAAt(3, 2); c != fg {
		t.Errorf("glyph pixel: got %v, want %v", c, fg)
	}
	// '-' has an empty top row
	if c := img.RGBAAt(6, 2); c != bg {
		t.Errorf("blank glyph pixel: got %v, want %v", c, bg)
	}
}
