package segment

import (
	"image"
	"testing"
)

func TestDilate_SinglePixel(t *testing.T) {
	m := newMask(7, 7)
	m.Pix[3*7+3] = 255

	got := Dilate(m, 1)
	if n := countNonZero(got); n != 9 {
		t.Errorf("one dilation: got %d pixels, want 9", n)
	}

	got = Dilate(m, 2)
	if n := countNonZero(got); n != 25 {
		t.Errorf("two dilations: got %d pixels, want 25", n)
	}
	if m.Pix[3*7+2] != 0 {
		t.Error("Dilate modified its input")
	}
}

func TestDilate_Corner(t *testing.T) {
	m := newMask(5, 5)
	m.Pix[0] = 255

	got := Dilate(m, 1)
	if n := countNonZero(got); n != 4 {
		t.Errorf("got %d pixels, want 4", n)
	}
}

func TestErode_IgnoresOutsidePixels(t *testing.T) {
	m := newMask(6, 4)
	fillRect(m, m.Bounds())

	got := Erode(m, 3)
	if n := countNonZero(got); n != 24 {
		t.Errorf("full mask after erosion: got %d pixels, want 24", n)
	}
}

func TestErode_Square(t *testing.T) {
	m := newMask(20, 20)
	fillRect(m, image.Rect(4, 4, 14, 14))

	got := Erode(m, 2)
	if n := countNonZero(got); n != 36 {
		t.Errorf("got %d pixels, want 36 (6x6)", n)
	}
	if got.GrayAt(6, 6).Y != 255 || got.GrayAt(5, 5).Y != 0 {
		t.Error("eroded square has the wrong extent")
	}
}

func TestOpen_RemovesSpeckles(t *testing.T) {
	m := newMask(30, 30)
	fillRect(m, image.Rect(10, 10, 20, 20))
	m.Pix[2*30+2] = 255
	fillRect(m, image.Rect(25, 2, 27, 4))

	got := Open(m, 2)
	if got.GrayAt(2, 2).Y != 0 || got.GrayAt(25, 2).Y != 0 {
		t.Error("opening kept a speckle")
	}
	if n := countNonZero(got); n != 100 {
		t.Errorf("got %d pixels, want the 100-pixel square", n)
	}
}
