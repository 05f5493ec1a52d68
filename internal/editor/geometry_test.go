package editor

import (
	"image"
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestToNormalized_SnapshotExample(t *testing.T) {
	got := ToNormalized(PixelRect{X: 80, Y: 60, Width: 160, Height: 120}, Frame{Width: 800, Height: 600})
	want := NormalizedRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}
	if !approx(got.X, want.X) || !approx(got.Y, want.Y) || !approx(got.W, want.W) || !approx(got.H, want.H) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestToNormalized_CanonicalizesNegativeExtent(t *testing.T) {
	got := ToNormalized(PixelRect{X: 240, Y: 180, Width: -160, Height: -120}, Frame{Width: 800, Height: 600})
	if !approx(got.X, 0.1) || !approx(got.Y, 0.1) || !approx(got.W, 0.2) || !approx(got.H, 0.2) {
		t.Fatalf("unexpected normalized rect %+v", got)
	}
}

func TestRoundTrip_WithinOnePixel(t *testing.T) {
	frames := []Frame{{800, 600}, {1920, 1080}, {641, 479}, {1, 1}, {3, 7}}
	rects := []PixelRect{
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 13.4, Y: 7.7, Width: 100.2, Height: 55.5},
		{X: 320, Y: 240, Width: 17, Height: 333},
		{X: 0.5, Y: 0.5, Width: 0.25, Height: 0.25},
	}
	for _, f := range frames {
		for _, r := range rects {
			back := ToPixel(ToNormalized(r, f), f)
			gb, wb := back.Bounds(), r.Bounds()
			if absInt(gb.Min.X-wb.Min.X) > 1 || absInt(gb.Min.Y-wb.Min.Y) > 1 ||
				absInt(gb.Dx()-wb.Dx()) > 1 || absInt(gb.Dy()-wb.Dy()) > 1 {
				t.Fatalf("frame %+v: round trip of %+v produced %+v", f, r, back)
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestPixelRect_Bounds(t *testing.T) {
	got := PixelRect{X: 50, Y: 50, Width: -40.4, Height: -29.6}.Bounds()
	want := image.Rect(10, 20, 50, 50)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPixelRect_ContainsEdges(t *testing.T) {
	r := PixelRect{X: 10, Y: 10, Width: 20, Height: 20}
	for _, p := range []Point{{10, 10}, {30, 30}, {20, 15}} {
		if !r.Contains(p) {
			t.Fatalf("expected %+v inside %+v", p, r)
		}
	}
	for _, p := range []Point{{9.9, 10}, {31, 20}, {20, 30.1}} {
		if r.Contains(p) {
			t.Fatalf("expected %+v outside %+v", p, r)
		}
	}
}

func TestCorners_RoundTrip(t *testing.T) {
	f := Frame{Width: 800, Height: 600}
	n := NormalizedRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}
	corners := Corners(n, f)
	if corners[0][0] != 80 || corners[0][1] != 60 || corners[1][0] != 240 || corners[1][1] != 180 {
		t.Fatalf("unexpected corners %v", corners)
	}

	// reversed corner order still yields the same rectangle
	back, ok := FromCorners([][]float64{corners[1], corners[0]}, f)
	if !ok {
		t.Fatalf("expected corners to convert")
	}
	if !approx(back.X, n.X) || !approx(back.Y, n.Y) || !approx(back.W, n.W) || !approx(back.H, n.H) {
		t.Fatalf("expected %+v, got %+v", n, back)
	}
}

func TestFromCorners_RejectsMalformed(t *testing.T) {
	f := Frame{Width: 10, Height: 10}
	cases := [][][]float64{
		nil,
		{{1, 2}},
		{{1, 2}, {3}},
		{{1, 2}, {3, 4}, {5, 6}},
	}
	for _, c := range cases {
		if _, ok := FromCorners(c, f); ok {
			t.Fatalf("expected %v to be rejected", c)
		}
	}
	if _, ok := FromCorners([][]float64{{1, 2}, {3, 4}}, Frame{}); ok {
		t.Fatalf("expected zero frame to be rejected")
	}
}
