package editor

import "testing"

func TestGesture_DrawUpLeftIsCanonicalOnRelease(t *testing.T) {
	var g Gesture
	g.Press(Point{X: 50, Y: 50})
	if g.State() != GestureDrawing {
		t.Fatalf("expected drawing, got %v", g.State())
	}
	g.Move(Point{X: 30, Y: 40})
	r, _ := g.Rect()
	if r.Width != -20 || r.Height != -10 {
		t.Fatalf("expected signed extents mid-draw, got %+v", r)
	}

	g.Release(Point{X: 10, Y: 20})
	if g.State() != GestureIdle {
		t.Fatalf("expected idle after release, got %v", g.State())
	}
	r, ok := g.Rect()
	if !ok {
		t.Fatalf("expected rectangle to be kept after release")
	}
	want := PixelRect{X: 10, Y: 20, Width: 40, Height: 30}
	if r != want {
		t.Fatalf("expected %+v, got %+v", want, r)
	}
}

func TestGesture_PressInsideDrags(t *testing.T) {
	var g Gesture
	g.Seed(PixelRect{X: 100, Y: 100, Width: 50, Height: 40})

	g.Press(Point{X: 110, Y: 120})
	if g.State() != GestureDragging {
		t.Fatalf("expected dragging, got %v", g.State())
	}
	g.Move(Point{X: 210, Y: 20})
	g.Release(Point{X: 215, Y: 25})

	r, _ := g.Rect()
	want := PixelRect{X: 205, Y: 5, Width: 50, Height: 40}
	if r != want {
		t.Fatalf("expected %+v, got %+v", want, r)
	}
	if g.State() != GestureIdle {
		t.Fatalf("expected idle, got %v", g.State())
	}
}

func TestGesture_PressOutsideReplaces(t *testing.T) {
	var g Gesture
	g.Seed(PixelRect{X: 100, Y: 100, Width: 50, Height: 40})

	g.Press(Point{X: 10, Y: 10})
	if g.State() != GestureDrawing {
		t.Fatalf("expected drawing, got %v", g.State())
	}
	g.Release(Point{X: 20, Y: 30})
	r, _ := g.Rect()
	want := PixelRect{X: 10, Y: 10, Width: 10, Height: 20}
	if r != want {
		t.Fatalf("expected replacement %+v, got %+v", want, r)
	}
}

func TestGesture_MoveWhileIdleIsIgnored(t *testing.T) {
	var g Gesture
	g.Move(Point{X: 10, Y: 10})
	g.Release(Point{X: 20, Y: 20})
	if _, ok := g.Rect(); ok {
		t.Fatalf("expected no rectangle")
	}
	if g.State() != GestureIdle {
		t.Fatalf("expected idle, got %v", g.State())
	}
}

func TestGesture_ResetDiscards(t *testing.T) {
	var g Gesture
	g.Press(Point{X: 1, Y: 1})
	g.Move(Point{X: 5, Y: 5})
	g.Reset()
	if _, ok := g.Rect(); ok || g.State() != GestureIdle {
		t.Fatalf("expected reset to idle with no rect")
	}
}

func TestGestureState_String(t *testing.T) {
	if GestureIdle.String() != "idle" || GestureDrawing.String() != "drawing" || GestureDragging.String() != "dragging" {
		t.Fatalf("unexpected state names")
	}
}
