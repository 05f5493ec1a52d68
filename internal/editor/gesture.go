package editor

// GestureState is the phase of the operator's pointer interaction.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDrawing
	GestureDragging
)

func (s GestureState) String() string {
	switch s {
	case GestureDrawing:
		return "drawing"
	case GestureDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Gesture turns press/move/release events into a single candidate
// rectangle. It is not safe for concurrent use; Session serializes access.
type Gesture struct {
	state  GestureState
	anchor Point
	offset Point
	rect   PixelRect
	has    bool
}

func (g *Gesture) State() GestureState {
	return g.state
}

// Rect returns the current candidate rectangle, if any.
func (g *Gesture) Rect() (PixelRect, bool) {
	return g.rect, g.has
}

// Press starts dragging when p falls on the existing rectangle, otherwise it
// starts drawing a new one that replaces it.
func (g *Gesture) Press(p Point) {
	if g.state != GestureIdle {
		g.finish()
	}

	if g.has && g.rect.Contains(p) {
		g.rect = g.rect.Canonical()
		g.state = GestureDragging
		g.offset = Point{X: p.X - g.rect.X, Y: p.Y - g.rect.Y}
		return
	}

	g.state = GestureDrawing
	g.anchor = p
	g.rect = PixelRect{X: p.X, Y: p.Y}
	g.has = true
}

func (g *Gesture) Move(p Point) {
	switch g.state {
	case GestureDrawing:
		g.rect = PixelRect{
			X:      g.anchor.X,
			Y:      g.anchor.Y,
			Width:  p.X - g.anchor.X,
			Height: p.Y - g.anchor.Y,
		}
	case GestureDragging:
		g.rect.X = p.X - g.offset.X
		g.rect.Y = p.Y - g.offset.Y
	}
}

// Release applies p as the final pointer position and ends the gesture.
func (g *Gesture) Release(p Point) {
	if g.state == GestureIdle {
		return
	}
	g.Move(p)
	g.finish()
}

func (g *Gesture) finish() {
	g.rect = g.rect.Canonical()
	g.state = GestureIdle
	g.anchor = Point{}
	g.offset = Point{}
}

// Reset discards the rectangle and returns to idle.
func (g *Gesture) Reset() {
	*g = Gesture{}
}

// Seed replaces the candidate rectangle with r and returns to idle.
func (g *Gesture) Seed(r PixelRect) {
	*g = Gesture{rect: r.Canonical(), has: true}
}
