package editor

import (
	"image"
	"math"
)

// Point is a pointer position in snapshot pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is the pixel size of the snapshot a rectangle is anchored to.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// PixelRect is a rectangle in snapshot pixels. Width and Height are signed
// while a draw gesture is in progress.
type PixelRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Canonical moves the origin to the top-left corner and makes both extents
// non-negative.
func (r PixelRect) Canonical() PixelRect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Contains reports whether p lies inside the canonical rectangle, edges included.
func (r PixelRect) Contains(p Point) bool {
	c := r.Canonical()
	return p.X >= c.X && p.X <= c.X+c.Width && p.Y >= c.Y && p.Y <= c.Y+c.Height
}

// Bounds rounds the canonical rectangle to integer display coordinates.
func (r PixelRect) Bounds() image.Rectangle {
	c := r.Canonical()
	x0 := int(math.Round(c.X))
	y0 := int(math.Round(c.Y))
	return image.Rect(x0, y0, x0+int(math.Round(c.Width)), y0+int(math.Round(c.Height)))
}

// NormalizedRect is a rectangle expressed as fractions of the frame size.
type NormalizedRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ToNormalized divides a pixel rectangle by the frame size. The rectangle is
// canonicalized first. f must have positive dimensions.
func ToNormalized(r PixelRect, f Frame) NormalizedRect {
	c := r.Canonical()
	fw, fh := float64(f.Width), float64(f.Height)
	return NormalizedRect{
		X: c.X / fw,
		Y: c.Y / fh,
		W: c.Width / fw,
		H: c.Height / fh,
	}
}

// ToPixel multiplies a normalized rectangle back into frame pixels.
func ToPixel(r NormalizedRect, f Frame) PixelRect {
	fw, fh := float64(f.Width), float64(f.Height)
	return PixelRect{
		X:      r.X * fw,
		Y:      r.Y * fh,
		Width:  r.W * fw,
		Height: r.H * fh,
	}
}

// Corners returns the rectangle as the two-point pixel corner list used by
// the gate ROI representation: [[x1, y1], [x2, y2]].
func Corners(r NormalizedRect, f Frame) [][]float64 {
	p := ToPixel(r, f).Canonical()
	return [][]float64{
		{math.Round(p.X), math.Round(p.Y)},
		{math.Round(p.X + p.Width), math.Round(p.Y + p.Height)},
	}
}

// FromCorners is the inverse of Corners. The corner order does not matter.
func FromCorners(points [][]float64, f Frame) (NormalizedRect, bool) {
	if len(points) != 2 || len(points[0]) != 2 || len(points[1]) != 2 || !f.Valid() {
		return NormalizedRect{}, false
	}
	px := PixelRect{
		X:      points[0][0],
		Y:      points[0][1],
		Width:  points[1][0] - points[0][0],
		Height: points[1][1] - points[0][1],
	}
	return ToNormalized(px, f), true
}
