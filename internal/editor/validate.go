package editor

import (
	"fmt"
	"math"
)

// Reason distinguishes why a rectangle was rejected.
type Reason string

const (
	ReasonNotFinite   Reason = "NOT_FINITE"
	ReasonOutOfBounds Reason = "OUT_OF_BOUNDS_AT_ORIGIN"
	ReasonDegenerate  Reason = "DEGENERATE"
	ReasonExceedsEdge Reason = "EXCEEDS_FAR_EDGE"
)

var reasonMessages = map[Reason]string{
	ReasonNotFinite:   "coordinates must be finite numbers",
	ReasonOutOfBounds: "rectangle origin lies outside the image",
	ReasonDegenerate:  "rectangle has zero area",
	ReasonExceedsEdge: "rectangle extends past the right or bottom edge of the image",
}

// Message is the operator-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// RejectedError is returned by Validate when a rectangle breaks a geometric
// invariant.
type RejectedError struct {
	Reason Reason
	Rect   NormalizedRect
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("roi rejected: %s (x=%.4f y=%.4f w=%.4f h=%.4f)",
		e.Reason.Message(), e.Rect.X, e.Rect.Y, e.Rect.W, e.Rect.H)
}

// Validate checks x >= 0, y >= 0, w > 0, h > 0, x+w <= 1 and y+h <= 1.
func Validate(r NormalizedRect) error {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &RejectedError{Reason: ReasonNotFinite, Rect: r}
		}
	}

	switch {
	case r.X < 0 || r.Y < 0:
		return &RejectedError{Reason: ReasonOutOfBounds, Rect: r}
	case r.W <= 0 || r.H <= 0:
		return &RejectedError{Reason: ReasonDegenerate, Rect: r}
	case r.X+r.W > 1 || r.Y+r.H > 1:
		return &RejectedError{Reason: ReasonExceedsEdge, Rect: r}
	}

	return nil
}
