package editor

import (
	"context"
	"time"
)

// Snapshot is a still frame captured from a camera. Image is never modified
// after the snapshot is built.
type Snapshot struct {
	CameraID    int64
	Image       []byte
	ContentType string
	Frame       Frame
	CapturedAt  time.Time
}

// SnapshotProvider returns a frame for a camera. fresh asks the provider to
// skip any cache it keeps.
type SnapshotProvider interface {
	FetchSnapshot(ctx context.Context, cameraID int64, fresh bool) (Snapshot, error)
}

// SaveRequest carries everything a store needs to persist one rectangle.
// GateID is zero unless the gate-scoped representation should be written too;
// Frame is the snapshot size the rectangle was drawn on.
type SaveRequest struct {
	CameraID int64
	GateID   int64
	Rect     NormalizedRect
	Frame    Frame
}

// ROIStore reads and writes the persisted rectangle of a camera. FetchROI
// reports ok=false when no rectangle is configured.
type ROIStore interface {
	FetchROI(ctx context.Context, cameraID int64) (rect NormalizedRect, ok bool, err error)
	SaveROI(ctx context.Context, req SaveRequest) (NormalizedRect, error)
}

// DetailedError is implemented by store errors that carry a message meant
// for the operator.
type DetailedError interface {
	error
	Detail() string
}
