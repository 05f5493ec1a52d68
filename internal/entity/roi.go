package entity

import (
	"GateROI/internal/editor"
	"fmt"
	"time"
)

const CoordinateTypeNormalized = "normalized"

type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapePolygon   Shape = "polygon"
)

func ReferenceFrameKey(cameraID int64) string {
	return fmt.Sprintf("cameras/%d/reference-frame", cameraID)
}

// CameraROI is the normalized rectangle persisted per camera.
type CameraROI struct {
	ID             int64                 `json:"id"`
	CameraID       int64                 `json:"camera_id"`
	Rect           editor.NormalizedRect `json:"rect"`
	CoordinateType string                `json:"coordinate_type"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// GateROI is the gate scoped shape in pixel corners.
type GateROI struct {
	ID          int64       `json:"id"`
	GateID      int64       `json:"gate_id"`
	CameraID    int64       `json:"camera_id"`
	Shape       Shape       `json:"shape"`
	Coordinates [][]float64 `json:"coordinates"`
	CreatedAt   time.Time   `json:"created_at"`
}

func IsValidShape(shape string) bool {
	switch Shape(shape) {
	case ShapeRectangle, ShapePolygon:
		return true
	default:
		return false
	}
}

// MinPoints is the fewest corners a shape can be described with.
func (s Shape) MinPoints() int {
	if s == ShapeRectangle {
		return 2
	}
	return 3
}
