package roi

// UpsertCameraROIRequest carries a normalized rectangle. Pointers keep a
// missing field distinguishable from zero.
type UpsertCameraROIRequest struct {
	X *float64 `json:"roi_x" validate:"required,gte=0,lte=1"`
	Y *float64 `json:"roi_y" validate:"required,gte=0,lte=1"`
	W *float64 `json:"roi_w" validate:"required,gt=0,lte=1"`
	H *float64 `json:"roi_h" validate:"required,gt=0,lte=1"`
}

type CameraROIResponse struct {
	ID             int64   `json:"id"`
	CameraID       int64   `json:"camera_id"`
	X              float64 `json:"roi_x"`
	Y              float64 `json:"roi_y"`
	W              float64 `json:"roi_w"`
	H              float64 `json:"roi_h"`
	CoordinateType string  `json:"coordinate_type"`
	UpdatedAt      string  `json:"updated_at"`
}

// CreateGateROIRequest is the gate scoped shape in pixel corners. The
// point count per shape is checked by a struct level validation.
type CreateGateROIRequest struct {
	GateID      int64       `json:"gate_id" validate:"required,gt=0"`
	CameraID    int64       `json:"camera_id" validate:"required,gt=0"`
	Shape       string      `json:"shape" validate:"omitempty,oneof=rectangle polygon"`
	Coordinates [][]float64 `json:"coordinates" validate:"required,min=2,dive,len=2,dive,gte=0"`
}

type GateROIResponse struct {
	ID          int64       `json:"id"`
	GateID      int64       `json:"gate_id"`
	CameraID    int64       `json:"camera_id"`
	Shape       string      `json:"shape"`
	Coordinates [][]float64 `json:"coordinates"`
	CreatedAt   string      `json:"created_at"`
}
