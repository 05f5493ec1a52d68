package camera

type CameraResponse struct {
	ID          int64   `json:"id"`
	GateID      int64   `json:"gate_id"`
	Name        string  `json:"name"`
	RTSPURL     string  `json:"rtsp_url"`
	SnapshotURL string  `json:"snapshot_url,omitempty"`
	IsActive    bool    `json:"is_active"`
	LastSeen    *string `json:"last_seen"`
	CreatedAt   string  `json:"created_at"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
}

type ReferenceFrameResponse struct {
	CameraID    int64  `json:"camera_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	CapturedAt  string `json:"captured_at"`
}
