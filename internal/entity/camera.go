package entity

import "time"

type Gate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Camera struct {
	ID          int64      `json:"id"`
	GateID      int64      `json:"gate_id"`
	Name        string     `json:"name"`
	RTSPURL     string     `json:"rtsp_url"`
	SnapshotURL string     `json:"snapshot_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastSeen    *time.Time `json:"last_seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ReferenceFrameKey is the object key of the uploaded still used when the
// camera exposes no snapshot endpoint.
func (c Camera) ReferenceFrameKey() string {
	return ReferenceFrameKey(c.ID)
}
