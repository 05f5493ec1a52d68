package roi_editor

import "GateROI/internal/editor"

const (
	MessageSelectCamera = "select_camera"
	MessageRefresh      = "refresh"
	MessagePress        = "press"
	MessageMove         = "move"
	MessageRelease      = "release"
	MessageSave         = "save"
	MessageClear        = "clear"
)

const (
	MessageState = "state"
	MessageSaved = "saved"
	MessageError = "error"
)

// ClientMessage is one operator action on the editor socket.
type ClientMessage struct {
	Type     string  `json:"type"`
	CameraID int64   `json:"camera_id,omitempty"`
	GateID   int64   `json:"gate_id,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
}

// ServerMessage is a state push, a save confirmation or an error. CameraID
// is set on saved messages.
type ServerMessage struct {
	Type     string                 `json:"type"`
	State    *editor.State          `json:"state,omitempty"`
	CameraID int64                  `json:"camera_id,omitempty"`
	ROI      *editor.NormalizedRect `json:"roi,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Details  string                 `json:"details,omitempty"`
}

type FrameRequest struct {
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

type RectRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeRequest is a pixel rectangle drawn on a frame of the given size.
type NormalizeRequest struct {
	Frame FrameRequest `json:"frame"`
	Rect  RectRequest  `json:"rect"`
}

type NormalizeResponse struct {
	Rect       editor.PixelRect      `json:"rect"`
	Normalized editor.NormalizedRect `json:"normalized"`
	Valid      bool                  `json:"valid"`
	Reason     string                `json:"reason,omitempty"`
	Message    string                `json:"message,omitempty"`
}
