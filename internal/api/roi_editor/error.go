package roi_editor

import "GateROI/pkg/response"

var (
	ErrUnknownMessage = response.NewError(400, "UNKNOWN_MESSAGE", "unknown message type")
	ErrBadMessage     = response.NewError(400, "BAD_MESSAGE", "message is not valid JSON")
	ErrNoCamera       = response.NewError(409, "NO_CAMERA", "select a camera first")
	ErrNoSnapshot     = response.NewError(409, "NO_SNAPSHOT", "snapshot not loaded yet")
	ErrUnavailable    = response.NewError(503, "SNAPSHOT_UNAVAILABLE", "snapshot unavailable")
	ErrSaveInProgress = response.NewError(409, "SAVE_IN_PROGRESS", "a save is already running")
	ErrPersistFailed  = response.NewError(502, "PERSIST_FAILED", "failed to save region of interest")
)
