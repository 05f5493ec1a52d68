package camera

import "GateROI/pkg/response"

var (
	ErrCameraNotFound      = response.NewError(404, "CAMERA_NOT_FOUND", "camera not found")
	ErrInvalidCameraID     = response.NewError(400, "INVALID_CAMERA_ID", "camera id must be a positive integer")
	ErrSnapshotUnavailable = response.NewError(503, "SNAPSHOT_UNAVAILABLE", "unable to capture snapshot")
	ErrInvalidImage        = response.NewError(400, "INVALID_IMAGE", "uploaded file is not a readable image")
	ErrImageTooLarge       = response.NewError(400, "IMAGE_TOO_LARGE", "image exceeds the 10MB upload limit")
	ErrStorageUnavailable  = response.NewError(503, "STORAGE_UNAVAILABLE", "reference frame storage is not configured")
	ErrStoreReferenceFrame = response.NewError(500, "REFERENCE_FRAME_FAILED", "failed to store reference frame")
	ErrListCameras         = response.NewError(500, "CAMERA_LIST_FAILED", "failed to list cameras")
)
