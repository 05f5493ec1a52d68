package roi

import "GateROI/pkg/response"

var (
	ErrROINotConfigured     = response.NewError(404, "ROI_NOT_CONFIGURED", "region of interest not configured")
	ErrROINotFound          = response.NewError(404, "ROI_NOT_FOUND", "ROI not found")
	ErrGateOrCameraNotFound = response.NewError(404, "GATE_OR_CAMERA_NOT_FOUND", "Gate or camera not found")
	ErrInvalidROI           = response.NewError(422, "ROI_INVALID", "region of interest violates stored constraints")
	ErrSaveROI              = response.NewError(500, "ROI_SAVE_FAILED", "failed to save region of interest")
	ErrGetROI               = response.NewError(500, "ROI_READ_FAILED", "failed to read region of interest")
)
