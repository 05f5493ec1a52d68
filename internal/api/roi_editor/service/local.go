package editorService

import (
	cameraService "GateROI/internal/api/camera/service"
	"GateROI/internal/api/roi"
	roiService "GateROI/internal/api/roi/service"
	"GateROI/internal/editor"
	"context"
	"errors"
)

// Local binds sessions to the in-process camera and ROI services.
func Local(cs cameraService.ICameraService, rs roiService.IROIService) Collaborators {
	return Collaborators{
		Snapshots: localSnapshots{cameras: cs},
		Store:     localStore{rois: rs},
	}
}

type localSnapshots struct {
	cameras cameraService.ICameraService
}

func (l localSnapshots) FetchSnapshot(ctx context.Context, cameraID int64, fresh bool) (editor.Snapshot, error) {
	return l.cameras.GetSnapshot(ctx, cameraID, fresh)
}

type localStore struct {
	rois roiService.IROIService
}

func (l localStore) FetchROI(ctx context.Context, cameraID int64) (editor.NormalizedRect, bool, error) {
	stored, err := l.rois.GetCameraROI(ctx, cameraID)
	if err != nil {
		if errors.Is(err, roi.ErrROINotConfigured) {
			return editor.NormalizedRect{}, false, nil
		}
		return editor.NormalizedRect{}, false, err
	}
	return stored.Rect, true, nil
}

func (l localStore) SaveROI(ctx context.Context, req editor.SaveRequest) (editor.NormalizedRect, error) {
	stored, err := l.rois.SaveCameraROI(ctx, req)
	if err != nil {
		return editor.NormalizedRect{}, err
	}
	return stored.Rect, nil
}
