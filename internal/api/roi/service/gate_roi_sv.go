package roiService

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/api/roi"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *roiService) GetGateROI(ctx context.Context, gateID, cameraID int64) (entity.GateROI, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.roiRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.GateROI{}, roi.ErrGetROI
	}

	stored, err := repo.GateROI.GetByGateAndCamera(ctx, gateID, cameraID)
	if err != nil {
		if errors.Is(err, roi.ErrROINotFound) {
			return entity.GateROI{}, err
		}
		return entity.GateROI{}, roi.ErrGetROI
	}

	return stored, nil
}

// UpsertGateROI replaces the shape stored for a gate and camera pair.
func (s *roiService) UpsertGateROI(ctx context.Context, req roi.CreateGateROIRequest) (entity.GateROI, error) {
	requestID := contextPkg.GetRequestID(ctx)

	shape := entity.Shape(req.Shape)
	if shape == "" {
		shape = entity.ShapePolygon
	}

	exists, err := s.cameraService.GateExists(ctx, req.GateID)
	if err != nil {
		return entity.GateROI{}, roi.ErrSaveROI
	}
	if !exists {
		return entity.GateROI{}, roi.ErrGateOrCameraNotFound
	}
	if _, err := s.cameraService.GetCamera(ctx, req.CameraID); err != nil {
		if errors.Is(err, camera.ErrCameraNotFound) {
			return entity.GateROI{}, roi.ErrGateOrCameraNotFound
		}
		return entity.GateROI{}, err
	}

	repo, err := s.roiRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.GateROI{}, roi.ErrSaveROI
	}

	stored, err := repo.GateROI.Upsert(ctx, entity.GateROI{
		GateID:      req.GateID,
		CameraID:    req.CameraID,
		Shape:       shape,
		Coordinates: req.Coordinates,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return entity.GateROI{}, mapSaveError(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"gate_id":    req.GateID,
		"camera_id":  req.CameraID,
		"shape":      shape,
		"points":     len(req.Coordinates),
	}).Info("Gate ROI saved")

	return stored, nil
}
