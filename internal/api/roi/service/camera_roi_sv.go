package roiService

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/api/roi"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func cacheKey(cameraID int64) string {
	return fmt.Sprintf("roi:camera:%d", cameraID)
}

// GetCameraROI reads through the redis cache. A cache failure is logged and
// the database answers instead.
func (s *roiService) GetCameraROI(ctx context.Context, cameraID int64) (entity.CameraROI, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.cache != nil {
		var cached entity.CameraROI
		found, err := s.cache.GetJSON(ctx, cacheKey(cameraID), &cached)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"camera_id":  cameraID,
				"error":      err.Error(),
			}).Warn("ROI cache read failed")
		} else if found {
			return cached, nil
		}
	}

	if _, err := s.cameraService.GetCamera(ctx, cameraID); err != nil {
		return entity.CameraROI{}, err
	}

	repo, err := s.roiRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.CameraROI{}, roi.ErrGetROI
	}

	stored, err := repo.CameraROI.GetByCameraID(ctx, cameraID)
	if err != nil {
		if errors.Is(err, roi.ErrROINotConfigured) {
			return entity.CameraROI{}, err
		}
		return entity.CameraROI{}, roi.ErrGetROI
	}

	s.cacheROI(ctx, stored)
	return stored, nil
}

// SaveCameraROI validates and upserts the camera's rectangle. With a gate id
// the gate scoped rectangle is written in the same transaction, as two pixel
// corners on req.Frame.
func (s *roiService) SaveCameraROI(ctx context.Context, req editor.SaveRequest) (entity.CameraROI, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := editor.Validate(req.Rect); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  req.CameraID,
			"error":      err.Error(),
		}).Warn("Rejected region of interest")
		return entity.CameraROI{}, err
	}

	if _, err := s.cameraService.GetCamera(ctx, req.CameraID); err != nil {
		return entity.CameraROI{}, err
	}

	writeGate := req.GateID != 0
	if writeGate {
		if !req.Frame.Valid() {
			return entity.CameraROI{}, fmt.Errorf("%w: gate shape needs the snapshot frame", roi.ErrSaveROI)
		}
		exists, err := s.cameraService.GateExists(ctx, req.GateID)
		if err != nil {
			return entity.CameraROI{}, roi.ErrSaveROI
		}
		if !exists {
			return entity.CameraROI{}, roi.ErrGateOrCameraNotFound
		}
	}

	repo, err := s.roiRepository.NewClient(writeGate)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.CameraROI{}, roi.ErrSaveROI
	}

	stored, err := s.save(ctx, repo, req, writeGate)
	if err != nil {
		if rbErr := repo.Rollback(); rbErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      rbErr.Error(),
			}).Error("Failed to rollback ROI save")
		}
		return entity.CameraROI{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit ROI save")
		return entity.CameraROI{}, roi.ErrSaveROI
	}

	s.cacheROI(ctx, stored)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"camera_id":  stored.CameraID,
		"gate_id":    req.GateID,
		"roi_x":      stored.Rect.X,
		"roi_y":      stored.Rect.Y,
		"roi_w":      stored.Rect.W,
		"roi_h":      stored.Rect.H,
	}).Info("Region of interest saved")

	return stored, nil
}

func (s *roiService) save(ctx context.Context, repo roiClient, req editor.SaveRequest, writeGate bool) (entity.CameraROI, error) {
	stored, err := repo.CameraROI.Upsert(ctx, entity.CameraROI{
		CameraID:       req.CameraID,
		Rect:           req.Rect,
		CoordinateType: entity.CoordinateTypeNormalized,
		UpdatedAt:      time.Now(),
	})
	if err != nil {
		return entity.CameraROI{}, mapSaveError(err)
	}

	if writeGate {
		_, err := repo.GateROI.Upsert(ctx, entity.GateROI{
			GateID:      req.GateID,
			CameraID:    req.CameraID,
			Shape:       entity.ShapeRectangle,
			Coordinates: editor.Corners(req.Rect, req.Frame),
		})
		if err != nil {
			return entity.CameraROI{}, mapSaveError(err)
		}
	}

	return stored, nil
}

// mapSaveError keeps domain errors and hides driver errors.
func mapSaveError(err error) error {
	switch {
	case errors.Is(err, camera.ErrCameraNotFound),
		errors.Is(err, roi.ErrGateOrCameraNotFound),
		errors.Is(err, roi.ErrInvalidROI):
		return err
	default:
		return fmt.Errorf("%w: %v", roi.ErrSaveROI, err)
	}
}

func (s *roiService) cacheROI(ctx context.Context, stored entity.CameraROI) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, cacheKey(stored.CameraID), stored, s.cacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"camera_id":  stored.CameraID,
			"error":      err.Error(),
		}).Warn("ROI cache write failed")
	}
}
