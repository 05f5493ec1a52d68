package cameraService

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *cameraService) ListCameras(ctx context.Context) ([]entity.Camera, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.cameraRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	cameras, err := repo.Camera.ListCameras(ctx)
	if err != nil {
		return nil, camera.ErrListCameras
	}

	return cameras, nil
}

func (s *cameraService) GetCamera(ctx context.Context, id int64) (entity.Camera, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if id <= 0 {
		return entity.Camera{}, camera.ErrInvalidCameraID
	}

	repo, err := s.cameraRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.Camera{}, err
	}

	cam, err := repo.Camera.GetCameraByID(ctx, id)
	if err != nil {
		if errors.Is(err, camera.ErrCameraNotFound) {
			return entity.Camera{}, err
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  id,
			"error":      err.Error(),
		}).Error("Failed to get camera")
		return entity.Camera{}, err
	}

	return cam, nil
}

func (s *cameraService) GateExists(ctx context.Context, gateID int64) (bool, error) {
	if gateID <= 0 {
		return false, nil
	}

	repo, err := s.cameraRepository.NewClient(false)
	if err != nil {
		return false, err
	}

	return repo.Camera.GateExists(ctx, gateID)
}
