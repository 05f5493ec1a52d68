package cameraService

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"GateROI/pkg/s3"
	"GateROI/pkg/utils"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/sirupsen/logrus"
)

type frameSource struct {
	name  string
	fetch func(ctx context.Context) ([]byte, error)
}

func snapshotKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetSnapshot returns a still of the camera. Unless fresh is set, a frame
// captured within the cache TTL is reused; concurrent captures of the same
// camera share one grab. The grab runs detached from the caller and is bound
// by the capture timeout, so a waiter that gives up does not fail the others.
func (s *cameraService) GetSnapshot(ctx context.Context, id int64, fresh bool) (editor.Snapshot, error) {
	cam, err := s.GetCamera(ctx, id)
	if err != nil {
		return editor.Snapshot{}, err
	}

	key := snapshotKey(id)
	if !fresh {
		if cached, ok := s.snapshots.Get(key); ok {
			return cached.(editor.Snapshot), nil
		}
	}

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.captureTimeout)
		defer cancel()

		snap, err := s.capture(captureCtx, cam)
		if err != nil {
			return nil, err
		}
		s.snapshots.SetDefault(key, snap)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return editor.Snapshot{}, res.Err
		}
		return res.Val.(editor.Snapshot), nil
	case <-ctx.Done():
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"camera_id":  id,
			"error":      ctx.Err().Error(),
		}).Debug("Stopped waiting for snapshot")
		return editor.Snapshot{}, camera.ErrSnapshotUnavailable
	}
}

func (s *cameraService) capture(ctx context.Context, cam entity.Camera) (editor.Snapshot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	for _, src := range s.sources(cam) {
		data, err := src.fetch(ctx)
		if err != nil {
			entry := s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"camera_id":  cam.ID,
				"source":     src.name,
				"error":      err.Error(),
			})
			if errors.Is(err, s3.ErrObjectNotFound) {
				entry.Debug("No reference frame stored")
			} else {
				entry.Warn("Snapshot source failed")
			}
			continue
		}

		snap, err := s.buildSnapshot(cam.ID, data)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"camera_id":  cam.ID,
				"source":     src.name,
				"error":      err.Error(),
			}).Warn("Snapshot source returned an unreadable frame")
			continue
		}

		if src.name == "live" {
			s.touchLastSeen(ctx, cam.ID)
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  cam.ID,
			"source":     src.name,
			"width":      snap.Frame.Width,
			"height":     snap.Frame.Height,
		}).Debug("Snapshot captured")

		return snap, nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"camera_id":  cam.ID,
	}).Warn("No snapshot source available")

	return editor.Snapshot{}, camera.ErrSnapshotUnavailable
}

// sources lists the places a frame can come from, live endpoint first.
func (s *cameraService) sources(cam entity.Camera) []frameSource {
	var sources []frameSource

	if cam.SnapshotURL != "" {
		sources = append(sources, frameSource{name: "live", fetch: func(ctx context.Context) ([]byte, error) {
			data, _, err := s.grabber.FromURL(ctx, cam.SnapshotURL)
			return data, err
		}})
	}
	if s.s3 != nil {
		sources = append(sources, frameSource{name: "reference", fetch: func(ctx context.Context) ([]byte, error) {
			data, _, err := s.s3.GetObject(ctx, cam.ReferenceFrameKey())
			return data, err
		}})
	}
	if s.samplePath != "" {
		sources = append(sources, frameSource{name: "sample", fetch: func(ctx context.Context) ([]byte, error) {
			return s.grabber.FromFile(s.samplePath)
		}})
	}

	return sources
}

func (s *cameraService) buildSnapshot(cameraID int64, data []byte) (editor.Snapshot, error) {
	info, err := s.utils.DecodeImageConfig(data)
	if err != nil {
		return editor.Snapshot{}, err
	}

	frame := editor.Frame{Width: info.Width, Height: info.Height}
	if !frame.Valid() {
		return editor.Snapshot{}, fmt.Errorf("frame has no area: %dx%d", info.Width, info.Height)
	}

	return editor.Snapshot{
		CameraID:    cameraID,
		Image:       data,
		ContentType: info.ContentType,
		Frame:       frame,
		CapturedAt:  s.now(),
	}, nil
}

func (s *cameraService) touchLastSeen(ctx context.Context, id int64) {
	repo, err := s.cameraRepository.NewClient(false)
	if err != nil {
		return
	}
	if err := repo.Camera.TouchLastSeen(ctx, id, s.now()); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"camera_id":  id,
			"error":      err.Error(),
		}).Warn("Failed to record camera last seen")
	}
}

func (s *cameraService) UploadReferenceFrame(ctx context.Context, id int64, file *multipart.FileHeader) (editor.Snapshot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	cam, err := s.GetCamera(ctx, id)
	if err != nil {
		return editor.Snapshot{}, err
	}

	if s.s3 == nil {
		return editor.Snapshot{}, camera.ErrStorageUnavailable
	}

	if err := s.utils.ValidateImageFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  id,
			"error":      err.Error(),
		}).Warn("Rejected reference frame upload")
		if errors.Is(err, utils.ErrFileTooLarge) {
			return editor.Snapshot{}, camera.ErrImageTooLarge
		}
		return editor.Snapshot{}, camera.ErrInvalidImage
	}

	data, err := s.utils.ReadFile(file)
	if err != nil {
		return editor.Snapshot{}, camera.ErrInvalidImage
	}

	snap, err := s.buildSnapshot(cam.ID, data)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  id,
			"error":      err.Error(),
		}).Warn("Uploaded reference frame is not decodable")
		return editor.Snapshot{}, camera.ErrInvalidImage
	}

	if err := s.s3.PutObject(ctx, cam.ReferenceFrameKey(), data, snap.ContentType); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  id,
			"error":      err.Error(),
		}).Error("Failed to store reference frame")
		return editor.Snapshot{}, camera.ErrStoreReferenceFrame
	}

	s.snapshots.Delete(snapshotKey(cam.ID))

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"camera_id":  id,
		"width":      snap.Frame.Width,
		"height":     snap.Frame.Height,
	}).Info("Reference frame stored")

	return snap, nil
}
