package editorService

import (
	"GateROI/internal/editor"
	"GateROI/pkg/roiclient"
	"GateROI/pkg/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Remote binds sessions to another instance of the API over HTTP.
func Remote(client roiclient.IClient, u utils.IUtils) Collaborators {
	return Collaborators{
		Snapshots: remoteSnapshots{client: client, utils: u},
		Store:     remoteStore{client: client},
	}
}

type remoteSnapshots struct {
	client roiclient.IClient
	utils  utils.IUtils
}

// FetchSnapshot falls back to decoding the image header when the frame size
// headers are missing.
func (r remoteSnapshots) FetchSnapshot(ctx context.Context, cameraID int64, fresh bool) (editor.Snapshot, error) {
	snap, err := r.client.GetSnapshot(ctx, cameraID, fresh)
	if err != nil {
		return editor.Snapshot{}, err
	}

	frame := editor.Frame{Width: snap.Width, Height: snap.Height}
	contentType := snap.ContentType
	if !frame.Valid() {
		info, err := r.utils.DecodeImageConfig(snap.Image)
		if err != nil {
			return editor.Snapshot{}, fmt.Errorf("camera %d: %w", cameraID, err)
		}
		frame = editor.Frame{Width: info.Width, Height: info.Height}
		if contentType == "" {
			contentType = info.ContentType
		}
	}

	return editor.Snapshot{
		CameraID:    cameraID,
		Image:       snap.Image,
		ContentType: contentType,
		Frame:       frame,
		CapturedAt:  time.Now(),
	}, nil
}

type remoteStore struct {
	client roiclient.IClient
}

func (r remoteStore) FetchROI(ctx context.Context, cameraID int64) (editor.NormalizedRect, bool, error) {
	stored, ok, err := r.client.GetCameraROI(ctx, cameraID)
	if err != nil || !ok {
		return editor.NormalizedRect{}, false, err
	}
	return editor.NormalizedRect{X: stored.X, Y: stored.Y, W: stored.W, H: stored.H}, true, nil
}

// SaveROI writes the camera rectangle, then the gate corners when a gate is
// set. The two writes are separate requests.
func (r remoteStore) SaveROI(ctx context.Context, req editor.SaveRequest) (editor.NormalizedRect, error) {
	stored, err := r.client.PutCameraROI(ctx, req.CameraID, req.Rect.X, req.Rect.Y, req.Rect.W, req.Rect.H)
	if err != nil {
		return editor.NormalizedRect{}, asRejection(err, req.Rect)
	}

	if req.GateID != 0 && req.Frame.Valid() {
		if err := r.client.PutGateROI(ctx, req.GateID, req.CameraID, editor.Corners(req.Rect, req.Frame)); err != nil {
			return editor.NormalizedRect{}, fmt.Errorf("gate %d: %w", req.GateID, err)
		}
	}

	return editor.NormalizedRect{X: stored.X, Y: stored.Y, W: stored.W, H: stored.H}, nil
}

// asRejection turns a 422 carrying a validator reason back into the
// rejection the session reports locally.
func asRejection(err error, rect editor.NormalizedRect) error {
	var apiErr *roiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		return err
	}

	reason := editor.Reason(apiErr.Code)
	switch reason {
	case editor.ReasonNotFinite, editor.ReasonOutOfBounds, editor.ReasonDegenerate, editor.ReasonExceedsEdge:
		return &editor.RejectedError{Reason: reason, Rect: rect}
	default:
		return err
	}
}
