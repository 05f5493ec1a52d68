package editorService

import (
	"GateROI/internal/api/roi_editor"
	"GateROI/internal/editor"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type IEditorService interface {
	NewSession(onChange func(editor.State)) *editor.Session
	Normalize(req roi_editor.NormalizeRequest) roi_editor.NormalizeResponse
}

// Collaborators are the snapshot source and ROI store every session of the
// service is bound to.
type Collaborators struct {
	Snapshots editor.SnapshotProvider
	Store     editor.ROIStore
}

type editorService struct {
	log           *logrus.Logger
	collaborators Collaborators
	fetchTimeout  time.Duration
}

func NewEditorService(log *logrus.Logger, collaborators Collaborators) IEditorService {
	fetchTimeout := 15 * time.Second
	if raw := os.Getenv("EDITOR_FETCH_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			fetchTimeout = d
		} else {
			log.WithField("value", raw).Warn("Ignoring invalid EDITOR_FETCH_TIMEOUT")
		}
	}

	return &editorService{
		log:           log,
		collaborators: collaborators,
		fetchTimeout:  fetchTimeout,
	}
}

func (s *editorService) NewSession(onChange func(editor.State)) *editor.Session {
	return editor.NewSession(
		s.log,
		s.collaborators.Snapshots,
		s.collaborators.Store,
		editor.WithOnChange(onChange),
		editor.WithFetchTimeout(s.fetchTimeout),
	)
}

// Normalize canonicalizes a pixel rectangle, scales it to the frame and
// reports whether the result would be accepted for saving.
func (s *editorService) Normalize(req roi_editor.NormalizeRequest) roi_editor.NormalizeResponse {
	frame := editor.Frame{Width: req.Frame.Width, Height: req.Frame.Height}
	rect := editor.PixelRect{
		X:      req.Rect.X,
		Y:      req.Rect.Y,
		Width:  req.Rect.Width,
		Height: req.Rect.Height,
	}.Canonical()

	normalized := editor.ToNormalized(rect, frame)
	res := roi_editor.NormalizeResponse{
		Rect:       rect,
		Normalized: normalized,
		Valid:      true,
	}

	var rejected *editor.RejectedError
	if err := editor.Validate(normalized); errors.As(err, &rejected) {
		res.Valid = false
		res.Reason = string(rejected.Reason)
		res.Message = rejected.Reason.Message()
	}
	return res
}
