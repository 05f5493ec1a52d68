package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// State is a read-only view of a session.
type State struct {
	CameraID      int64           `json:"camera_id"`
	GateID        int64           `json:"gate_id,omitempty"`
	Generation    uint64          `json:"generation"`
	Frame         *Frame          `json:"frame"`
	Rect          *PixelRect      `json:"rect"`
	Existing      *NormalizedRect `json:"existing"`
	Gesture       string          `json:"gesture"`
	Loading       bool            `json:"loading"`
	Saving        bool            `json:"saving"`
	SnapshotError string          `json:"snapshot_error,omitempty"`
}

type SessionOption func(*Session)

// WithOnChange registers fn to be called after every state change. fn runs
// on the goroutine that caused the change and must not call back into the
// session synchronously.
func WithOnChange(fn func(State)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithFetchTimeout bounds the snapshot and ROI fetches of one selection.
func WithFetchTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.fetchTimeout = d
	}
}

// Session is the editing context of one operator. Every camera selection
// bumps a generation counter; fetch results tagged with an older generation
// are dropped when they arrive.
type Session struct {
	log          *logrus.Logger
	snapshots    SnapshotProvider
	store        ROIStore
	onChange     func(State)
	fetchTimeout time.Duration

	mu          sync.Mutex
	generation  uint64
	selected    bool
	cameraID    int64
	gateID      int64
	snapshot    *Snapshot
	existing    *NormalizedRect
	gesture     Gesture
	loading     bool
	saving      bool
	snapshotErr error
}

func NewSession(log *logrus.Logger, snapshots SnapshotProvider, store ROIStore, opts ...SessionOption) *Session {
	s := &Session{
		log:       log,
		snapshots: snapshots,
		store:     store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load is a selection that is already recorded on the session but whose
// fetches have not run yet.
type Load struct {
	s        *Session
	gen      uint64
	cameraID int64
	gateID   int64
	fresh    bool
}

// SelectCamera switches the session to cameraID and loads its snapshot and
// persisted ROI. It returns ErrSuperseded if another selection started while
// the fetches were running.
func (s *Session) SelectCamera(ctx context.Context, cameraID, gateID int64) error {
	return s.BeginSelect(cameraID, gateID).Run(ctx)
}

// Refresh reloads the active camera with a fresh snapshot.
func (s *Session) Refresh(ctx context.Context) error {
	l, err := s.BeginRefresh()
	if err != nil {
		return err
	}
	return l.Run(ctx)
}

// BeginSelect records cameraID as the active camera and resets the editing
// state. Selections are ordered by the calls to BeginSelect, not by when
// their fetches finish.
func (s *Session) BeginSelect(cameraID, gateID int64) *Load {
	s.mu.Lock()
	l := s.begin(cameraID, gateID, false)
	s.mu.Unlock()
	s.notify()
	return l
}

// BeginRefresh is BeginSelect for the active camera with a fresh snapshot.
func (s *Session) BeginRefresh() (*Load, error) {
	s.mu.Lock()
	if !s.selected {
		s.mu.Unlock()
		return nil, ErrNoCamera
	}
	l := s.begin(s.cameraID, s.gateID, true)
	s.mu.Unlock()
	s.notify()
	return l, nil
}

// begin bumps the generation. Caller holds mu.
func (s *Session) begin(cameraID, gateID int64, fresh bool) *Load {
	s.generation++
	s.selected = true
	s.cameraID = cameraID
	s.gateID = gateID
	s.snapshot = nil
	s.existing = nil
	s.snapshotErr = nil
	s.gesture.Reset()
	s.loading = true

	return &Load{s: s, gen: s.generation, cameraID: cameraID, gateID: gateID, fresh: fresh}
}

// Run fetches the snapshot and the persisted ROI of the selection.
func (l *Load) Run(ctx context.Context) error {
	s := l.s
	gen, cameraID := l.gen, l.cameraID

	s.log.WithFields(logrus.Fields{
		"camera_id":  cameraID,
		"gate_id":    l.gateID,
		"generation": gen,
		"fresh":      l.fresh,
	}).Debug("Loading camera for ROI editing")

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	var g errgroup.Group
	g.Go(func() error {
		snap, err := s.snapshots.FetchSnapshot(ctx, cameraID, l.fresh)
		return s.applySnapshot(gen, cameraID, snap, err)
	})
	g.Go(func() error {
		rect, ok, err := s.store.FetchROI(ctx, cameraID)
		s.applyExisting(gen, cameraID, rect, ok, err)
		return nil
	})
	loadErr := g.Wait()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.loading = false
	s.mu.Unlock()
	s.notify()

	return loadErr
}

func (s *Session) applySnapshot(gen uint64, cameraID int64, snap Snapshot, err error) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"camera_id":  cameraID,
			"generation": gen,
		}).Debug("Dropping stale snapshot")
		return nil
	}

	if err == nil && !snap.Frame.Valid() {
		err = fmt.Errorf("invalid frame size %dx%d", snap.Frame.Width, snap.Frame.Height)
	}
	if err != nil {
		s.snapshotErr = err
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"camera_id": cameraID,
			"error":     err.Error(),
		}).Warn("Snapshot unavailable")
		s.notify()
		return fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}

	snap.CameraID = cameraID
	s.snapshot = &snap
	s.seed()
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) applyExisting(gen uint64, cameraID int64, rect NormalizedRect, ok bool, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"camera_id":  cameraID,
			"generation": gen,
		}).Debug("Dropping stale ROI")
		return
	}

	if err != nil {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"camera_id": cameraID,
			"error":     err.Error(),
		}).Warn("Failed to fetch existing ROI, treating as none configured")
		return
	}
	if !ok {
		s.mu.Unlock()
		return
	}
	if verr := Validate(rect); verr != nil {
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"camera_id": cameraID,
			"error":     verr.Error(),
		}).Warn("Ignoring stored ROI that breaks bounds")
		return
	}

	s.existing = &rect
	s.seed()
	s.mu.Unlock()
	s.notify()
}

// seed shows the persisted rectangle once both the snapshot and the ROI are
// in, unless the operator already started drawing. Caller holds mu.
func (s *Session) seed() {
	if s.snapshot == nil || s.existing == nil {
		return
	}
	if _, has := s.gesture.Rect(); has || s.gesture.State() != GestureIdle {
		return
	}
	s.gesture.Seed(ToPixel(*s.existing, s.snapshot.Frame))
}

func (s *Session) Press(p Point) error {
	return s.pointer(func(g *Gesture) { g.Press(p) })
}

func (s *Session) Move(p Point) error {
	return s.pointer(func(g *Gesture) { g.Move(p) })
}

func (s *Session) Release(p Point) error {
	return s.pointer(func(g *Gesture) { g.Release(p) })
}

func (s *Session) pointer(apply func(g *Gesture)) error {
	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return ErrNoSnapshot
	}
	apply(&s.gesture)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Saved is a rectangle the store accepted, tagged with the camera it was
// drawn on.
type Saved struct {
	CameraID int64
	GateID   int64
	Rect     NormalizedRect
}

// Save validates and persists the candidate rectangle. ok is false when
// there was nothing to save. The camera may have changed by the time the
// store answers; Saved names the one the rectangle belongs to.
func (s *Session) Save(ctx context.Context) (saved Saved, ok bool, err error) {
	s.mu.Lock()
	rect, has := s.gesture.Rect()
	if !has || s.snapshot == nil {
		s.mu.Unlock()
		return Saved{}, false, nil
	}
	if s.saving {
		s.mu.Unlock()
		return Saved{}, false, ErrSaveInProgress
	}

	frame := s.snapshot.Frame
	normalized := ToNormalized(rect, frame)
	if err := Validate(normalized); err != nil {
		s.mu.Unlock()
		return Saved{}, false, err
	}

	s.saving = true
	gen := s.generation
	req := SaveRequest{
		CameraID: s.cameraID,
		GateID:   s.gateID,
		Rect:     normalized,
		Frame:    frame,
	}
	s.mu.Unlock()
	s.notify()

	stored, err := s.store.SaveROI(ctx, req)

	s.mu.Lock()
	s.saving = false
	if err == nil && gen == s.generation {
		s.existing = &stored
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"camera_id": req.CameraID,
			"error":     err.Error(),
		}).Warn("Failed to persist ROI")
		return Saved{}, false, newPersistError(err)
	}

	s.log.WithFields(logrus.Fields{
		"camera_id": req.CameraID,
		"gate_id":   req.GateID,
	}).Info("ROI saved")
	return Saved{CameraID: req.CameraID, GateID: req.GateID, Rect: stored}, true, nil
}

// Clear drops the candidate rectangle and the cached persisted ROI. The
// store is not contacted.
func (s *Session) Clear() {
	s.mu.Lock()
	s.gesture.Reset()
	s.existing = nil
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the loaded frame, if any.
func (s *Session) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		CameraID:   s.cameraID,
		GateID:     s.gateID,
		Generation: s.generation,
		Gesture:    s.gesture.State().String(),
		Loading:    s.loading,
		Saving:     s.saving,
	}
	if s.snapshot != nil {
		f := s.snapshot.Frame
		st.Frame = &f
	}
	if r, has := s.gesture.Rect(); has {
		st.Rect = &r
	}
	if s.existing != nil {
		e := *s.existing
		st.Existing = &e
	}
	if s.snapshotErr != nil {
		st.SnapshotError = ErrSnapshotUnavailable.Error()
	}
	return st
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.State())
	}
}

// IsUnavailable reports whether err came from a failed snapshot fetch.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrSnapshotUnavailable)
}
