package editor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeSnapshots struct {
	mu     sync.Mutex
	frames map[int64]Frame
	gates  map[int64]chan struct{}
	errs   map[int64]error
	calls  map[int64]int
	fresh  []bool
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{
		frames: map[int64]Frame{},
		gates:  map[int64]chan struct{}{},
		errs:   map[int64]error{},
		calls:  map[int64]int{},
	}
}

func (f *fakeSnapshots) FetchSnapshot(ctx context.Context, cameraID int64, fresh bool) (Snapshot, error) {
	f.mu.Lock()
	f.calls[cameraID]++
	f.fresh = append(f.fresh, fresh)
	gate := f.gates[cameraID]
	err := f.errs[cameraID]
	frame := f.frames[cameraID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{CameraID: cameraID, Image: []byte("img"), ContentType: "image/jpeg", Frame: frame}, nil
}

func (f *fakeSnapshots) called(cameraID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cameraID]
}

type detailErr struct{ msg string }

func (e detailErr) Error() string  { return "store: " + e.msg }
func (e detailErr) Detail() string { return e.msg }

type fakeStore struct {
	mu        sync.Mutex
	rois      map[int64]NormalizedRect
	fetchErr  error
	fetchGate chan struct{}
	saveErr   error
	saveGate  chan struct{}
	saves     []SaveRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{rois: map[int64]NormalizedRect{}}
}

func (f *fakeStore) FetchROI(ctx context.Context, cameraID int64) (NormalizedRect, bool, error) {
	f.mu.Lock()
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return NormalizedRect{}, false, f.fetchErr
	}
	r, ok := f.rois[cameraID]
	return r, ok, nil
}

func (f *fakeStore) SaveROI(ctx context.Context, req SaveRequest) (NormalizedRect, error) {
	f.mu.Lock()
	f.saves = append(f.saves, req)
	gate := f.saveGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return NormalizedRect{}, f.saveErr
	}
	f.rois[req.CameraID] = req.Rect
	return req.Rect, nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func loadedSession(t *testing.T, frame Frame, store *fakeStore) *Session {
	t.Helper()
	snaps := newFakeSnapshots()
	snaps.frames[1] = frame
	s := NewSession(discardLogger(), snaps, store)
	if err := s.SelectCamera(context.Background(), 1, 0); err != nil {
		t.Fatalf("select camera: %v", err)
	}
	return s
}

func TestSession_StaleSnapshotIsDiscarded(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 640, Height: 480}
	snaps.frames[2] = Frame{Width: 1280, Height: 720}
	slow := make(chan struct{})
	snaps.gates[1] = slow

	s := NewSession(discardLogger(), snaps, newFakeStore())

	first := make(chan error, 1)
	go func() { first <- s.SelectCamera(context.Background(), 1, 0) }()
	waitFor(t, time.Second, func() bool { return snaps.called(1) == 1 })

	if err := s.SelectCamera(context.Background(), 2, 0); err != nil {
		t.Fatalf("select camera 2: %v", err)
	}
	close(slow)

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first selection to be superseded, got %v", err)
	}

	snap, ok := s.Snapshot()
	if !ok || snap.CameraID != 2 {
		t.Fatalf("expected camera 2 snapshot, got %+v (ok=%v)", snap, ok)
	}
	st := s.State()
	if st.CameraID != 2 || st.Frame == nil || st.Frame.Width != 1280 {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Loading {
		t.Fatalf("expected loading to be finished")
	}
}

func TestSession_SeedsExistingROI(t *testing.T) {
	store := newFakeStore()
	store.rois[1] = NormalizedRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)

	st := s.State()
	if st.Existing == nil || st.Rect == nil {
		t.Fatalf("expected seeded rectangle, got %+v", st)
	}
	if got := st.Rect.Bounds(); got.Min.X != 80 || got.Min.Y != 60 || got.Dx() != 160 || got.Dy() != 120 {
		t.Fatalf("unexpected seeded bounds %v", got)
	}
}

func TestSession_NoExistingROI(t *testing.T) {
	s := loadedSession(t, Frame{Width: 800, Height: 600}, newFakeStore())
	st := s.State()
	if st.Rect != nil || st.Existing != nil {
		t.Fatalf("expected empty rectangle, got %+v", st)
	}
	if st.Gesture != "idle" {
		t.Fatalf("expected idle, got %s", st.Gesture)
	}
}

func TestSession_ROIFetchErrorTreatedAsNone(t *testing.T) {
	store := newFakeStore()
	store.fetchErr = errors.New("connection reset")
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)
	if st := s.State(); st.Existing != nil || st.Frame == nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSession_SnapshotFailure(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.errs[3] = errors.New("camera offline")
	s := NewSession(discardLogger(), snaps, newFakeStore())

	err := s.SelectCamera(context.Background(), 3, 0)
	if !IsUnavailable(err) {
		t.Fatalf("expected snapshot unavailable, got %v", err)
	}
	st := s.State()
	if st.Frame != nil || st.SnapshotError == "" {
		t.Fatalf("expected no frame and an error, got %+v", st)
	}
	if err := s.Press(Point{X: 1, Y: 1}); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSession_ZeroFrameIsUnavailable(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{}
	s := NewSession(discardLogger(), snaps, newFakeStore())
	if err := s.SelectCamera(context.Background(), 1, 0); !IsUnavailable(err) {
		t.Fatalf("expected snapshot unavailable, got %v", err)
	}
}

func TestSession_DrawGesture(t *testing.T) {
	s := loadedSession(t, Frame{Width: 800, Height: 600}, newFakeStore())
	_ = s.Press(Point{X: 50, Y: 50})
	_ = s.Move(Point{X: 30, Y: 30})
	if st := s.State(); st.Gesture != "drawing" {
		t.Fatalf("expected drawing, got %s", st.Gesture)
	}
	_ = s.Release(Point{X: 10, Y: 20})

	st := s.State()
	want := PixelRect{X: 10, Y: 20, Width: 40, Height: 30}
	if st.Rect == nil || *st.Rect != want {
		t.Fatalf("expected %+v, got %+v", want, st.Rect)
	}
}

func TestSession_SaveWithoutRectIsNoop(t *testing.T) {
	store := newFakeStore()
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)

	_, ok, err := s.Save(context.Background())
	if err != nil || ok {
		t.Fatalf("expected no-op save, got ok=%v err=%v", ok, err)
	}
	if store.saveCount() != 0 {
		t.Fatalf("expected no store call")
	}

	// no camera at all
	empty := NewSession(discardLogger(), newFakeSnapshots(), store)
	if _, ok, err := empty.Save(context.Background()); err != nil || ok {
		t.Fatalf("expected no-op save, got ok=%v err=%v", ok, err)
	}
}

func TestSession_SaveRejectedBeforeStoreCall(t *testing.T) {
	store := newFakeStore()
	s := loadedSession(t, Frame{Width: 100, Height: 100}, store)
	_ = s.Press(Point{X: 90, Y: 10})
	_ = s.Release(Point{X: 110, Y: 20})

	_, ok, err := s.Save(context.Background())
	var rejected *RejectedError
	if !errors.As(err, &rejected) || rejected.Reason != ReasonExceedsEdge {
		t.Fatalf("expected exceeds-edge rejection, got %v", err)
	}
	if ok || store.saveCount() != 0 {
		t.Fatalf("expected no persistence call")
	}
}

func TestSession_SaveDegenerateClick(t *testing.T) {
	store := newFakeStore()
	s := loadedSession(t, Frame{Width: 100, Height: 100}, store)
	_ = s.Press(Point{X: 10, Y: 10})
	_ = s.Release(Point{X: 10, Y: 10})

	_, _, err := s.Save(context.Background())
	var rejected *RejectedError
	if !errors.As(err, &rejected) || rejected.Reason != ReasonDegenerate {
		t.Fatalf("expected degenerate rejection, got %v", err)
	}
}

func TestSession_SaveSuccessUpdatesExisting(t *testing.T) {
	store := newFakeStore()
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)
	s.gateID = 7
	_ = s.Press(Point{X: 80, Y: 60})
	_ = s.Release(Point{X: 240, Y: 180})

	saved, ok, err := s.Save(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected save, got ok=%v err=%v", ok, err)
	}
	if saved.CameraID != 1 || saved.GateID != 7 {
		t.Fatalf("unexpected saved camera %+v", saved)
	}
	stored := saved.Rect
	if !approx(stored.X, 0.1) || !approx(stored.W, 0.2) {
		t.Fatalf("unexpected stored rect %+v", stored)
	}
	st := s.State()
	if st.Existing == nil || *st.Existing != stored {
		t.Fatalf("expected existing to be the stored rect, got %+v", st.Existing)
	}
	if st.Saving {
		t.Fatalf("expected saving to be cleared")
	}
	req := store.saves[0]
	if req.CameraID != 1 || req.GateID != 7 || req.Frame != (Frame{Width: 800, Height: 600}) {
		t.Fatalf("unexpected save request %+v", req)
	}

	// idempotent: saving again stores the same rect
	again, _, err := s.Save(context.Background())
	if err != nil || again.Rect != stored {
		t.Fatalf("expected identical second save, got %+v err=%v", again, err)
	}
}

func TestSession_SaveFailureKeepsLocalState(t *testing.T) {
	store := newFakeStore()
	store.rois[1] = NormalizedRect{X: 0.5, Y: 0.5, W: 0.1, H: 0.1}
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)
	store.saveErr = detailErr{msg: "camera is locked for maintenance"}

	_ = s.Press(Point{X: 10, Y: 10})
	_ = s.Release(Point{X: 100, Y: 100})
	before := s.State()

	_, ok, err := s.Save(context.Background())
	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if perr.Detail != "camera is locked for maintenance" {
		t.Fatalf("expected server detail, got %q", perr.Detail)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}

	after := s.State()
	if *after.Rect != *before.Rect || *after.Existing != *before.Existing {
		t.Fatalf("expected local state unchanged: before=%+v after=%+v", before, after)
	}

	store.saveErr = errors.New("boom")
	_, _, err = s.Save(context.Background())
	if !errors.As(err, &perr) || perr.Detail != genericPersistDetail {
		t.Fatalf("expected generic detail, got %v", err)
	}
}

func TestSession_SaveWhileSaving(t *testing.T) {
	store := newFakeStore()
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)
	_ = s.Press(Point{X: 10, Y: 10})
	_ = s.Release(Point{X: 100, Y: 100})

	gate := make(chan struct{})
	store.mu.Lock()
	store.saveGate = gate
	store.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Save(context.Background())
		done <- err
	}()
	waitFor(t, time.Second, func() bool { return s.State().Saving })

	if _, _, err := s.Save(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("expected ErrSaveInProgress, got %v", err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if store.saveCount() != 1 {
		t.Fatalf("expected exactly one store call, got %d", store.saveCount())
	}
}

func TestSession_SaveFinishingAfterCameraSwitch(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 800, Height: 600}
	snaps.frames[2] = Frame{Width: 800, Height: 600}
	store := newFakeStore()
	s := NewSession(discardLogger(), snaps, store)
	if err := s.SelectCamera(context.Background(), 1, 0); err != nil {
		t.Fatalf("select camera 1: %v", err)
	}
	_ = s.Press(Point{X: 80, Y: 60})
	_ = s.Release(Point{X: 240, Y: 180})

	gate := make(chan struct{})
	store.mu.Lock()
	store.saveGate = gate
	store.mu.Unlock()

	type result struct {
		saved Saved
		ok    bool
		err   error
	}
	done := make(chan result, 1)
	go func() {
		saved, ok, err := s.Save(context.Background())
		done <- result{saved, ok, err}
	}()
	waitFor(t, time.Second, func() bool { return store.saveCount() == 1 })

	if err := s.SelectCamera(context.Background(), 2, 0); err != nil {
		t.Fatalf("select camera 2: %v", err)
	}
	close(gate)

	res := <-done
	if res.err != nil || !res.ok || res.saved.CameraID != 1 {
		t.Fatalf("expected camera 1 save, got %+v", res)
	}

	st := s.State()
	if st.CameraID != 2 || st.Existing != nil {
		t.Fatalf("camera 2 must not pick up camera 1's rect, got %+v", st)
	}
	if st.Saving {
		t.Fatalf("expected saving to be cleared")
	}
	if _, ok := store.rois[1]; !ok {
		t.Fatalf("expected camera 1 rect to be persisted")
	}
}

func TestSession_BeginSelectOrdersSelections(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 640, Height: 480}
	snaps.frames[2] = Frame{Width: 1280, Height: 720}
	s := NewSession(discardLogger(), snaps, newFakeStore())

	first := s.BeginSelect(1, 0)
	second := s.BeginSelect(2, 0)
	if st := s.State(); st.CameraID != 2 || !st.Loading || st.Generation != 2 {
		t.Fatalf("expected camera 2 recorded before any fetch, got %+v", st)
	}

	// camera 2 fetches first, the older selection arrives last
	if err := second.Run(context.Background()); err != nil {
		t.Fatalf("run camera 2: %v", err)
	}
	if err := first.Run(context.Background()); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first selection to be superseded, got %v", err)
	}

	st := s.State()
	if st.CameraID != 2 || st.Frame == nil || st.Frame.Width != 1280 || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSession_ClearIsLocal(t *testing.T) {
	store := newFakeStore()
	store.rois[1] = NormalizedRect{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}
	s := loadedSession(t, Frame{Width: 800, Height: 600}, store)

	s.Clear()
	st := s.State()
	if st.Rect != nil || st.Existing != nil {
		t.Fatalf("expected cleared state, got %+v", st)
	}
	if store.saveCount() != 0 {
		t.Fatalf("clear must not persist")
	}
	if _, ok := store.rois[1]; !ok {
		t.Fatalf("server side ROI must be untouched")
	}
}

func TestSession_CameraSwitchDiscardsRect(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 800, Height: 600}
	snaps.frames[2] = Frame{Width: 800, Height: 600}
	s := NewSession(discardLogger(), snaps, newFakeStore())
	_ = s.SelectCamera(context.Background(), 1, 0)
	_ = s.Press(Point{X: 10, Y: 10})
	_ = s.Move(Point{X: 50, Y: 50})

	if err := s.SelectCamera(context.Background(), 2, 0); err != nil {
		t.Fatalf("select camera 2: %v", err)
	}
	st := s.State()
	if st.Rect != nil || st.Gesture != "idle" || st.Generation != 2 {
		t.Fatalf("expected fresh idle session, got %+v", st)
	}
}

func TestSession_DrawingBeforeROIArrivesIsKept(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 800, Height: 600}
	store := newFakeStore()
	store.rois[1] = NormalizedRect{X: 0.5, Y: 0.5, W: 0.1, H: 0.1}
	gate := make(chan struct{})
	store.fetchGate = gate

	s := NewSession(discardLogger(), snaps, store)
	done := make(chan error, 1)
	go func() { done <- s.SelectCamera(context.Background(), 1, 0) }()
	waitFor(t, time.Second, func() bool { return s.State().Frame != nil })

	_ = s.Press(Point{X: 10, Y: 10})
	_ = s.Release(Point{X: 60, Y: 40})
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("select: %v", err)
	}

	st := s.State()
	want := PixelRect{X: 10, Y: 10, Width: 50, Height: 30}
	if st.Rect == nil || *st.Rect != want {
		t.Fatalf("expected operator rect %+v, got %+v", want, st.Rect)
	}
	if st.Existing == nil {
		t.Fatalf("expected existing ROI to be cached")
	}
}

func TestSession_RefreshRequestsFreshSnapshot(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[4] = Frame{Width: 10, Height: 10}
	s := NewSession(discardLogger(), snaps, newFakeStore())

	if err := s.Refresh(context.Background()); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera, got %v", err)
	}
	_ = s.SelectCamera(context.Background(), 4, 0)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(snaps.fresh) != 2 || snaps.fresh[0] || !snaps.fresh[1] {
		t.Fatalf("unexpected fresh flags %v", snaps.fresh)
	}
}

func TestSession_OnChangeObservesUpdates(t *testing.T) {
	snaps := newFakeSnapshots()
	snaps.frames[1] = Frame{Width: 10, Height: 10}
	var mu sync.Mutex
	var seen []State
	s := NewSession(discardLogger(), snaps, newFakeStore(), WithOnChange(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	}), WithFetchTimeout(time.Second))

	_ = s.SelectCamera(context.Background(), 1, 0)
	_ = s.Press(Point{X: 1, Y: 1})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 3 {
		t.Fatalf("expected several notifications, got %d", len(seen))
	}
	if !seen[0].Loading {
		t.Fatalf("expected first notification to report loading")
	}
	if seen[len(seen)-1].Gesture != "drawing" {
		t.Fatalf("expected last notification after press, got %+v", seen[len(seen)-1])
	}
}
