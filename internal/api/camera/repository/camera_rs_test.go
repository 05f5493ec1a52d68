package cameraRepository

import (
	"GateROI/internal/api/camera"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var cameraColumns = []string{"id", "gate_id", "name", "rtsp_url", "snapshot_url", "is_active", "last_seen", "created_at"}

func newTestClient(t *testing.T) (Client, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	client, err := New(sqlx.NewDb(raw, "postgres"), log).NewClient(false)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, mock
}

func TestGetCameraByID(t *testing.T) {
	client, mock := newTestClient(t)
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM cameras")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cameraColumns).
			AddRow(7, 2, "gate-in", "rtsp://cam/7", "http://cam/7.jpg", true, nil, created))

	cam, err := client.Camera.GetCameraByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cam.ID != 7 || cam.GateID != 2 || cam.SnapshotURL != "http://cam/7.jpg" || cam.LastSeen != nil {
		t.Fatalf("unexpected camera %+v", cam)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetCameraByID_NotFound(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cameras")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(cameraColumns))

	if _, err := client.Camera.GetCameraByID(context.Background(), 99); !errors.Is(err, camera.ErrCameraNotFound) {
		t.Fatalf("expected ErrCameraNotFound, got %v", err)
	}
}

func TestListCameras(t *testing.T) {
	client, mock := newTestClient(t)
	seen := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY gate_id, id")).
		WillReturnRows(sqlmock.NewRows(cameraColumns).
			AddRow(1, 1, "a", "rtsp://a", nil, true, seen, seen).
			AddRow(2, 1, "b", "rtsp://b", nil, false, nil, seen))

	cams, err := client.Camera.ListCameras(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cams) != 2 || cams[0].LastSeen == nil || !cams[0].LastSeen.Equal(seen) || cams[1].IsActive {
		t.Fatalf("unexpected cameras %+v", cams)
	}
}

func TestGateExists(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := client.Camera.GateExists(context.Background(), 3)
	if err != nil || !ok {
		t.Fatalf("expected gate to exist, got %v %v", ok, err)
	}
}

func TestTouchLastSeen(t *testing.T) {
	client, mock := newTestClient(t)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cameras")).
		WithArgs(now, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := client.Camera.TouchLastSeen(context.Background(), 4, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
