package cameraRepository

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CameraDB struct {
	ID          sql.NullInt64  `db:"id"`
	GateID      sql.NullInt64  `db:"gate_id"`
	Name        sql.NullString `db:"name"`
	RTSPURL     sql.NullString `db:"rtsp_url"`
	SnapshotURL sql.NullString `db:"snapshot_url"`
	IsActive    sql.NullBool   `db:"is_active"`
	LastSeen    sql.NullTime   `db:"last_seen"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *cameraRepository) GetCameraByID(c context.Context, id int64) (entity.Camera, error) {
	requestID := contextPkg.GetRequestID(c)
	var cam CameraDB

	query, args, err := sqlx.Named(queryGetCameraByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCameraByID named query preparation err")
		return entity.Camera{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&cam); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"camera_id":  id,
			}).Warn("GetCameraByID no rows found")
			return entity.Camera{}, camera.ErrCameraNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCameraByID execution err")
		return entity.Camera{}, err
	}

	return r.makeCamera(cam), nil
}

func (r *cameraRepository) ListCameras(c context.Context) ([]entity.Camera, error) {
	requestID := contextPkg.GetRequestID(c)
	var cams []CameraDB

	if err := r.q.SelectContext(c, &cams, queryListCameras); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListCameras execution err")
		return nil, err
	}

	result := make([]entity.Camera, 0, len(cams))
	for _, cam := range cams {
		result = append(result, r.makeCamera(cam))
	}

	return result, nil
}

func (r *cameraRepository) GateExists(c context.Context, gateID int64) (bool, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryGateExists, map[string]interface{}{"id": gateID})
	if err != nil {
		return false, err
	}
	query = r.q.Rebind(query)

	var exists bool
	if err := r.q.QueryRowxContext(c, query, args...).Scan(&exists); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"gate_id":    gateID,
			"error":      err.Error(),
		}).Error("GateExists execution err")
		return false, err
	}

	return exists, nil
}

func (r *cameraRepository) TouchLastSeen(c context.Context, id int64, seenAt time.Time) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":        id,
		"last_seen": seenAt,
	}

	query, args, err := sqlx.Named(queryTouchLastSeen, argsKV)
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  id,
			"error":      err.Error(),
		}).Error("TouchLastSeen execution err")
		return err
	}

	return nil
}

func (r *cameraRepository) makeCamera(cam CameraDB) entity.Camera {
	result := entity.Camera{
		ID:          cam.ID.Int64,
		GateID:      cam.GateID.Int64,
		Name:        cam.Name.String,
		RTSPURL:     cam.RTSPURL.String,
		SnapshotURL: cam.SnapshotURL.String,
		IsActive:    cam.IsActive.Bool,
		CreatedAt:   cam.CreatedAt,
	}
	if cam.LastSeen.Valid {
		seen := cam.LastSeen.Time
		result.LastSeen = &seen
	}
	return result
}
