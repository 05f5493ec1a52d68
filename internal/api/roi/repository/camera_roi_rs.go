package roiRepository

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/api/roi"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type CameraROIDB struct {
	ID             sql.NullInt64   `db:"id"`
	CameraID       sql.NullInt64   `db:"camera_id"`
	X              sql.NullFloat64 `db:"roi_x"`
	Y              sql.NullFloat64 `db:"roi_y"`
	W              sql.NullFloat64 `db:"roi_w"`
	H              sql.NullFloat64 `db:"roi_h"`
	CoordinateType sql.NullString  `db:"coordinate_type"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r *cameraROIRepository) GetByCameraID(c context.Context, cameraID int64) (entity.CameraROI, error) {
	requestID := contextPkg.GetRequestID(c)
	var row CameraROIDB

	query, args, err := sqlx.Named(queryGetCameraROI, map[string]interface{}{"camera_id": cameraID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByCameraID named query preparation err")
		return entity.CameraROI{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.CameraROI{}, roi.ErrROINotConfigured
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  cameraID,
			"error":      err.Error(),
		}).Error("GetByCameraID execution err")
		return entity.CameraROI{}, err
	}

	return makeCameraROI(row), nil
}

func (r *cameraROIRepository) Upsert(c context.Context, in entity.CameraROI) (entity.CameraROI, error) {
	requestID := contextPkg.GetRequestID(c)

	coordinateType := in.CoordinateType
	if coordinateType == "" {
		coordinateType = entity.CoordinateTypeNormalized
	}
	updatedAt := in.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	argsKV := map[string]interface{}{
		"camera_id":       in.CameraID,
		"roi_x":           in.Rect.X,
		"roi_y":           in.Rect.Y,
		"roi_w":           in.Rect.W,
		"roi_h":           in.Rect.H,
		"coordinate_type": coordinateType,
		"updated_at":      updatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertCameraROI, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for camera ROI upsert")
		return entity.CameraROI{}, err
	}
	query = r.q.Rebind(query)

	var row CameraROIDB
	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"camera_id":  in.CameraID,
			"error":      err.Error(),
		}).Error("Database error when upserting camera ROI")

		switch pqCode(err) {
		case pqForeignKeyViolation:
			return entity.CameraROI{}, camera.ErrCameraNotFound
		case pqCheckViolation:
			return entity.CameraROI{}, roi.ErrInvalidROI
		}
		return entity.CameraROI{}, err
	}

	return makeCameraROI(row), nil
}

func makeCameraROI(row CameraROIDB) entity.CameraROI {
	return entity.CameraROI{
		ID:       row.ID.Int64,
		CameraID: row.CameraID.Int64,
		Rect: editor.NormalizedRect{
			X: row.X.Float64,
			Y: row.Y.Float64,
			W: row.W.Float64,
			H: row.H.Float64,
		},
		CoordinateType: row.CoordinateType.String,
		UpdatedAt:      row.UpdatedAt,
	}
}
