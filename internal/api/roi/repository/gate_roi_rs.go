package roiRepository

import (
	"GateROI/internal/api/roi"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type GateROIDB struct {
	ID          sql.NullInt64  `db:"id"`
	GateID      sql.NullInt64  `db:"gate_id"`
	CameraID    sql.NullInt64  `db:"camera_id"`
	Shape       sql.NullString `db:"shape"`
	Coordinates []byte         `db:"coordinates"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *gateROIRepository) GetByGateAndCamera(c context.Context, gateID, cameraID int64) (entity.GateROI, error) {
	requestID := contextPkg.GetRequestID(c)
	var row GateROIDB

	argsKV := map[string]interface{}{
		"gate_id":   gateID,
		"camera_id": cameraID,
	}

	query, args, err := sqlx.Named(queryGetGateROI, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByGateAndCamera named query preparation err")
		return entity.GateROI{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.GateROI{}, roi.ErrROINotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"gate_id":    gateID,
			"camera_id":  cameraID,
			"error":      err.Error(),
		}).Error("GetByGateAndCamera execution err")
		return entity.GateROI{}, err
	}

	return makeGateROI(row)
}

func (r *gateROIRepository) Upsert(c context.Context, in entity.GateROI) (entity.GateROI, error) {
	requestID := contextPkg.GetRequestID(c)

	coordinates, err := jsoniter.Marshal(in.Coordinates)
	if err != nil {
		return entity.GateROI{}, fmt.Errorf("encode coordinates: %w", err)
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	argsKV := map[string]interface{}{
		"gate_id":     in.GateID,
		"camera_id":   in.CameraID,
		"shape":       string(in.Shape),
		"coordinates": string(coordinates),
		"created_at":  createdAt,
	}

	query, args, err := sqlx.Named(queryUpsertGateROI, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for gate ROI upsert")
		return entity.GateROI{}, err
	}
	query = r.q.Rebind(query)

	var row GateROIDB
	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"gate_id":    in.GateID,
			"camera_id":  in.CameraID,
			"error":      err.Error(),
		}).Error("Database error when upserting gate ROI")

		if pqCode(err) == pqForeignKeyViolation {
			return entity.GateROI{}, roi.ErrGateOrCameraNotFound
		}
		return entity.GateROI{}, err
	}

	return makeGateROI(row)
}

func makeGateROI(row GateROIDB) (entity.GateROI, error) {
	var coordinates [][]float64
	if len(row.Coordinates) > 0 {
		if err := jsoniter.Unmarshal(row.Coordinates, &coordinates); err != nil {
			return entity.GateROI{}, fmt.Errorf("decode coordinates: %w", err)
		}
	}

	return entity.GateROI{
		ID:          row.ID.Int64,
		GateID:      row.GateID.Int64,
		CameraID:    row.CameraID.Int64,
		Shape:       entity.Shape(row.Shape.String),
		Coordinates: coordinates,
		CreatedAt:   row.CreatedAt,
	}, nil
}
