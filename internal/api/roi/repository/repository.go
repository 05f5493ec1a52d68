package roiRepository

import (
	"GateROI/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		CameraROI: &cameraROIRepository{q: sqlExecutor, log: r.log},
		GateROI:   &gateROIRepository{q: sqlExecutor, log: r.log},
		Commit:    commitFunc,
		Rollback:  rollbackFunc,
	}, nil
}

type Client struct {
	CameraROI interface {
		GetByCameraID(c context.Context, cameraID int64) (entity.CameraROI, error)
		Upsert(c context.Context, roi entity.CameraROI) (entity.CameraROI, error)
	}

	GateROI interface {
		GetByGateAndCamera(c context.Context, gateID, cameraID int64) (entity.GateROI, error)
		Upsert(c context.Context, roi entity.GateROI) (entity.GateROI, error)
	}

	Commit   func() error
	Rollback func() error
}

type cameraROIRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type gateROIRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
