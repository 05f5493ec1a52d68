package postgres

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DSN builds a lib/pq connection string from the DB_* variables.
func DSN() string {
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		port,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func New() (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS gates (
		id         SERIAL PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cameras (
		id           SERIAL PRIMARY KEY,
		gate_id      INTEGER NOT NULL REFERENCES gates(id) ON DELETE CASCADE,
		name         VARCHAR(100) NOT NULL,
		rtsp_url     VARCHAR(500) NOT NULL,
		snapshot_url VARCHAR(500),
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		last_seen    TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uix_gate_camera UNIQUE (gate_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS camera_rois (
		id              SERIAL PRIMARY KEY,
		camera_id       INTEGER NOT NULL UNIQUE REFERENCES cameras(id) ON DELETE CASCADE,
		roi_x           DOUBLE PRECISION NOT NULL CHECK (roi_x >= 0),
		roi_y           DOUBLE PRECISION NOT NULL CHECK (roi_y >= 0),
		roi_w           DOUBLE PRECISION NOT NULL CHECK (roi_w > 0),
		roi_h           DOUBLE PRECISION NOT NULL CHECK (roi_h > 0),
		coordinate_type VARCHAR(20) NOT NULL DEFAULT 'normalized',
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT camera_rois_within_frame CHECK (roi_x + roi_w <= 1 AND roi_y + roi_h <= 1)
	)`,
	`CREATE TABLE IF NOT EXISTS rois (
		id          SERIAL PRIMARY KEY,
		gate_id     INTEGER NOT NULL REFERENCES gates(id) ON DELETE CASCADE,
		camera_id   INTEGER NOT NULL REFERENCES cameras(id) ON DELETE CASCADE,
		shape       VARCHAR(20) NOT NULL DEFAULT 'polygon',
		coordinates JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uix_gate_camera_roi UNIQUE (gate_id, camera_id)
	)`,
}
