package config

import (
	"GateROI/database/postgres"
	cameraHandler "GateROI/internal/api/camera/handler"
	cameraRepository "GateROI/internal/api/camera/repository"
	cameraService "GateROI/internal/api/camera/service"
	roiHandler "GateROI/internal/api/roi/handler"
	roiRepository "GateROI/internal/api/roi/repository"
	roiService "GateROI/internal/api/roi/service"
	editorHandler "GateROI/internal/api/roi_editor/handler"
	editorService "GateROI/internal/api/roi_editor/service"
	"GateROI/internal/middleware"
	"GateROI/pkg/redis"
	"GateROI/pkg/roiclient"
	"GateROI/pkg/s3"
	"GateROI/pkg/snapshot"
	"GateROI/pkg/utils"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	grabber     snapshot.IGrabber
	roiClient   roiclient.IClient
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to postgres and applies the schema.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client is a no-op without AWS_BUCKET_NAME; reference frame uploads
// then answer 503.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, reference frame storage disabled")
			}
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithSnapshotGrabber() ServerOption {
	return func(s *Server) error {
		s.grabber = snapshot.New()
		return nil
	}
}

// WithROIClient points the editor at another instance when ROI_API_URL is
// set. Without it the editor uses the in-process services.
func WithROIClient() ServerOption {
	return func(s *Server) error {
		baseURL := os.Getenv("ROI_API_URL")
		if baseURL == "" {
			return nil
		}
		s.roiClient = roiclient.New(baseURL)
		if s.log != nil {
			s.log.WithField("base_url", baseURL).Info("ROI editor uses remote API")
		}
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Camera Domain
	cameraRepo := cameraRepository.New(s.db, s.log)
	cameraServices := cameraService.NewCameraService(s.log, cameraRepo, s.s3Client, s.grabber, s.utils)
	cameraHandlers := cameraHandler.New(s.log, s.validator, s.middleware, cameraServices)

	// ROI Domain
	roiRepo := roiRepository.New(s.db, s.log)
	roiServices := roiService.NewROIService(s.log, roiRepo, cameraServices, s.redisServer)
	roiHandlers := roiHandler.New(s.log, s.validator, s.middleware, roiServices)

	// ROI Editor
	collaborators := editorService.Local(cameraServices, roiServices)
	if s.roiClient != nil {
		collaborators = editorService.Remote(s.roiClient, s.utils)
	}
	editorServices := editorService.NewEditorService(s.log, collaborators)
	editorHandlers := editorHandler.New(s.log, s.validator, s.middleware, editorServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, cameraHandlers, roiHandlers, editorHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests and closes the database pool.
func (s *Server) Shutdown() error {
	err := s.engine.Shutdown()
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
