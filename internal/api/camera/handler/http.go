package cameraHandler

import (
	cameraService "GateROI/internal/api/camera/service"
	"GateROI/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CameraHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	cameraService cameraService.ICameraService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cameraService cameraService.ICameraService,
) *CameraHandler {
	return &CameraHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		cameraService: cameraService,
	}
}

func (h *CameraHandler) Start(srv fiber.Router) {
	cameras := srv.Group("/cameras")

	cameras.Get("", h.ListCameras)
	cameras.Get("/:id", h.GetCamera)
	cameras.Get("/:id/snapshot", h.GetSnapshot)
	cameras.Post("/:id/snapshot", h.middleware.NewRateLimiter, h.UploadReferenceFrame)
}
