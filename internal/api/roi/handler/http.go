package roiHandler

import (
	roiService "GateROI/internal/api/roi/service"
	"GateROI/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ROIHandler struct {
	log        *logrus.Logger
	validator  *validator.Validate
	middleware middleware.Middleware
	roiService roiService.IROIService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	roiService roiService.IROIService,
) *ROIHandler {
	return &ROIHandler{
		log:        log,
		validator:  validate,
		middleware: middleware,
		roiService: roiService,
	}
}

func (h *ROIHandler) Start(srv fiber.Router) {
	srv.Get("/cameras/:id/roi", h.GetCameraROI)
	srv.Put("/cameras/:id/roi", h.middleware.NewRateLimiter, h.SaveCameraROI)

	rois := srv.Group("/rois")
	rois.Post("", h.middleware.NewRateLimiter, h.UpsertGateROI)
	rois.Get("/:gate_id/:camera_id", h.GetGateROI)
}
