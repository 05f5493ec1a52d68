package roiHandler

import (
	"GateROI/internal/api/roi"
	"GateROI/internal/editor"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"GateROI/pkg/handlerUtil"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func toCameraROIResponse(stored entity.CameraROI) roi.CameraROIResponse {
	return roi.CameraROIResponse{
		ID:             stored.ID,
		CameraID:       stored.CameraID,
		X:              stored.Rect.X,
		Y:              stored.Rect.Y,
		W:              stored.Rect.W,
		H:              stored.Rect.H,
		CoordinateType: stored.CoordinateType,
		UpdatedAt:      stored.UpdatedAt.Format(time.RFC3339),
	}
}

func toGateROIResponse(stored entity.GateROI) roi.GateROIResponse {
	return roi.GateROIResponse{
		ID:          stored.ID,
		GateID:      stored.GateID,
		CameraID:    stored.CameraID,
		Shape:       string(stored.Shape),
		Coordinates: stored.Coordinates,
		CreatedAt:   stored.CreatedAt.Format(time.RFC3339),
	}
}

func positiveParam(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

func (h *ROIHandler) GetCameraROI(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := positiveParam(ctx, "id")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	stored, err := h.roiService.GetCameraROI(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_camera_roi")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, toCameraROIResponse(stored))
	}
}

func (h *ROIHandler) SaveCameraROI(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := positiveParam(ctx, "id")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	var req roi.UpsertCameraROIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"camera_id":  id,
	}).Debug("Processing ROI save request")

	stored, err := h.roiService.SaveCameraROI(c, editor.SaveRequest{
		CameraID: id,
		Rect:     editor.NormalizedRect{X: *req.X, Y: *req.Y, W: *req.W, H: *req.H},
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "save_camera_roi")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, toCameraROIResponse(stored))
	}
}

func (h *ROIHandler) UpsertGateROI(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req roi.CreateGateROIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	stored, err := h.roiService.UpsertGateROI(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upsert_gate_roi")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, toGateROIResponse(stored))
	}
}

func (h *ROIHandler) GetGateROI(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	gateID, err := positiveParam(ctx, "gate_id")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	cameraID, err := positiveParam(ctx, "camera_id")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	stored, err := h.roiService.GetGateROI(c, gateID, cameraID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_gate_roi")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, toGateROIResponse(stored))
	}
}
