package cameraHandler

import (
	"GateROI/internal/api/camera"
	"GateROI/internal/entity"
	contextPkg "GateROI/pkg/context"
	"GateROI/pkg/handlerUtil"
	"GateROI/pkg/log"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func toCameraResponse(cam entity.Camera) camera.CameraResponse {
	res := camera.CameraResponse{
		ID:          cam.ID,
		GateID:      cam.GateID,
		Name:        cam.Name,
		RTSPURL:     cam.RTSPURL,
		SnapshotURL: cam.SnapshotURL,
		IsActive:    cam.IsActive,
		CreatedAt:   cam.CreatedAt.Format(time.RFC3339),
	}
	if cam.LastSeen != nil {
		seen := cam.LastSeen.Format(time.RFC3339)
		res.LastSeen = &seen
	}
	return res
}

// cameraID reads the :id route parameter.
func cameraID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("camera id must be a positive integer")
	}
	return id, nil
}

func (h *CameraHandler) ListCameras(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	cameras, err := h.cameraService.ListCameras(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_cameras")
	}

	response := camera.CameraListResponse{Cameras: make([]camera.CameraResponse, 0, len(cameras))}
	for _, cam := range cameras {
		response.Cameras = append(response.Cameras, toCameraResponse(cam))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

func (h *CameraHandler) GetCamera(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := cameraID(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	cam, err := h.cameraService.GetCamera(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_camera")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, toCameraResponse(cam))
	}
}

func (h *CameraHandler) GetSnapshot(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := cameraID(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	fresh := ctx.QueryBool("refresh", false)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"camera_id":  id,
		"refresh":    fresh,
	}).Debug("Processing snapshot request")

	snap, err := h.cameraService.GetSnapshot(c, id, fresh)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_snapshot")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
	}

	ctx.Set(fiber.HeaderContentType, snap.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	ctx.Set("X-Frame-Width", strconv.Itoa(snap.Frame.Width))
	ctx.Set("X-Frame-Height", strconv.Itoa(snap.Frame.Height))
	ctx.Set("X-Captured-At", snap.CapturedAt.UTC().Format(time.RFC3339Nano))

	return ctx.Status(fiber.StatusOK).Send(snap.Image)
}

func (h *CameraHandler) UploadReferenceFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := cameraID(ctx)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("multipart field \"image\" is required"), ctx.Path())
	}

	snap, err := h.cameraService.UploadReferenceFrame(c, id, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_reference_frame")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, camera.ReferenceFrameResponse{
			CameraID:    snap.CameraID,
			Width:       snap.Frame.Width,
			Height:      snap.Frame.Height,
			ContentType: snap.ContentType,
			CapturedAt:  snap.CapturedAt.Format(time.RFC3339),
		})
	}
}
