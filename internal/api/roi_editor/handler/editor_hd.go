package editorHandler

import (
	"GateROI/internal/api/roi_editor"
	"GateROI/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
)

func (h *EditorHandler) Normalize(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req roi_editor.NormalizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.editorService.Normalize(req))
}
