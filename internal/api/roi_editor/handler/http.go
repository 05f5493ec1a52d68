package editorHandler

import (
	editorService "GateROI/internal/api/roi_editor/service"
	"GateROI/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EditorHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	editorService editorService.IEditorService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	es editorService.IEditorService,
) *EditorHandler {
	return &EditorHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		editorService: es,
	}
}

func (h *EditorHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	editor := srv.Group("/editor")
	editor.Post("/normalize", h.Normalize)
	editor.Use("/ws", wsMiddleware)
	editor.Get("/ws", websocket.New(h.handleEditorWebSocket))
}
