package editorHandler

import (
	"GateROI/internal/api/roi_editor"
	"GateROI/internal/editor"
	"GateROI/internal/middleware"
	contextPkg "GateROI/pkg/context"
	"GateROI/pkg/response"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	idleTimeout  = 5 * time.Minute
	writeTimeout = 10 * time.Second
	outboxSize   = 64
)

// conn is one operator connected to the editor. The read loop owns the
// session; fetches and saves run on their own goroutines and every write
// goes through the outbox.
type conn struct {
	h         *EditorHandler
	ws        *websocket.Conn
	requestID string
	session   *editor.Session
	outbox    chan roi_editor.ServerMessage
	done      chan struct{}
	inflight  sync.WaitGroup
}

func (h *EditorHandler) handleEditorWebSocket(ws *websocket.Conn) {
	requestID, _ := ws.Locals(middleware.RequestIDKey).(string)
	fields := logrus.Fields{"request_id": requestID}

	h.log.WithFields(fields).Info("ROI editor client connected")
	defer h.log.WithFields(fields).Info("ROI editor client disconnected")

	ws.SetPingHandler(func(data string) error {
		if err := ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	c := &conn{
		h:         h,
		ws:        ws,
		requestID: requestID,
		outbox:    make(chan roi_editor.ServerMessage, outboxSize),
		done:      make(chan struct{}),
	}
	c.session = h.editorService.NewSession(func(st editor.State) {
		c.send(roi_editor.ServerMessage{Type: roi_editor.MessageState, State: &st})
	})

	ctx, cancel := context.WithCancel(contextPkg.WithRequestID(context.Background(), requestID))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	c.send(roi_editor.ServerMessage{Type: roi_editor.MessageState, State: stateOf(c.session)})
	c.readLoop(ctx)

	cancel()
	close(c.done)
	c.inflight.Wait()
	<-writerDone
}

func stateOf(s *editor.Session) *editor.State {
	st := s.State()
	return &st
}

func (c *conn) send(msg roi_editor.ServerMessage) {
	select {
	case c.outbox <- msg:
	case <-c.done:
	}
}

func (c *conn) writeLoop() {
	for {
		select {
		case msg := <-c.outbox:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				c.h.log.WithField("request_id", c.requestID).Errorf("Error setting write deadline: %v", err)
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				c.h.log.WithField("request_id", c.requestID).Errorf("Error writing editor message: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *conn) readLoop(ctx context.Context) {
	for {
		if err := c.ws.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			c.h.log.WithField("request_id", c.requestID).Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.log.WithField("request_id", c.requestID).Errorf("ROI editor websocket error: %v", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.fail(roi_editor.ErrBadMessage, "binary frames are not accepted")
			continue
		}

		var msg roi_editor.ClientMessage
		if err := jsoniter.Unmarshal(payload, &msg); err != nil {
			c.fail(roi_editor.ErrBadMessage, err.Error())
			continue
		}

		c.dispatch(ctx, msg)
	}
}

// dispatch applies pointer events and selections inline so they keep their
// order. Fetches and saves run in the background.
func (c *conn) dispatch(ctx context.Context, msg roi_editor.ClientMessage) {
	switch msg.Type {
	case roi_editor.MessageSelectCamera:
		if msg.CameraID <= 0 {
			c.fail(roi_editor.ErrBadMessage, "camera_id must be a positive integer")
			return
		}
		load := c.session.BeginSelect(msg.CameraID, msg.GateID)
		c.background(func() {
			c.report(load.Run(ctx))
		})
	case roi_editor.MessageRefresh:
		load, err := c.session.BeginRefresh()
		if err != nil {
			c.report(err)
			return
		}
		c.background(func() {
			c.report(load.Run(ctx))
		})
	case roi_editor.MessagePress:
		c.report(c.session.Press(editor.Point{X: msg.X, Y: msg.Y}))
	case roi_editor.MessageMove:
		c.report(c.session.Move(editor.Point{X: msg.X, Y: msg.Y}))
	case roi_editor.MessageRelease:
		c.report(c.session.Release(editor.Point{X: msg.X, Y: msg.Y}))
	case roi_editor.MessageSave:
		c.background(func() {
			saved, ok, err := c.session.Save(ctx)
			if err != nil {
				c.report(err)
				return
			}
			if ok {
				c.send(roi_editor.ServerMessage{
					Type:     roi_editor.MessageSaved,
					CameraID: saved.CameraID,
					ROI:      &saved.Rect,
				})
			}
		})
	case roi_editor.MessageClear:
		c.session.Clear()
	default:
		c.fail(roi_editor.ErrUnknownMessage, msg.Type)
	}
}

func (c *conn) background(fn func()) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn()
	}()
}

// report turns a session error into an error message. Superseded loads are
// silent; the newer selection reports for itself.
func (c *conn) report(err error) {
	if err == nil || errors.Is(err, editor.ErrSuperseded) {
		return
	}

	var rejected *editor.RejectedError
	var persist *editor.PersistError
	switch {
	case errors.As(err, &rejected):
		c.send(roi_editor.ServerMessage{
			Type:    roi_editor.MessageError,
			Code:    string(rejected.Reason),
			Message: rejected.Reason.Message(),
		})
	case errors.As(err, &persist):
		c.fail(roi_editor.ErrPersistFailed, persist.Detail)
	case errors.Is(err, editor.ErrNoCamera):
		c.fail(roi_editor.ErrNoCamera, "")
	case errors.Is(err, editor.ErrNoSnapshot):
		c.fail(roi_editor.ErrNoSnapshot, "")
	case errors.Is(err, editor.ErrSaveInProgress):
		c.fail(roi_editor.ErrSaveInProgress, "")
	case editor.IsUnavailable(err):
		c.fail(roi_editor.ErrUnavailable, err.Error())
	default:
		c.h.log.WithFields(logrus.Fields{
			"request_id": c.requestID,
			"error":      err.Error(),
		}).Error("Unexpected editor error")
		c.send(roi_editor.ServerMessage{
			Type:    roi_editor.MessageError,
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		})
	}
}

func (c *conn) fail(err error, details string) {
	msg := roi_editor.ServerMessage{Type: roi_editor.MessageError, Details: details}

	var rErr *response.Error
	if errors.As(err, &rErr) {
		msg.Code = rErr.Code
		msg.Message = rErr.Err.Error()
	} else {
		msg.Message = err.Error()
	}

	c.h.log.WithFields(logrus.Fields{
		"request_id": c.requestID,
		"code":       msg.Code,
		"details":    details,
	}).Warn("ROI editor request failed")

	c.send(msg)
}
