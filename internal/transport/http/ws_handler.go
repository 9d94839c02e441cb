package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
)

// WSHandler upgrades authorized room requests and hands them to a core.Session.
type WSHandler struct {
	chat      *chat.Service
	registry  *core.Registry
	publisher *core.Publisher
	cfg       core.SessionConfig
	readLimit int64
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(svc *chat.Service, registry *core.Registry, publisher *core.Publisher, cfg core.SessionConfig, readLimit int64, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		chat:      svc,
		registry:  registry,
		publisher: publisher,
		cfg:       cfg,
		readLimit: readLimit,
		log:       logger,
	}
}

// Serve joins the caller to a room over a websocket.
// GET /ws/chat/:room_id
func (h *WSHandler) Serve(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}
	if _, err := h.chat.Authorize(c.Request.Context(), roomID, uid); err != nil {
		respondError(c, h.log, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	wc := &wsConn{id: uuid.NewString(), conn: conn}
	session := core.NewSession(roomID, uid, wc, h.registry, h.publisher, h.cfg, h.log)
	err = session.Run(c.Request.Context())

	status, reason := closeStatus(err)
	if status == websocket.StatusInternalError {
		h.log.Warn().Err(err).Str("conn_id", wc.id).Msg("ws connection closed with error")
	}
	_ = conn.Close(status, reason)
}

// closeStatus maps the error that ended a session to a close frame.
func closeStatus(err error) (websocket.StatusCode, string) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return websocket.StatusGoingAway, "idle timeout"
	}
	switch s := websocket.CloseStatus(err); s {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return s, "closing"
	case websocket.StatusMessageTooBig:
		return s, "message too big"
	case -1:
	default:
		return s, "closing"
	}
	return websocket.StatusInternalError, "internal error"
}

// wsConn adapts a websocket connection to core.Conn.
type wsConn struct {
	id   string
	conn *websocket.Conn
}

func (w *wsConn) ID() string { return w.id }

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	return data, err
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.conn.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close(reason string) error {
	return w.conn.Close(websocket.StatusGoingAway, reason)
}
