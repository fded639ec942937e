package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"pluginhost/host"
	"pluginhost/internal/protocol"
)

const writeTimeout = 5 * time.Second

// controlHandler serves the control/reply surface over a websocket
// connection, one connection at a time, grounded on
// server/internal/ws/handler.go's upgrade-then-serve shape.
//
// Only one connection is tracked because a Plugin Host Instance has a
// single Reply destination (spec.md §6); unlike the teacher's multi-user
// chat room, there is no fan-out here.
type controlHandler struct {
	// incoming carries Messages from the websocket-reading goroutine to the
	// engine thread, which alone may call Instance.Dispatch (spec.md §5).
	// Full means the engine thread has fallen behind; dropped and logged
	// rather than blocking the network read loop.
	incoming chan protocol.Message
	upgrader websocket.Upgrader

	mu   sync.Mutex
	conn *websocket.Conn
}

func newControlHandler(queueCapacity int) *controlHandler {
	return &controlHandler{
		incoming: make(chan protocol.Message, queueCapacity),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// drain dispatches every Message currently queued, without blocking. Call
// once per audio block from the engine thread, the same cadence as
// Instance.DrainReplies.
func (h *controlHandler) drain(inst *host.Instance) {
	for {
		select {
		case msg := <-h.incoming:
			inst.Dispatch(msg)
		default:
			return
		}
	}
}

// reply is wired as the Instance's Config.Reply callback. It is called on
// the engine thread (from DrainReplies/Next's inline delivery paths), so it
// must never block on network I/O for long — sendReply applies a write
// deadline for exactly that reason.
func (h *controlHandler) reply(msg protocol.Message) {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	if conn != nil {
		sendReply(conn, msg)
	}
}

// Register binds the control websocket route on an Echo router.
func (h *controlHandler) Register(e *echo.Echo) {
	e.GET("/control", h.HandleWebSocket)
}

func (h *controlHandler) HandleWebSocket(c echo.Context) error {
	remoteAddr := c.RealIP()
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("control upgrade failed", "remote", remoteAddr, "err", err)
		return fmt.Errorf("upgrade control websocket: %w", err)
	}
	h.serveConn(conn, remoteAddr)
	return nil
}

func (h *controlHandler) serveConn(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()
	conn.SetReadLimit(1 << 24) // large enough for a streamed bank upload chunk

	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()
	slog.Info("control connected", "remote", remoteAddr)
	defer func() {
		h.mu.Lock()
		if h.conn == conn {
			h.conn = nil
		}
		h.mu.Unlock()
		slog.Info("control disconnected", "remote", remoteAddr)
	}()

	for {
		var in protocol.Message
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("control unexpected close", "remote", remoteAddr, "err", err)
			}
			return
		}
		slog.Debug("control recv", "remote", remoteAddr, "type", in.Type)
		select {
		case h.incoming <- in:
		default:
			slog.Warn("control incoming queue full, dropping message", "type", in.Type)
		}
	}
}

// sendReply writes one reply Message to conn, dropping it with a log line
// on a slow or dead connection rather than blocking the engine thread.
func sendReply(conn *websocket.Conn, msg protocol.Message) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		slog.Debug("control reply write failed", "type", msg.Type, "err", err)
	}
}
