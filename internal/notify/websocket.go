package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"givetrack/internal/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebsocketHandler upgrades requests to a persistent connection and streams
// every hub event to the client as a JSON text frame. Clients send nothing
// meaningful; inbound frames are read only to notice the peer going away.
type WebsocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func NewWebsocketHandler(hub *Hub, logger *log.Logger) *WebsocketHandler {
	if logger == nil {
		logger = log.Nop()
	}
	return &WebsocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may connect, same as the REST surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.WithComponent(log.ComponentNotify),
	}
}

func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err.Error())
		return
	}

	sub := h.hub.Subscribe()
	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

func (h *WebsocketHandler) readLoop(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read error", log.FieldSessionID, sub.ID, log.FieldError, err.Error())
			}
			return
		}
	}
}

func (h *WebsocketHandler) writeLoop(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped the session, e.g. at shutdown.
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("Websocket write failed", log.FieldSessionID, sub.ID, log.FieldError, err.Error())
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
