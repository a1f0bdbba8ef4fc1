package handlers

import (
	"log/slog"

	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"

	websocketHub "github.com/backsoul/quizquest/pkg/websocket"
)

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// WSHandler upgrades clients and attaches them to the hub
type WSHandler struct {
	hub *websocketHub.Hub
	log *slog.Logger
}

func NewWSHandler(hub *websocketHub.Hub, log *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log.With("component", "ws")}
}

// HandleWebSocket handles GET /ws. Clients only listen; anything they send
// is discarded.
func (h *WSHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		h.hub.Register(ws)
		defer h.hub.Unregister(ws)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				h.log.Debug("websocket read ended", "err", err)
				return
			}
		}
	})

	if err != nil {
		h.log.Warn("⚠️ websocket upgrade failed", "err", err)
	}
}
