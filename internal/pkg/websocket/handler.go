package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/campuspay/studentbank/internal/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the app's own pages; cross-origin checks
	// happen at the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request to a websocket and subscribes it to channel
func Serve(hub *Hub, c *gin.Context, channel string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	NewClient(hub, conn, channel).Start()
}
