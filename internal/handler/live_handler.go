package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler streams the decorative live mining feed over a websocket
type LiveHandler struct {
	feed   *service.LiveFeed
	logger *zap.Logger
}

// NewLiveHandler creates a new live feed handler
func NewLiveHandler(feed *service.LiveFeed, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		feed:   feed,
		logger: logger,
	}
}

// Stream upgrades the connection and runs one independent feed simulation
// until the viewer disconnects. The feed is public and nothing is persisted.
func (h *LiveHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain control frames so close/ping from the viewer are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.feed.Run(c.Request.Context(), func(update dto.LiveUpdate) error {
		return conn.WriteJSON(update)
	})
}
