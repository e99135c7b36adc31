package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/middlewares"
)

var upgrader = websocket.Upgrader{
	// the handshake is already gated by an admin token
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveController struct {
	Hub *hub.Hub
}

func NewLiveController(h *hub.Hub) *LiveController {
	return &LiveController{Hub: h}
}

// LiveHandler -> admin websocket feed of seat, time, menu and order events
func (lc *LiveController) LiveHandler(c *gin.Context) {
	role := c.GetString(middlewares.RoleKey)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	lc.Hub.Register(ws, role)

	// The feed is one-way; reading only detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	lc.Hub.Unregister(ws)
}
