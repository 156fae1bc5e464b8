package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/utils"
)

type LiveController struct {
	Hub      *live.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts websocket handshakes from the configured
// origins only; "*" allows any.
func NewLiveController(hub *live.Hub, allowedOrigins []string) *LiveController {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &LiveController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || allowed[strings.TrimRight(origin, "/")]
			},
		},
	}
}

// Stream -> endpoint WebSocket untuk dashboard live
func (lc *LiveController) Stream(c *gin.Context) {
	claims := middlewares.CurrentClaims(c)
	if claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed for %s: %v", claims.Username, err)
		return
	}

	// audit entries about users only go to admins, as on /api/logs
	admin := middlewares.CurrentCapability(c) == middlewares.CapabilityAdmin
	lc.Hub.Register(ws, claims.Username, admin)

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	lc.Hub.Unregister(ws)
}
