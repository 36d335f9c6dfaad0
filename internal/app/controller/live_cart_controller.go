package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
)

// LiveCartController streams cart snapshots over a websocket.
type LiveCartController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewLiveCartController(hub *ws.Hub, allowedOrigins []string) *LiveCartController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &LiveCartController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleWebSocket
// GET /api/v1/cart/ws
func (ctrl *LiveCartController) HandleWebSocket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	owner, ok := CartOwner(c, false)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "sign in or pass cart_session")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, owner)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
