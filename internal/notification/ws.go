package notification

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/pkg/jwt"
	"hostelbooking/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub *Hub
	jwt *jwt.Service
	log logrus.FieldLogger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtService, log: log}
}

func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/bookings", h.HandleWebSocket)
}

// HandleWebSocket streams booking events to staff. Browsers cannot set
// headers on the upgrade request, so the token may come as ?token=.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Token is required")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if claims.Role != string(domain.RoleStaff) && claims.Role != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Staff access required")
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn := h.hub.register(claims.UserID, ws)
	h.log.WithField("user_id", claims.UserID).Info("dashboard connected")
	defer func() {
		h.hub.unregister(conn)
		h.log.WithField("user_id", claims.UserID).Info("dashboard disconnected")
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go conn.writePump()

	// Clients only listen; reads drive pong handling and detect close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user_id", claims.UserID).Warn("websocket read failed")
			}
			return
		}
	}
}
