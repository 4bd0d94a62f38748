package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"carrental/internal/pkg/jwt"
	"carrental/internal/pkg/logger"
	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	service  *Service
	hub      *Hub
	jwt      *jwt.Service
	log      logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler accepts websocket upgrades from the given origins; an empty list allows any origin.
func NewHandler(service *Service, hub *Hub, jwtService *jwt.Service, log logger.Logger, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		service: service,
		hub:     hub,
		jwt:     jwtService,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.GET("", h.GetNotifications)
		g.PATCH("/:id/read", h.MarkAsRead)
		g.PATCH("/read-all", h.MarkAllAsRead)
	}
}

// RegisterWebSocket mounts GET /ws/notifications?token=JWT. Browsers cannot
// set headers on a websocket handshake, so the token travels in the query.
func (h *Handler) RegisterWebSocket(r gin.IRouter) {
	r.GET("/ws/notifications", h.HandleWebSocket)
}

func (h *Handler) GetNotifications(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	list, unread, err := h.service.GetUserNotifications(c.Request.Context(), userID, c.Query("unread") == "true", limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	n, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "all_read", "updated": n})
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "token query parameter is required")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token")
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return
	}

	h.hub.Register(userID, conn)
	h.log.Debug("websocket connected", map[string]interface{}{"user_id": userID})
	defer func() {
		h.hub.Unregister(userID, conn)
		h.log.Debug("websocket disconnected", map[string]interface{}{"user_id": userID})
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(userID, conn, done)

	// clients only listen; reading drives pong handling and close detection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", map[string]interface{}{"user_id": userID, "error": err.Error()})
			}
			return
		}
	}
}

func (h *Handler) pingLoop(userID int64, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.hub.Ping(userID, conn); err != nil {
				return
			}
		}
	}
}
