package notification

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain"
	"carrental/internal/pkg/jwt"
	"carrental/internal/pkg/logger"
)

func TestSendToOfflineUser(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.SendToUser(1, "hello"))
	assert.False(t, hub.IsOnline(1))
}

func TestWebSocketReceivesPublishedNotification(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	defer hub.Close()
	jwtSvc := jwt.New("test-secret", time.Hour)
	svc := &Service{hub: hub, log: logger.NewNoop()}
	h := NewHandler(svc, hub, jwtSvc, logger.NewNoop(), nil)

	r := gin.New()
	h.RegisterWebSocket(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwtSvc.GenerateToken(7, "user")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, 2*time.Second, 10*time.Millisecond)

	svc.Publish(&domain.Notification{ID: 1, UserID: 7, Type: domain.NotifRentalConfirmed, Title: "Rental confirmed"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "notification", ev.Type)
	require.NotNil(t, ev.Notification)
	assert.Equal(t, domain.NotifRentalConfirmed, ev.Notification.Type)
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	h := NewHandler(&Service{hub: hub, log: logger.NewNoop()}, hub, jwt.New("s", time.Hour), logger.NewNoop(), nil)
	r := gin.New()
	h.RegisterWebSocket(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
