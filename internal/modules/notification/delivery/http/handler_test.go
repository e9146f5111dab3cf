package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talib.app/backend/pkg/response"
)

func wsRouter(redisClient *redis.Client, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewNotificationHandler(nil, redisClient, []string{"http://localhost:5173"}, zap.NewNop())

	r := gin.New()
	r.GET("/notifications/ws", func(c *gin.Context) {
		if userID != "" {
			c.Set(response.ContextUserID, userID)
		}
		c.Next()
	}, h.HandleWebSocket)
	return r
}

func serveWS(t *testing.T, r *gin.Engine) (int, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/notifications/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleWebSocket_RequiresUser(t *testing.T) {
	code, body := serveWS(t, wsRouter(nil, ""))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])
}

func TestHandleWebSocket_UnavailableWithoutRedis(t *testing.T) {
	code, body := serveWS(t, wsRouter(nil, uuid.NewString()))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "live notifications are unavailable", body["message"])
}

func TestHandleWebSocket_UnavailableWhenSubscribeFails(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	code, body := serveWS(t, wsRouter(client, uuid.NewString()))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "live notifications are unavailable", body["message"])
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/notifications/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
