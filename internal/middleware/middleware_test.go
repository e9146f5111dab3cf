package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/metrics"
	"talib.app/backend/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(tokens *token.Manager) *gin.Engine {
	auth := NewAuthMiddleware(tokens)
	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": actor.Role})
	})
	r.GET("/owners-only", auth.RequireAuth(), auth.RequireRole(entity.RoleOwner, entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/public", auth.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": OptionalActor(c).Role})
	})
	return r
}

func issue(t *testing.T, tokens *token.Manager, id uuid.UUID, role string) string {
	signed, _, err := tokens.Generate(token.Subject{UserID: id.String(), Role: role})
	require.NoError(t, err)
	return signed
}

func do(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	r := setupRouter(tokens)
	id := uuid.New()
	signed := issue(t, tokens, id, entity.RoleStudent)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + signed, http.StatusUnauthorized},
		{"extra segment", "Bearer " + signed + " extra", http.StatusUnauthorized},
		{"bad token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid", "Bearer " + signed, http.StatusOK},
		{"valid with extra spacing", "Bearer   " + signed, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/me", tt.header)
			assert.Equal(t, tt.want, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.want == http.StatusOK {
				assert.Equal(t, id.String(), body["id"])
				assert.Equal(t, entity.RoleStudent, body["role"])
			} else {
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	r := setupRouter(tokens)

	w := do(r, "/owners-only", "Bearer "+issue(t, tokens, uuid.New(), entity.RoleStudent))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/owners-only", "Bearer "+issue(t, tokens, uuid.New(), entity.RoleOwner))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "/owners-only", "Bearer "+issue(t, tokens, uuid.New(), entity.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	r := setupRouter(tokens)

	w := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":""}`, w.Body.String())

	w = do(r, "/public", "Bearer "+issue(t, tokens, uuid.New(), entity.RoleOwner))
	assert.JSONEq(t, `{"role":"owner"}`, w.Body.String())

	w = do(r, "/public", "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":""}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop(), true))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"data":null,"message":"internal server error"}`, w.Body.String())

	dev := gin.New()
	dev.Use(Recovery(zap.NewNop(), false))
	dev.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	w = do(dev, "/panic", "")
	assert.Contains(t, w.Body.String(), "kaboom")
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, "/items/1", "")
	do(r, "/items/2", "")
	do(r, "/health", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "2xx")))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop(), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	assert.Equal(t, http.StatusOK, do(r, "/health", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "/missing", "").Code)
}
