package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/config"
	"talib.app/backend/internal/entity"
	searchService "talib.app/backend/internal/modules/search/service"
	"talib.app/backend/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	srv, db := buildServer(t)
	return srv.Handler(), db
}

func buildServer(t *testing.T) (*Server, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	srv, err := NewServer(Deps{
		Config: &config.Config{
			AppEnv:         "test",
			AppVersion:     "1.2.3",
			Port:           "0",
			AllowedOrigins: []string{"http://localhost:5173"},
			JWTSecret:      "test-secret",
			JWTTTL:         time.Hour,
			MaxUploadSize:  5 << 20,
		},
		DB:       db,
		Search:   searchService.NewNoopSearchService(),
		Storage:  testutil.NewMemoryStorage(),
		Registry: prometheus.NewRegistry(),
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	return srv, db
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func register(t *testing.T, h http.Handler, role, email string) string {
	body := map[string]string{"role": role, "email": email, "password": "password123"}
	if role == entity.RoleStudent {
		body["first_name"] = "Sari"
	} else {
		body["full_name"] = "Budi Santoso"
	}

	w, env := do(t, h, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())
}

func TestShutdownBeforeRun(t *testing.T) {
	srv, _ := buildServer(t)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, srv.Run())
}

func TestRunThenShutdown(t *testing.T) {
	srv, _ := buildServer(t)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "route not found", env.Message)

	w, env = do(t, h, http.MethodPatch, "/housing", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "method not allowed", env.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodGet, "/items", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "talib_http_requests_total")
}

func TestRegisterDuplicateAndLogin(t *testing.T) {
	h, db := newTestServer(t)
	register(t, h, entity.RoleStudent, "sari@uni.edu")

	w, env := do(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"role": "student", "email": "sari@uni.edu", "password": "password123", "first_name": "Sari",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	var count int64
	require.NoError(t, db.Model(&entity.Student{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w, _ = do(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"role": "student", "email": "sari@uni.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"role": "owner", "email": "sari@uni.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGuards(t *testing.T) {
	h, db := newTestServer(t)
	studentToken := register(t, h, entity.RoleStudent, "sari@uni.edu")
	ownerToken := register(t, h, entity.RoleOwner, "budi@kos.id")

	w, _ := do(t, h, http.MethodGet, "/favorites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, h, http.MethodGet, "/favorites", ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h, http.MethodGet, "/favorites", studentToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodPost, "/housing", studentToken, map[string]any{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h, http.MethodGet, "/admin/dashboard", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := entity.Owner{}
	require.NoError(t, db.First(&owner, "email = ?", "budi@kos.id").Error)
	housing := testutil.CreateHousing(t, db, owner.ID, "Bandung", 1500)

	w, _ = do(t, h, http.MethodDelete, "/housing/"+housing.ID.String(), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, db.First(&entity.Housing{}, "id = ?", housing.ID).Error)
}

func TestFavoriteFlow(t *testing.T) {
	h, db := newTestServer(t)
	studentToken := register(t, h, entity.RoleStudent, "sari@uni.edu")
	owner := testutil.CreateOwner(t, db, "budi@kos.id")
	housing := testutil.CreateHousing(t, db, owner.ID, "Bandung", 1500)

	body := map[string]string{"kind": "housing", "content_id": housing.ID.String()}
	w, _ := do(t, h, http.MethodPost, "/favorites", studentToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = do(t, h, http.MethodPost, "/favorites", studentToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := do(t, h, http.MethodGet, "/favorites/check?kind=housing&content_id="+housing.ID.String(), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `true`, string(jsonField(t, env.Data, "is_favorited")))

	w, _ = do(t, h, http.MethodDelete, "/favorites?kind=housing&content_id="+housing.ID.String(), studentToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&entity.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)
}

func jsonField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields[field]
}
