package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestResponseError_MapsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/housing/x", nil)

	ResponseError(c, fmt.Errorf("housing not found: %w", apperror.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "housing not found: resource not found", body["message"])
	assert.Nil(t, body["data"])
}

func TestResponseError_HidesInternalMessageInProduction(t *testing.T) {
	SetProduction(true)
	defer SetProduction(false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/items", nil)

	ResponseError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["message"])
}

func TestResponseError_ShowsInternalMessageOutsideProduction(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/items", nil)

	ResponseError(c, errors.New("pq: connection refused"))

	assert.Equal(t, "pq: connection refused", decode(t, w)["message"])
}

func TestValidationError_FieldMap(t *testing.T) {
	validator.Setup()

	type input struct {
		Title string `json:"title" binding:"required"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/items", nil)

	var in input
	err := c.ShouldBindJSON(&in)
	require.Error(t, err)
	ValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
}

func TestPage_WritesMeta(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	page := dto.NewPaginated([]string{"a", "b"}, dto.PageQuery{Page: 1, Limit: 2}, 5)
	Page(c, page, "ok")

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(3), meta["total_pages"])
	assert.Equal(t, float64(5), meta["total_items"])
	assert.Len(t, body["data"], 2)
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	id := uuid.New()
	c.Set(ContextUserID, id.String())
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(ContextUserID, "garbage")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
