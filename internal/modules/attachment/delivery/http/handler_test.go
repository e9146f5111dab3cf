package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/attachment/dto"
	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/response"
)

type MockAttachmentService struct {
	UploadImageFunc func(ctx context.Context, actor entity.Actor, r io.Reader) (*dto.UploadImageResponse, error)
}

func (m *MockAttachmentService) UploadImage(ctx context.Context, actor entity.Actor, r io.Reader) (*dto.UploadImageResponse, error) {
	return m.UploadImageFunc(ctx, actor, r)
}

func (m *MockAttachmentService) StoreAvatar(context.Context, io.Reader) (string, error) {
	return "", nil
}

func (m *MockAttachmentService) AttachToHousing(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error {
	return nil
}

func (m *MockAttachmentService) AttachToItem(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error {
	return nil
}

func (m *MockAttachmentService) DeleteFiles(context.Context, []entity.Image) {}

func (m *MockAttachmentService) CleanupOrphanAttachments(context.Context) (int, error) {
	return 0, nil
}

func setupRouter(svc *MockAttachmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAttachmentHandler(svc)
	r.POST("/uploads", func(c *gin.Context) {
		c.Set(response.ContextUserID, uuid.NewString())
		c.Set(response.ContextRole, entity.RoleOwner)
	}, h.UploadImage)
	return r
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadImage_MissingField(t *testing.T) {
	called := false
	r := setupRouter(&MockAttachmentService{UploadImageFunc: func(context.Context, entity.Actor, io.Reader) (*dto.UploadImageResponse, error) {
		called = true
		return nil, nil
	}})

	body, contentType := multipartBody(t, "file", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestUploadImage_ServiceRejects(t *testing.T) {
	r := setupRouter(&MockAttachmentService{UploadImageFunc: func(context.Context, entity.Actor, io.Reader) (*dto.UploadImageResponse, error) {
		return nil, apperror.ErrBadRequest
	}})

	body, contentType := multipartBody(t, "image", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestUploadImage_Created(t *testing.T) {
	id := uuid.New()
	var gotRole string
	r := setupRouter(&MockAttachmentService{UploadImageFunc: func(_ context.Context, actor entity.Actor, _ io.Reader) (*dto.UploadImageResponse, error) {
		gotRole = actor.Role
		return &dto.UploadImageResponse{ID: id, URL: "/uploads/images/a.png", ContentType: "image/png", Size: 10}, nil
	}})

	body, contentType := multipartBody(t, "image", []byte("\x89PNG"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, entity.RoleOwner, gotRole)
	assert.Contains(t, w.Body.String(), id.String())
}
