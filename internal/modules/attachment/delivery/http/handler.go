package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	attachment "talib.app/backend/internal/modules/attachment/service"
	"talib.app/backend/pkg/response"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadImage(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "image file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "could not read image file")
		return
	}
	defer f.Close()

	resp, err := h.service.UploadImage(c.Request.Context(), actor, f)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp, "image uploaded successfully")
}
