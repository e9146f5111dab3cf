package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/owner/dto"
	owner "talib.app/backend/internal/modules/owner/service"
	"talib.app/backend/pkg/response"
)

type OwnerHandler struct {
	service owner.OwnerService
}

func NewOwnerHandler(service owner.OwnerService) *OwnerHandler {
	return &OwnerHandler{service: service}
}

func (h *OwnerHandler) GetOwner(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), middleware.OptionalActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "owner retrieved successfully")
}

func (h *OwnerHandler) GetMe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), actor, actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "profile retrieved successfully")
}

func (h *OwnerHandler) UpdateMe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateOwnerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	var avatar io.Reader
	if file, err := c.FormFile("avatar"); err == nil {
		f, err := file.Open()
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "could not read avatar file")
			return
		}
		defer f.Close()
		avatar = f
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), actor.ID, req, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "profile updated successfully")
}

func (h *OwnerHandler) ListOwners(c *gin.Context) {
	var filter dto.OwnerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListOwners(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "owners retrieved successfully")
}

func (h *OwnerHandler) DeleteOwner(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOwner(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "owner deleted successfully")
}

func (h *OwnerHandler) VerifyOwner(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.VerifyOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	profile, err := h.service.SetVerified(c.Request.Context(), id, *req.IsVerified)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "owner verification updated")
}

func (h *OwnerHandler) GetContact(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	contact, err := h.service.GetContact(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, contact, "contact retrieved successfully")
}
