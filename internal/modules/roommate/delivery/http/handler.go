package handler

import (
	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/roommate/dto"
	roommate "talib.app/backend/internal/modules/roommate/service"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/response"
)

type RoommateHandler struct {
	service roommate.RoommateService
}

func NewRoommateHandler(service roommate.RoommateService) *RoommateHandler {
	return &RoommateHandler{service: service}
}

func (h *RoommateHandler) ListProfiles(c *gin.Context) {
	var filter dto.RoommateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListProfiles(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "roommate profiles retrieved successfully")
}

func (h *RoommateHandler) GetProfile(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "roommate profile retrieved successfully")
}

func (h *RoommateHandler) GetMine(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.service.GetMine(c.Request.Context(), actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "roommate profile retrieved successfully")
}

func (h *RoommateHandler) CreateProfile(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateRoommateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, profile, "roommate profile created successfully")
}

func (h *RoommateHandler) UpdateMine(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateRoommateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	profile, err := h.service.UpdateMine(c.Request.Context(), actor.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "roommate profile updated successfully")
}

func (h *RoommateHandler) DeleteMine(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteMine(c.Request.Context(), actor.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "roommate profile deleted successfully")
}

func (h *RoommateHandler) GetMatches(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.GetMatches(c.Request.Context(), id, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "matches retrieved successfully")
}

func (h *RoommateHandler) GetMyMatches(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.GetMyMatches(c.Request.Context(), actor.ID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "matches retrieved successfully")
}

func (h *RoommateHandler) GetContact(c *gin.Context) {
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
