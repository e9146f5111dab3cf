package handler

import (
	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/housing/dto"
	housing "talib.app/backend/internal/modules/housing/service"
	"talib.app/backend/pkg/response"
)

type HousingHandler struct {
	service housing.HousingService
}

func NewHousingHandler(service housing.HousingService) *HousingHandler {
	return &HousingHandler{service: service}
}

func (h *HousingHandler) ListHousing(c *gin.Context) {
	var filter dto.HousingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListHousing(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "housing retrieved successfully")
}

// ListByOwner serves /owners/:id/housing.
func (h *HousingHandler) ListByOwner(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var filter dto.HousingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}
	filter.OwnerID = id.String()

	page, err := h.service.ListHousing(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "housing retrieved successfully")
}

func (h *HousingHandler) GetHousing(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.GetHousing(c.Request.Context(), id, middleware.ViewerKey(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "housing retrieved successfully")
}

func (h *HousingHandler) GetTypes(c *gin.Context) {
	response.OK(c, entity.HousingTypes, "housing types retrieved successfully")
}

func (h *HousingHandler) CreateHousing(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateHousingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateHousing(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res, "housing created successfully")
}

func (h *HousingHandler) UpdateHousing(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateHousingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateHousing(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "housing updated successfully")
}

func (h *HousingHandler) UpdateStatus(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), actor, id, entity.HousingStatus(req.Status))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "housing status updated successfully")
}

func (h *HousingHandler) DeleteHousing(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteHousing(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "housing deleted successfully")
}

func (h *HousingHandler) GetContact(c *gin.Context) {
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
