package handler

import (
	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/item/dto"
	item "talib.app/backend/internal/modules/item/service"
	"talib.app/backend/pkg/response"
)

type ItemHandler struct {
	service item.ItemService
}

func NewItemHandler(service item.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) ListItems(c *gin.Context) {
	var filter dto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListItems(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "items retrieved successfully")
}

// ListByStudent serves /students/:id/items, which only shows what is still for sale.
func (h *ItemHandler) ListByStudent(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var filter dto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}
	filter.StudentID = id.String()
	filter.IncludeSold = false

	page, err := h.service.ListItems(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "items retrieved successfully")
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.GetItem(c.Request.Context(), id, middleware.ViewerKey(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "item retrieved successfully")
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreateItem(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res, "item created successfully")
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateItem(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "item updated successfully")
}

func (h *ItemHandler) ToggleSold(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.ToggleSold(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message := "item marked as available"
	if res.IsSold {
		message = "item marked as sold"
	}
	response.OK(c, res, message)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "item deleted successfully")
}

func (h *ItemHandler) GetContact(c *gin.Context) {
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
