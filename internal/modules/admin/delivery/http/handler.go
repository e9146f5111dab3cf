package handler

import (
	"github.com/gin-gonic/gin"

	housingDto "talib.app/backend/internal/modules/housing/dto"
	housing "talib.app/backend/internal/modules/housing/service"
	itemDto "talib.app/backend/internal/modules/item/dto"
	item "talib.app/backend/internal/modules/item/service"
	"talib.app/backend/pkg/response"
)

// AdminHandler serves the moderation views of listings. Unlike the public lists they
// include every housing status and sold items unless the query narrows them.
type AdminHandler struct {
	housingService housing.HousingService
	itemService    item.ItemService
}

func NewAdminHandler(housingService housing.HousingService, itemService item.ItemService) *AdminHandler {
	return &AdminHandler{
		housingService: housingService,
		itemService:    itemService,
	}
}

func (h *AdminHandler) ListHousing(c *gin.Context) {
	var filter housingDto.HousingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}
	if filter.Status == "" {
		filter.Status = "all"
	}

	page, err := h.housingService.ListHousing(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "housing retrieved successfully")
}

func (h *AdminHandler) ListItems(c *gin.Context) {
	var filter itemDto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}
	if _, set := c.GetQuery("include_sold"); !set {
		filter.IncludeSold = true
	}

	page, err := h.itemService.ListItems(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "items retrieved successfully")
}
