package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/favorite/dto"
	favorite "talib.app/backend/internal/modules/favorite/service"
	"talib.app/backend/pkg/response"
)

type FavoriteHandler struct {
	service favorite.FavoriteService
}

func NewFavoriteHandler(service favorite.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func bindTarget(c *gin.Context) (entity.ContentRef, bool) {
	var query dto.TargetQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return entity.ContentRef{}, false
	}
	return entity.ContentRef{
		Kind: entity.ContentKind(query.Kind),
		ID:   uuid.MustParse(query.ContentID),
	}, true
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.FavoriteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListFavorites(c.Request.Context(), actor.ID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "favorites retrieved successfully")
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	fav, err := h.service.AddFavorite(c.Request.Context(), actor.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, fav, "added to favorites")
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), actor.ID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "removed from favorites")
}

// RemoveByTarget handles DELETE /favorites?kind=&content_id=.
func (h *FavoriteHandler) RemoveByTarget(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ref, ok := bindTarget(c)
	if !ok {
		return
	}

	if err := h.service.RemoveByTarget(c.Request.Context(), actor.ID, ref); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "removed from favorites")
}

func (h *FavoriteHandler) Check(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ref, ok := bindTarget(c)
	if !ok {
		return
	}

	result, err := h.service.Check(c.Request.Context(), actor.ID, ref)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, result, "favorite status retrieved successfully")
}
