package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	housingDto "talib.app/backend/internal/modules/housing/dto"
	housing "talib.app/backend/internal/modules/housing/service"
	itemDto "talib.app/backend/internal/modules/item/dto"
	item "talib.app/backend/internal/modules/item/service"
	"talib.app/backend/internal/modules/search/dto"
	search "talib.app/backend/internal/modules/search/service"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/response"
)

const (
	engineMeili    = "meilisearch"
	engineDatabase = "database"
)

type SearchHandler struct {
	search         search.SearchService
	housingService housing.HousingService
	itemService    item.ItemService
	logger         *zap.Logger
}

func NewSearchHandler(searchService search.SearchService, housingService housing.HousingService, itemService item.ItemService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		search:         searchService,
		housingService: housingService,
		itemService:    itemService,
		logger:         logger,
	}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = dto.DefaultLimit
	}

	ctx := c.Request.Context()
	res := &dto.SearchResponse{Query: query.Q, Engine: engineDatabase}

	if h.search.Enabled() {
		err := h.fromIndex(ctx, query, res)
		if err == nil {
			res.Engine = engineMeili
			response.OK(c, res, "search completed")
			return
		}
		h.logger.Warn("search index unavailable, falling back to database",
			zap.String("q", query.Q),
			zap.Error(err))
		res.Housing, res.Items = nil, nil
	}

	if err := h.fromDatabase(ctx, query, res); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, res, "search completed")
}

func wants(query dto.SearchQuery, kind entity.ContentKind) bool {
	return query.Kind == "" || query.Kind == string(kind)
}

func (h *SearchHandler) fromIndex(ctx context.Context, query dto.SearchQuery, res *dto.SearchResponse) error {
	if wants(query, entity.KindHousing) {
		ids, err := h.search.Search(ctx, entity.KindHousing, query.Q, query.Limit)
		if err != nil {
			return err
		}
		if res.Housing, err = h.housingService.GetByIDs(ctx, ids); err != nil {
			return err
		}
	}

	if wants(query, entity.KindItem) {
		ids, err := h.search.Search(ctx, entity.KindItem, query.Q, query.Limit)
		if err != nil {
			return err
		}
		if res.Items, err = h.itemService.GetByIDs(ctx, ids); err != nil {
			return err
		}
	}
	return nil
}

// fromDatabase runs the same substring filters the list endpoints use.
func (h *SearchHandler) fromDatabase(ctx context.Context, query dto.SearchQuery, res *dto.SearchResponse) error {
	page := commonDto.PageQuery{Page: 1, Limit: query.Limit}

	if wants(query, entity.KindHousing) {
		housingPage, err := h.housingService.ListHousing(ctx, housingDto.HousingFilter{PageQuery: page, Search: query.Q})
		if err != nil {
			return err
		}
		res.Housing = housingPage.Data
	}

	if wants(query, entity.KindItem) {
		itemPage, err := h.itemService.ListItems(ctx, itemDto.ItemFilter{PageQuery: page, Search: query.Q})
		if err != nil {
			return err
		}
		res.Items = itemPage.Data
	}
	return nil
}
