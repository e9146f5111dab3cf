package dto

import (
	housingDto "talib.app/backend/internal/modules/housing/dto"
	itemDto "talib.app/backend/internal/modules/item/dto"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=1,max=100"`
	Kind  string `form:"kind" binding:"omitempty,oneof=housing item"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SearchResponse lists hits per kind. Engine is "meilisearch" or "database".
type SearchResponse struct {
	Query   string                       `json:"query"`
	Engine  string                       `json:"engine"`
	Housing []housingDto.HousingResponse `json:"housing,omitempty"`
	Items   []itemDto.ItemResponse       `json:"items,omitempty"`
}
