package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type AddFavoriteRequest struct {
	Kind      string    `json:"kind" binding:"required,oneof=item housing roommate"`
	ContentID uuid.UUID `json:"content_id" binding:"required"`
}

type FavoriteQuery struct {
	commonDto.PageQuery
	Kind string `form:"kind" binding:"omitempty,oneof=item housing roommate"`
}

// TargetQuery addresses a favorite by what it points at rather than by its id.
type TargetQuery struct {
	Kind      string `form:"kind" binding:"required,oneof=item housing roommate"`
	ContentID string `form:"content_id" binding:"required,uuid"`
}

type FavoriteResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	ContentID uuid.UUID `json:"content_id"`
	Title     string    `json:"title"`
	// Available is false once the favorited content has been removed.
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

type CheckResponse struct {
	IsFavorited bool       `json:"is_favorited"`
	FavoriteID  *uuid.UUID `json:"favorite_id,omitempty"`
}
