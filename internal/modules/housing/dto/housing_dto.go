package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type CreateHousingRequest struct {
	Title         string      `json:"title" binding:"required,min=3,max=200"`
	Description   string      `json:"description" binding:"max=5000"`
	Type          string      `json:"type" binding:"required,oneof=apartment room studio house dormitory"`
	Price         float64     `json:"price" binding:"required,gt=0"`
	City          string      `json:"city" binding:"required,max=100"`
	Address       string      `json:"address" binding:"max=255"`
	Bedrooms      int         `json:"bedrooms" binding:"omitempty,min=0,max=50"`
	Bathrooms     int         `json:"bathrooms" binding:"omitempty,min=0,max=50"`
	Furnished     bool        `json:"furnished"`
	AvailableFrom *string     `json:"available_from" binding:"omitempty,datetime=2006-01-02"`
	ImageIDs      []uuid.UUID `json:"image_ids" binding:"omitempty,max=10"`
}

// UpdateHousingRequest changes only the fields present. A non-nil ImageIDs
// replaces the listing's images with exactly that ordered set.
type UpdateHousingRequest struct {
	Title         *string      `json:"title" binding:"omitempty,min=3,max=200"`
	Description   *string      `json:"description" binding:"omitempty,max=5000"`
	Type          *string      `json:"type" binding:"omitempty,oneof=apartment room studio house dormitory"`
	Price         *float64     `json:"price" binding:"omitempty,gt=0"`
	City          *string      `json:"city" binding:"omitempty,min=1,max=100"`
	Address       *string      `json:"address" binding:"omitempty,max=255"`
	Bedrooms      *int         `json:"bedrooms" binding:"omitempty,min=0,max=50"`
	Bathrooms     *int         `json:"bathrooms" binding:"omitempty,min=0,max=50"`
	Furnished     *bool        `json:"furnished"`
	AvailableFrom *string      `json:"available_from" binding:"omitempty,datetime=2006-01-02"`
	ImageIDs      *[]uuid.UUID `json:"image_ids" binding:"omitempty,max=10"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available rented inactive"`
}

// HousingFilter is bound from the query string of list endpoints. Status
// defaults to available; "all" lifts the status filter.
type HousingFilter struct {
	commonDto.PageQuery
	City      string   `form:"city" binding:"omitempty,max=100"`
	Type      string   `form:"type" binding:"omitempty,oneof=apartment room studio house dormitory"`
	MinPrice  *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Bedrooms  *int     `form:"bedrooms" binding:"omitempty,min=0"`
	Furnished *bool    `form:"furnished"`
	Status    string   `form:"status" binding:"omitempty,oneof=available rented inactive all"`
	Search    string   `form:"search" binding:"omitempty,max=100"`
	OwnerID   string   `form:"owner_id" binding:"omitempty,uuid"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc"`
}

type OwnerSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	AvatarURL  *string   `json:"avatar_url"`
	IsVerified bool      `json:"is_verified"`
}

type HousingResponse struct {
	ID            uuid.UUID     `json:"id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Owner         *OwnerSummary `json:"owner,omitempty"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Type          string        `json:"type"`
	Price         float64       `json:"price"`
	City          string        `json:"city"`
	Address       string        `json:"address"`
	Bedrooms      int           `json:"bedrooms"`
	Bathrooms     int           `json:"bathrooms"`
	Furnished     bool          `json:"furnished"`
	AvailableFrom *time.Time    `json:"available_from"`
	Status        string        `json:"status"`
	Views         int           `json:"views"`
	Images        []string      `json:"images"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
