package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type CreateItemRequest struct {
	Title       string      `json:"title" binding:"required,min=3,max=200"`
	Description string      `json:"description" binding:"max=5000"`
	Category    string      `json:"category" binding:"required,max=100"`
	Condition   string      `json:"condition" binding:"required,oneof=new like_new good fair poor"`
	Price       float64     `json:"price" binding:"gte=0"`
	Location    *string     `json:"location" binding:"omitempty,max=150"`
	ImageIDs    []uuid.UUID `json:"image_ids" binding:"omitempty,max=10"`
}

type UpdateItemRequest struct {
	Title       *string      `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string      `json:"description" binding:"omitempty,max=5000"`
	Category    *string      `json:"category" binding:"omitempty,max=100"`
	Condition   *string      `json:"condition" binding:"omitempty,oneof=new like_new good fair poor"`
	Price       *float64     `json:"price" binding:"omitempty,gte=0"`
	Location    *string      `json:"location" binding:"omitempty,max=150"`
	ImageIDs    *[]uuid.UUID `json:"image_ids" binding:"omitempty,max=10"`
}

type ItemFilter struct {
	commonDto.PageQuery
	Category    string   `form:"category" binding:"omitempty,max=100"`
	Condition   string   `form:"condition" binding:"omitempty,oneof=new like_new good fair poor"`
	MinPrice    *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Search      string   `form:"search" binding:"omitempty,max=100"`
	StudentID   string   `form:"student_id" binding:"omitempty,uuid"`
	IncludeSold bool     `form:"include_sold"`
	Sort        string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc"`
}

type SellerSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	University *string   `json:"university"`
	AvatarURL  *string   `json:"avatar_url"`
}

type ItemResponse struct {
	ID          uuid.UUID      `json:"id"`
	StudentID   uuid.UUID      `json:"student_id"`
	Seller      *SellerSummary `json:"seller,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	Price       float64        `json:"price"`
	Location    *string        `json:"location"`
	IsSold      bool           `json:"is_sold"`
	SoldAt      *time.Time     `json:"sold_at"`
	Views       int            `json:"views"`
	Images      []string       `json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
