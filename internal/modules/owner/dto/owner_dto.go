package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type OwnerResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name"`
	Phone       *string   `json:"phone,omitempty"`
	CompanyName *string   `json:"company_name"`
	AvatarURL   *string   `json:"avatar_url"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpdateOwnerRequest struct {
	FullName    *string `form:"full_name" json:"full_name" binding:"omitempty,min=1,max=150"`
	Phone       *string `form:"phone" json:"phone" binding:"omitempty,max=30"`
	CompanyName *string `form:"company_name" json:"company_name" binding:"omitempty,max=150"`
}

type VerifyOwnerRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required"`
}

type OwnerFilter struct {
	commonDto.PageQuery
	Search   string `form:"search"`
	Verified *bool  `form:"verified"`
}
