package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

// StudentResponse omits email and phone unless the viewer is the student or an admin.
type StudentResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email,omitempty"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	University *string   `json:"university"`
	Phone      *string   `json:"phone,omitempty"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
}

type UpdateStudentRequest struct {
	FirstName  *string `form:"first_name" json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName   *string `form:"last_name" json:"last_name" binding:"omitempty,max=100"`
	University *string `form:"university" json:"university" binding:"omitempty,max=150"`
	Phone      *string `form:"phone" json:"phone" binding:"omitempty,max=30"`
}

type StudentFilter struct {
	commonDto.PageQuery
	Search string `form:"search"`
}
