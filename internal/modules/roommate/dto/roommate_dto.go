package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type CreateRoommateRequest struct {
	Bio             string         `json:"bio" binding:"max=2000"`
	Budget          float64        `json:"budget" binding:"required,gt=0"`
	Location        string         `json:"location" binding:"required,max=150"`
	MoveInDate      *string        `json:"move_in_date" binding:"omitempty,datetime=2006-01-02"`
	Gender          *string        `json:"gender" binding:"omitempty,oneof=male female other"`
	PreferredGender *string        `json:"preferred_gender" binding:"omitempty,oneof=male female any"`
	Interests       []string       `json:"interests" binding:"omitempty,max=20,dive,max=50"`
	Lifestyle       map[string]any `json:"lifestyle"`
	Preferences     map[string]any `json:"preferences"`
}

type UpdateRoommateRequest struct {
	Bio             *string         `json:"bio" binding:"omitempty,max=2000"`
	Budget          *float64        `json:"budget" binding:"omitempty,gt=0"`
	Location        *string         `json:"location" binding:"omitempty,min=1,max=150"`
	MoveInDate      *string         `json:"move_in_date" binding:"omitempty,datetime=2006-01-02"`
	Gender          *string         `json:"gender" binding:"omitempty,oneof=male female other"`
	PreferredGender *string         `json:"preferred_gender" binding:"omitempty,oneof=male female any"`
	Interests       *[]string       `json:"interests" binding:"omitempty,max=20,dive,max=50"`
	Lifestyle       *map[string]any `json:"lifestyle"`
	Preferences     *map[string]any `json:"preferences"`
	IsActive        *bool           `json:"is_active"`
}

type RoommateFilter struct {
	commonDto.PageQuery
	Location  string   `form:"location" binding:"omitempty,max=150"`
	MinBudget *float64 `form:"min_budget" binding:"omitempty,gte=0"`
	MaxBudget *float64 `form:"max_budget" binding:"omitempty,gte=0"`
	Gender    string   `form:"gender" binding:"omitempty,oneof=male female other"`
}

type StudentSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	University *string   `json:"university"`
	AvatarURL  *string   `json:"avatar_url"`
}

type RoommateResponse struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	Student         *StudentSummary `json:"student,omitempty"`
	Bio             string          `json:"bio"`
	Budget          float64         `json:"budget"`
	Location        string          `json:"location"`
	MoveInDate      *time.Time      `json:"move_in_date"`
	Gender          *string         `json:"gender"`
	PreferredGender *string         `json:"preferred_gender"`
	Interests       []string        `json:"interests"`
	Lifestyle       map[string]any  `json:"lifestyle"`
	Preferences     map[string]any  `json:"preferences"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
