package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "talib.app/backend/pkg/dto"
)

type CreateReportRequest struct {
	Kind        string    `json:"kind" binding:"required,oneof=item housing roommate student owner"`
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required,oneof=spam scam inappropriate misleading duplicate other"`
	Description string    `json:"description" binding:"max=1000"`
}

type UpdateReportRequest struct {
	Status     string  `json:"status" binding:"required,oneof=pending investigating resolved dismissed"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

type ReportQuery struct {
	commonDto.PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending investigating resolved dismissed"`
	Kind   string `form:"kind" binding:"omitempty,oneof=item housing roommate student owner"`
}

type ReportResponse struct {
	ID           uuid.UUID  `json:"id"`
	ReporterID   uuid.UUID  `json:"reporter_id"`
	ReporterRole string     `json:"reporter_role"`
	Kind         string     `json:"kind"`
	ContentID    uuid.UUID  `json:"content_id"`
	Reason       string     `json:"reason"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	AdminNotes   *string    `json:"admin_notes,omitempty"`
	ResolvedBy   *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
