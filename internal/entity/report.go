package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending       ReportStatus = "pending"
	ReportInvestigating ReportStatus = "investigating"
	ReportResolved      ReportStatus = "resolved"
	ReportDismissed     ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportInvestigating, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Open reports are still awaiting a moderation outcome.
func (s ReportStatus) Open() bool {
	return s == ReportPending || s == ReportInvestigating
}

type ReportReason string

const (
	ReasonSpam          ReportReason = "spam"
	ReasonScam          ReportReason = "scam"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonMisleading    ReportReason = "misleading"
	ReasonDuplicate     ReportReason = "duplicate"
	ReasonOther         ReportReason = "other"
)

type Report struct {
	ID           uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	ReporterID   uuid.UUID    `gorm:"type:char(36);not null;index" json:"reporter_id"`
	ReporterRole string       `gorm:"size:20;not null" json:"reporter_role"`
	Kind         ContentKind  `gorm:"size:20;not null;index:idx_reports_target,priority:1" json:"kind"`
	ContentID    uuid.UUID    `gorm:"type:char(36);not null;index:idx_reports_target,priority:2" json:"content_id"`
	Reason       ReportReason `gorm:"size:30;not null" json:"reason"`
	Description  string       `gorm:"type:text" json:"description"`
	Status       ReportStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNotes   *string      `gorm:"type:text" json:"admin_notes,omitempty"`
	ResolvedBy   *uuid.UUID   `gorm:"type:char(36)" json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
	// OpenKey is set while the report is open and cleared once closed,
	// so the unique index allows one open report per reporter and target.
	OpenKey   *string   `gorm:"size:120;uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func (r *Report) Target() ContentRef {
	return ContentRef{Kind: r.Kind, ID: r.ContentID}
}

func ReportOpenKey(reporterID uuid.UUID, target ContentRef) string {
	return fmt.Sprintf("%s:%s", reporterID, target)
}
