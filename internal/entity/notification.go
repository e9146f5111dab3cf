package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationFavoriteAdded = "favorite_added"
	NotificationReportUpdated = "report_updated"
	NotificationRoommateMatch = "roommate_match"
)

type Notification struct {
	ID          uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	RecipientID uuid.UUID   `gorm:"type:char(36);not null;index" json:"recipient_id"`
	ActorID     *uuid.UUID  `gorm:"type:char(36)" json:"actor_id,omitempty"`
	Type        string      `gorm:"size:30;not null" json:"type"`
	Kind        ContentKind `gorm:"size:20" json:"kind,omitempty"`
	ContentID   *uuid.UUID  `gorm:"type:char(36)" json:"content_id,omitempty"`
	Message     string      `gorm:"size:255;not null" json:"message"`
	IsRead      bool        `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
