package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite points at one item, housing listing or roommate profile.
// The composite unique index makes a repeated favorite a no-op insert.
type Favorite struct {
	ID        uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_favorites_target,priority:1" json:"student_id"`
	Student   *Student    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Kind      ContentKind `gorm:"size:20;not null;uniqueIndex:idx_favorites_target,priority:2;index:idx_favorites_lookup,priority:1" json:"kind"`
	ContentID uuid.UUID   `gorm:"type:char(36);not null;uniqueIndex:idx_favorites_target,priority:3;index:idx_favorites_lookup,priority:2" json:"content_id"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

func (f *Favorite) Target() ContentRef {
	return ContentRef{Kind: f.Kind, ID: f.ContentID}
}
