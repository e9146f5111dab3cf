package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoommateProfile is unique per student; the unique index on student_id enforces it.
type RoommateProfile struct {
	ID              uuid.UUID                   `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID       uuid.UUID                   `gorm:"type:char(36);not null;uniqueIndex" json:"student_id"`
	Student         *Student                    `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Bio             string                      `gorm:"type:text" json:"bio"`
	Budget          float64                     `gorm:"not null;index" json:"budget"`
	Location        string                      `gorm:"size:150;not null;index" json:"location"`
	MoveInDate      *time.Time                  `json:"move_in_date,omitempty"`
	Gender          *string                     `gorm:"size:20" json:"gender,omitempty"`
	PreferredGender *string                     `gorm:"size:20" json:"preferred_gender,omitempty"`
	Interests       datatypes.JSONSlice[string] `json:"interests"`
	Lifestyle       datatypes.JSONMap           `json:"lifestyle"`
	Preferences     datatypes.JSONMap           `json:"preferences"`
	IsActive        bool                        `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *RoommateProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
