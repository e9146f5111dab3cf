package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
)

// Summary is what other modules need to know about a piece of content.
type Summary struct {
	Ref       entity.ContentRef
	OwnerID   uuid.UUID
	OwnerRole string
	Title     string
}

type ContentRepository interface {
	// FindSummary returns gorm.ErrRecordNotFound when the content does not exist.
	FindSummary(ctx context.Context, ref entity.ContentRef) (*Summary, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) FindSummary(ctx context.Context, ref entity.ContentRef) (*Summary, error) {
	db := r.db.WithContext(ctx)
	summary := &Summary{Ref: ref}

	switch ref.Kind {
	case entity.KindHousing:
		var housing entity.Housing
		if err := db.Select("id", "owner_id", "title").First(&housing, "id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		summary.OwnerID, summary.OwnerRole, summary.Title = housing.OwnerID, entity.RoleOwner, housing.Title
	case entity.KindItem:
		var item entity.Item
		if err := db.Select("id", "student_id", "title").First(&item, "id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		summary.OwnerID, summary.OwnerRole, summary.Title = item.StudentID, entity.RoleStudent, item.Title
	case entity.KindRoommate:
		var profile entity.RoommateProfile
		if err := db.Select("id", "student_id", "location").First(&profile, "id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		summary.OwnerID, summary.OwnerRole = profile.StudentID, entity.RoleStudent
		summary.Title = "roommate profile in " + profile.Location
	case entity.KindStudent:
		var student entity.Student
		if err := db.Select("id", "first_name", "last_name").First(&student, "id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		summary.OwnerID, summary.OwnerRole, summary.Title = student.ID, entity.RoleStudent, student.FullName()
	case entity.KindOwner:
		var owner entity.Owner
		if err := db.Select("id", "full_name").First(&owner, "id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		summary.OwnerID, summary.OwnerRole, summary.Title = owner.ID, entity.RoleOwner, owner.FullName
	default:
		return nil, fmt.Errorf("unknown content kind %q", ref.Kind)
	}

	return summary, nil
}
