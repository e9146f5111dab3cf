package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
)

// Column names an image can be attached through.
const (
	TargetHousing = "housing_id"
	TargetItem    = "item_id"
)

var errNotAttachable = errors.New("images not attachable")

type AttachmentRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	// Attach links ids, in order, to the listing in column target and returns how
	// many of ids qualify: uploaded by uploaderID and free or already on this listing.
	// Images previously on the listing but absent from ids are released. Nothing
	// changes unless every id qualifies.
	Attach(ctx context.Context, target string, listingID, uploaderID uuid.UUID, ids []uuid.UUID) (int64, error)
	FindByListing(ctx context.Context, target string, listingID uuid.UUID) ([]entity.Image, error)
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, image *entity.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *attachmentRepository) Attach(ctx context.Context, target string, listingID, uploaderID uuid.UUID, ids []uuid.UUID) (int64, error) {
	other := TargetItem
	if target == TargetItem {
		other = TargetHousing
	}

	var qualifying int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			err := tx.Model(&entity.Image{}).
				Where("id IN ? AND uploader_id = ?", ids, uploaderID).
				Where(other + " IS NULL").
				Where("("+target+" IS NULL OR "+target+" = ?)", listingID).
				Count(&qualifying).Error
			if err != nil {
				return err
			}
			if qualifying != int64(len(ids)) {
				return errNotAttachable
			}
		}

		release := tx.Model(&entity.Image{}).Where(target+" = ?", listingID)
		if len(ids) > 0 {
			release = release.Where("id NOT IN ?", ids)
		}
		if err := release.Update(target, nil).Error; err != nil {
			return err
		}

		for i, id := range ids {
			err := tx.Model(&entity.Image{}).
				Where("id = ?", id).
				Updates(map[string]any{target: listingID, "sort_order": i}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errNotAttachable) {
		return qualifying, nil
	}
	return qualifying, err
}

func (r *attachmentRepository) FindByListing(ctx context.Context, target string, listingID uuid.UUID) ([]entity.Image, error) {
	var images []entity.Image
	err := r.db.WithContext(ctx).
		Where(target+" = ?", listingID).
		Order("sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Image, error) {
	var images []entity.Image
	err := r.db.WithContext(ctx).
		Where("housing_id IS NULL AND item_id IS NULL AND created_at < ?", cutoffTime).
		Find(&images).Error
	return images, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Image{}, "id = ?", id).Error
}
