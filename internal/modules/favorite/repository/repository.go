package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
)

type FavoriteRepository interface {
	// Create inserts favorite unless the same student already favorited the target.
	Create(ctx context.Context, favorite *entity.Favorite) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Favorite, error)
	FindByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (*entity.Favorite, error)
	List(ctx context.Context, studentID uuid.UUID, kind entity.ContentKind, limit, offset int) ([]entity.Favorite, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(favorite)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *favoriteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Favorite, error) {
	var favorite entity.Favorite
	if err := r.db.WithContext(ctx).First(&favorite, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) FindByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (*entity.Favorite, error) {
	var favorite entity.Favorite
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND kind = ? AND content_id = ?", studentID, ref.Kind, ref.ID).
		First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) List(ctx context.Context, studentID uuid.UUID, kind entity.ContentKind, limit, offset int) ([]entity.Favorite, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Favorite{}).Where("student_id = ?", studentID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []entity.Favorite
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&favorites).Error
	return favorites, total, err
}

func (r *favoriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Favorite{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *favoriteRepository) DeleteByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND kind = ? AND content_id = ?", studentID, ref.Kind, ref.ID).
		Delete(&entity.Favorite{})
	return result.RowsAffected, result.Error
}
