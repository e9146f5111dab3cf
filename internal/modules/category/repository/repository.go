package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
)

type CategoryRepository interface {
	// Create inserts category and reports false when the slug is already taken.
	Create(ctx context.Context, category *entity.ItemCategory) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*entity.ItemCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ItemCategory, error)
	FindAll(ctx context.Context) ([]entity.ItemCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountItems(ctx context.Context, slug string) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.ItemCategory) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(category)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.ItemCategory, error) {
	var category entity.ItemCategory
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ItemCategory, error) {
	var category entity.ItemCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]entity.ItemCategory, error) {
	var categories []entity.ItemCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.ItemCategory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) CountItems(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Item{}).Where("category = ?", slug).Count(&count).Error
	return count, err
}
