// Package crud provides the generic table access every resource repository builds on.
// Column names passed in Conditions and orderBy are code constants; values are always bound.
package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Conditions map[string]any

type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// DB returns the handle bound to ctx for resource-specific queries.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	var model T
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *Repository[T]) FindAll(ctx context.Context, conditions Conditions, orderBy string, limit, offset int) ([]T, error) {
	var models []T
	query := r.db.WithContext(ctx).Model(new(T))
	if len(conditions) > 0 {
		query = query.Where(map[string]any(conditions))
	}
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *Repository[T]) Count(ctx context.Context, conditions Conditions) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(new(T))
	if len(conditions) > 0 {
		query = query.Where(map[string]any(conditions))
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repository[T]) Create(ctx context.Context, model *T) error {
	return r.db.WithContext(ctx).Create(model).Error
}

// Update applies data to the row with the given id. Missing rows yield gorm.ErrRecordNotFound.
func (r *Repository[T]) Update(ctx context.Context, id any, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(data)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const likeEscape = "!"

// Contains builds a case-insensitive LIKE pattern matching s anywhere, with wildcards in s escaped.
func Contains(s string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// ILike returns a portable case-insensitive LIKE clause for column, to be paired with Contains.
func ILike(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'"
}
