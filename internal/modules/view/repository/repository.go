package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
)

type ViewRepository interface {
	AddViews(ctx context.Context, kind entity.ContentKind, id uuid.UUID, n int) error
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) AddViews(ctx context.Context, kind entity.ContentKind, id uuid.UUID, n int) error {
	var model any
	switch kind {
	case entity.KindHousing:
		model = &entity.Housing{}
	case entity.KindItem:
		model = &entity.Item{}
	default:
		return fmt.Errorf("kind %q has no view counter", kind)
	}

	// UpdateColumn leaves updated_at alone; a view is not an edit.
	return r.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}
