package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/crud"
)

type ListFilter struct {
	Category    string
	Condition   entity.ItemCondition
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	StudentID   *uuid.UUID
	IncludeSold bool
	OrderBy     string
}

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Item, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, conditions crud.Conditions) (int64, error)
}

type itemRepository struct {
	*crud.Repository[entity.Item]
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{Repository: crud.New[entity.Item](db)}
}

func withImages(query *gorm.DB) *gorm.DB {
	return query.Preload("Student").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	})
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	if err := withImages(r.DB(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}

	var rows []entity.Item
	if err := withImages(r.DB(ctx)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	position := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	ordered := make([]entity.Item, len(ids))
	found := make([]bool, len(ids))
	for _, item := range rows {
		i := position[item.ID]
		ordered[i], found[i] = item, true
	}

	result := make([]entity.Item, 0, len(rows))
	for i := range ordered {
		if found[i] {
			result = append(result, ordered[i])
		}
	}
	return result, nil
}

func (r *itemRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Item, int64, error) {
	query := r.DB(ctx).Model(&entity.Item{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Condition != "" {
		// condition is reserved in MySQL, so let gorm quote it.
		query = query.Where(clause.Eq{Column: clause.Column{Name: "condition"}, Value: filter.Condition})
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if !filter.IncludeSold {
		query = query.Where("is_sold = ?", false)
	}
	if filter.Search != "" {
		pattern := crud.Contains(filter.Search)
		query = query.Where("("+crud.ILike("title")+" OR "+crud.ILike("description")+")", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	var rows []entity.Item
	err := withImages(query).Order(orderBy).Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *itemRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Repository.Delete(ctx, id)
}
