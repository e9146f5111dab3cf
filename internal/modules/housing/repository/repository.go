package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/crud"
)

// ListFilter narrows a housing list. Zero values leave a dimension unfiltered.
type ListFilter struct {
	City      string
	Type      entity.HousingType
	Status    entity.HousingStatus
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *int
	Furnished *bool
	OwnerID   *uuid.UUID
	OrderBy   string
}

type HousingRepository interface {
	Create(ctx context.Context, housing *entity.Housing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Housing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Housing, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Housing, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, conditions crud.Conditions) (int64, error)
}

type housingRepository struct {
	*crud.Repository[entity.Housing]
}

func NewHousingRepository(db *gorm.DB) HousingRepository {
	return &housingRepository{Repository: crud.New[entity.Housing](db)}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func (r *housingRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Preload("Owner").Preload("Images", orderedImages)
}

func (r *housingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Housing, error) {
	var housing entity.Housing
	if err := r.withRelations(ctx).First(&housing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &housing, nil
}

// FindByIDs loads the listings in ids, preserving the order of ids and skipping missing rows.
func (r *housingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Housing, error) {
	if len(ids) == 0 {
		return []entity.Housing{}, nil
	}

	var rows []entity.Housing
	if err := r.withRelations(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Housing, len(rows))
	for _, h := range rows {
		byID[h.ID] = h
	}

	ordered := make([]entity.Housing, 0, len(rows))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			ordered = append(ordered, h)
		}
	}
	return ordered, nil
}

func (r *housingRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Housing, int64, error) {
	query := r.DB(ctx).Model(&entity.Housing{})

	if filter.City != "" {
		query = query.Where(crud.ILike("city"), crud.Contains(filter.City))
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Bedrooms != nil {
		query = query.Where("bedrooms >= ?", *filter.Bedrooms)
	}
	if filter.Furnished != nil {
		query = query.Where("furnished = ?", *filter.Furnished)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
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

	var rows []entity.Housing
	err := query.
		Preload("Owner").
		Preload("Images", orderedImages).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *housingRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *housingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Repository.Delete(ctx, id)
}
