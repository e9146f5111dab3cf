package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/crud"
)

type OwnerRepository interface {
	// Create inserts owner and reports false when the email is already registered.
	Create(ctx context.Context, owner *entity.Owner) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error)
	FindByEmail(ctx context.Context, email string) (*entity.Owner, error)
	List(ctx context.Context, search string, verified *bool, limit, offset int) ([]entity.Owner, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// Listings returns the ids of the owner's housing and the images attached to them.
	Listings(ctx context.Context, id uuid.UUID) ([]uuid.UUID, []entity.Image, error)
}

type ownerRepository struct {
	*crud.Repository[entity.Owner]
}

func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{Repository: crud.New[entity.Owner](db)}
}

func (r *ownerRepository) Create(ctx context.Context, owner *entity.Owner) (bool, error) {
	result := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(owner)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ownerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return r.Repository.FindByID(ctx, id)
}

func (r *ownerRepository) FindByEmail(ctx context.Context, email string) (*entity.Owner, error) {
	var owner entity.Owner
	if err := r.DB(ctx).Where("email = ?", email).First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerRepository) List(ctx context.Context, search string, verified *bool, limit, offset int) ([]entity.Owner, int64, error) {
	query := r.DB(ctx).Model(&entity.Owner{})
	if search != "" {
		pattern := crud.Contains(search)
		query = query.Where("("+crud.ILike("email")+" OR "+crud.ILike("full_name")+" OR "+crud.ILike("company_name")+")", pattern, pattern, pattern)
	}
	if verified != nil {
		query = query.Where("is_verified = ?", *verified)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var owners []entity.Owner
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&owners).Error
	return owners, total, err
}

func (r *ownerRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *ownerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Repository.Delete(ctx, id)
}

func (r *ownerRepository) Count(ctx context.Context) (int64, error) {
	return r.Repository.Count(ctx, nil)
}

func (r *ownerRepository) Listings(ctx context.Context, id uuid.UUID) ([]uuid.UUID, []entity.Image, error) {
	var ids []uuid.UUID
	if err := r.DB(ctx).Model(&entity.Housing{}).Where("owner_id = ?", id).Pluck("id", &ids).Error; err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var images []entity.Image
	if err := r.DB(ctx).Where("housing_id IN ?", ids).Find(&images).Error; err != nil {
		return nil, nil, err
	}
	return ids, images, nil
}
