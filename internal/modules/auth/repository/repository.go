package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
)

// AdminRepository reads admin accounts. Admins are seeded, never registered.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.Admin, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	var admin entity.Admin
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	var admin entity.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&entity.Admin{}).Where("id = ?", id).Update("password_hash", hash).Error
}
