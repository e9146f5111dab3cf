package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/crud"
)

// BudgetWindow is how far apart two budgets may be for the profiles to match.
const BudgetWindow = 500.0

type ListFilter struct {
	Location  string
	MinBudget *float64
	MaxBudget *float64
	Gender    string
}

type RoommateRepository interface {
	// Create inserts profile unless the student already has one, reporting whether it did.
	Create(ctx context.Context, profile *entity.RoommateProfile) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RoommateProfile, error)
	FindByStudentID(ctx context.Context, studentID uuid.UUID) (*entity.RoommateProfile, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.RoommateProfile, int64, error)
	// FindMatches returns other active profiles within BudgetWindow of profile's
	// budget whose location contains profile's location, newest first.
	FindMatches(ctx context.Context, profile *entity.RoommateProfile, limit, offset int) ([]entity.RoommateProfile, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, conditions crud.Conditions) (int64, error)
}

type roommateRepository struct {
	*crud.Repository[entity.RoommateProfile]
}

func NewRoommateRepository(db *gorm.DB) RoommateRepository {
	return &roommateRepository{Repository: crud.New[entity.RoommateProfile](db)}
}

func (r *roommateRepository) Create(ctx context.Context, profile *entity.RoommateProfile) (bool, error) {
	result := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(profile)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *roommateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RoommateProfile, error) {
	var profile entity.RoommateProfile
	if err := r.DB(ctx).Preload("Student").First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *roommateRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*entity.RoommateProfile, error) {
	var profile entity.RoommateProfile
	if err := r.DB(ctx).Preload("Student").First(&profile, "student_id = ?", studentID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *roommateRepository) page(query *gorm.DB, limit, offset int) ([]entity.RoommateProfile, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []entity.RoommateProfile
	err := query.Preload("Student").Order("created_at DESC").Limit(limit).Offset(offset).Find(&profiles).Error
	return profiles, total, err
}

func (r *roommateRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.RoommateProfile, int64, error) {
	query := r.DB(ctx).Model(&entity.RoommateProfile{}).Where("is_active = ?", true)

	if filter.Location != "" {
		query = query.Where(crud.ILike("location"), crud.Contains(filter.Location))
	}
	if filter.MinBudget != nil {
		query = query.Where("budget >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		query = query.Where("budget <= ?", *filter.MaxBudget)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	return r.page(query, limit, offset)
}

func (r *roommateRepository) FindMatches(ctx context.Context, profile *entity.RoommateProfile, limit, offset int) ([]entity.RoommateProfile, int64, error) {
	query := r.DB(ctx).Model(&entity.RoommateProfile{}).
		Where("is_active = ?", true).
		Where("student_id <> ?", profile.StudentID).
		Where("budget BETWEEN ? AND ?", profile.Budget-BudgetWindow, profile.Budget+BudgetWindow).
		Where(crud.ILike("location"), crud.Contains(profile.Location))

	return r.page(query, limit, offset)
}

func (r *roommateRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *roommateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Repository.Delete(ctx, id)
}
