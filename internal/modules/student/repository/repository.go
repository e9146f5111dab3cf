package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/crud"
)

type StudentRepository interface {
	// Create inserts student and reports false when the email or Google account is already registered.
	Create(ctx context.Context, student *entity.Student) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Student, error)
	FindByEmail(ctx context.Context, email string) (*entity.Student, error)
	FindByGoogleID(ctx context.Context, googleID string) (*entity.Student, error)
	List(ctx context.Context, search string, limit, offset int) ([]entity.Student, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// Listings returns the ids of the student's items and the images attached to them.
	Listings(ctx context.Context, id uuid.UUID) ([]uuid.UUID, []entity.Image, error)
}

type studentRepository struct {
	*crud.Repository[entity.Student]
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{Repository: crud.New[entity.Student](db)}
}

func (r *studentRepository) Create(ctx context.Context, student *entity.Student) (bool, error) {
	result := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(student)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	return r.Repository.FindByID(ctx, id)
}

func (r *studentRepository) FindByEmail(ctx context.Context, email string) (*entity.Student, error) {
	var student entity.Student
	if err := r.DB(ctx).Where("email = ?", email).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.Student, error) {
	var student entity.Student
	if err := r.DB(ctx).Where("google_id = ?", googleID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, search string, limit, offset int) ([]entity.Student, int64, error) {
	query := r.DB(ctx).Model(&entity.Student{})
	if search != "" {
		pattern := crud.Contains(search)
		query = query.Where("("+crud.ILike("email")+" OR "+crud.ILike("first_name")+" OR "+crud.ILike("last_name")+")", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []entity.Student
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&students).Error
	return students, total, err
}

func (r *studentRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Repository.Delete(ctx, id)
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	return r.Repository.Count(ctx, nil)
}

func (r *studentRepository) Listings(ctx context.Context, id uuid.UUID) ([]uuid.UUID, []entity.Image, error) {
	var ids []uuid.UUID
	if err := r.DB(ctx).Model(&entity.Item{}).Where("student_id = ?", id).Pluck("id", &ids).Error; err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var images []entity.Image
	if err := r.DB(ctx).Where("item_id IN ?", ids).Find(&images).Error; err != nil {
		return nil, nil, err
	}
	return ids, images, nil
}
