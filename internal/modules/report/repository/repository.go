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
	Status       entity.ReportStatus
	Kind         entity.ContentKind
	ReporterID   *uuid.UUID
	ReporterRole string
}

type ReportRepository interface {
	// Create inserts report unless its open key is already taken by another open report.
	Create(ctx context.Context, report *entity.Report) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Report, int64, error)
	Update(ctx context.Context, id uuid.UUID, data map[string]any) error
	// OpenKeyTaken reports whether a report other than id holds key.
	OpenKeyTaken(ctx context.Context, key string, id uuid.UUID) (bool, error)
	Count(ctx context.Context, conditions crud.Conditions) (int64, error)
}

type reportRepository struct {
	*crud.Repository[entity.Report]
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{Repository: crud.New[entity.Report](db)}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) (bool, error) {
	result := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(report)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	return r.Repository.FindByID(ctx, id)
}

func (r *reportRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]entity.Report, int64, error) {
	query := r.DB(ctx).Model(&entity.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ReporterID != nil {
		query = query.Where("reporter_id = ? AND reporter_role = ?", *filter.ReporterID, filter.ReporterRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []entity.Report
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error
	return reports, total, err
}

func (r *reportRepository) Update(ctx context.Context, id uuid.UUID, data map[string]any) error {
	return r.Repository.Update(ctx, id, data)
}

func (r *reportRepository) OpenKeyTaken(ctx context.Context, key string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&entity.Report{}).
		Where("open_key = ? AND id <> ?", key, id).
		Count(&count).Error
	return count > 0, err
}
