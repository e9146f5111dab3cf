package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/metrics"
	content "talib.app/backend/internal/modules/content/service"
	notification "talib.app/backend/internal/modules/notification/service"
	"talib.app/backend/internal/modules/report/dto"
	"talib.app/backend/internal/modules/report/repository"
	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/crud"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/ratelimiter"
	"talib.app/backend/pkg/sanitizer"
)

const fileAction = "file_report"

type ReportService interface {
	FileReport(ctx context.Context, actor entity.Actor, req dto.CreateReportRequest) (*dto.ReportResponse, error)
	MyReports(ctx context.Context, actor entity.Actor, query commonDto.PageQuery) (*commonDto.Paginated[dto.ReportResponse], error)
	ListReports(ctx context.Context, query dto.ReportQuery) (*commonDto.Paginated[dto.ReportResponse], error)
	GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	UpdateStatus(ctx context.Context, adminID, id uuid.UUID, req dto.UpdateReportRequest) (*dto.ReportResponse, error)
	CountPending(ctx context.Context) (int64, error)
}

type reportService struct {
	repo     repository.ReportRepository
	resolver content.Resolver
	notifier notification.Notifier
	limiter  *ratelimiter.Limiter
	cooldown time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(
	repo repository.ReportRepository,
	resolver content.Resolver,
	notifier notification.Notifier,
	limiter *ratelimiter.Limiter,
	cooldown time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		limiter:  limiter,
		cooldown: cooldown,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("report not found: %w", apperror.ErrNotFound)
	}
	return err
}

func (s *reportService) FileReport(ctx context.Context, actor entity.Actor, req dto.CreateReportRequest) (*dto.ReportResponse, error) {
	ref := entity.ContentRef{Kind: entity.ContentKind(req.Kind), ID: req.ContentID}

	summary, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if summary.OwnerID == actor.ID && summary.OwnerRole == actor.Role {
		return nil, fmt.Errorf("you cannot report your own content: %w", apperror.ErrBadRequest)
	}

	if err := s.limiter.Allow(ctx, actor.ID, fileAction, s.cooldown); err != nil {
		return nil, err
	}

	key := entity.ReportOpenKey(actor.ID, ref)
	report := &entity.Report{
		ReporterID:   actor.ID,
		ReporterRole: actor.Role,
		Kind:         ref.Kind,
		ContentID:    ref.ID,
		Reason:       entity.ReportReason(req.Reason),
		Description:  sanitizer.PlainText(req.Description),
		Status:       entity.ReportPending,
		OpenKey:      &key,
	}

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		_ = s.limiter.Release(ctx, actor.ID, fileAction)
		return nil, err
	}
	if !created {
		_ = s.limiter.Release(ctx, actor.ID, fileAction)
		return nil, fmt.Errorf("you already have an open report for this %s: %w", ref.Kind, apperror.ErrConflict)
	}

	s.metrics.RecordReportFiled(string(ref.Kind))
	s.logger.Info("report filed",
		zap.String("report_id", report.ID.String()),
		zap.String("target", ref.String()),
		zap.String("reason", req.Reason))

	resp := ToResponse(report)
	return &resp, nil
}

func (s *reportService) page(ctx context.Context, filter repository.ListFilter, query commonDto.PageQuery) (*commonDto.Paginated[dto.ReportResponse], error) {
	reports, total, err := s.repo.List(ctx, filter, query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		data = append(data, ToResponse(&reports[i]))
	}
	return commonDto.NewPaginated(data, query, total), nil
}

func (s *reportService) MyReports(ctx context.Context, actor entity.Actor, query commonDto.PageQuery) (*commonDto.Paginated[dto.ReportResponse], error) {
	query.Normalize()
	return s.page(ctx, repository.ListFilter{ReporterID: &actor.ID, ReporterRole: actor.Role}, query)
}

func (s *reportService) ListReports(ctx context.Context, query dto.ReportQuery) (*commonDto.Paginated[dto.ReportResponse], error) {
	query.Normalize()
	return s.page(ctx, repository.ListFilter{
		Status: entity.ReportStatus(query.Status),
		Kind:   entity.ContentKind(query.Kind),
	}, query.PageQuery)
}

func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToResponse(report)
	return &resp, nil
}

// UpdateStatus moves a report to any status. Closing stamps the resolver and frees the
// reporter to file again; reopening re-claims the open slot.
func (s *reportService) UpdateStatus(ctx context.Context, adminID, id uuid.UUID, req dto.UpdateReportRequest) (*dto.ReportResponse, error) {
	status := entity.ReportStatus(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("invalid report status %q: %w", req.Status, apperror.ErrBadRequest)
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	data := map[string]any{"status": status}
	if req.AdminNotes != nil {
		data["admin_notes"] = sanitizer.PlainText(*req.AdminNotes)
	}

	if status.Open() {
		data["resolved_by"] = nil
		data["resolved_at"] = nil
		if report.OpenKey == nil {
			key := entity.ReportOpenKey(report.ReporterID, report.Target())
			taken, err := s.repo.OpenKeyTaken(ctx, key, report.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, fmt.Errorf("reporter already has an open report for this content: %w", apperror.ErrConflict)
			}
			data["open_key"] = key
		}
	} else {
		data["resolved_by"] = adminID
		data["resolved_at"] = s.now()
		data["open_key"] = nil
	}

	if err := s.repo.Update(ctx, id, data); err != nil {
		return nil, notFound(err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if report.Status != status {
		s.notifyReporter(ctx, adminID, updated)
	}

	resp := ToResponse(updated)
	return &resp, nil
}

func (s *reportService) notifyReporter(ctx context.Context, adminID uuid.UUID, report *entity.Report) {
	actorID := adminID
	contentID := report.ContentID
	err := s.notifier.Notify(ctx, &entity.Notification{
		RecipientID: report.ReporterID,
		ActorID:     &actorID,
		Type:        entity.NotificationReportUpdated,
		Kind:        report.Kind,
		ContentID:   &contentID,
		Message:     fmt.Sprintf("Your report on a %s is now %s", report.Kind, report.Status),
	})
	if err != nil {
		s.logger.Warn("failed to notify reporter",
			zap.String("report_id", report.ID.String()),
			zap.Error(err))
	}
}

func (s *reportService) CountPending(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, crud.Conditions{"status": entity.ReportPending})
}

func ToResponse(report *entity.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:           report.ID,
		ReporterID:   report.ReporterID,
		ReporterRole: report.ReporterRole,
		Kind:         string(report.Kind),
		ContentID:    report.ContentID,
		Reason:       string(report.Reason),
		Description:  report.Description,
		Status:       string(report.Status),
		AdminNotes:   report.AdminNotes,
		ResolvedBy:   report.ResolvedBy,
		ResolvedAt:   report.ResolvedAt,
		CreatedAt:    report.CreatedAt,
		UpdatedAt:    report.UpdatedAt,
	}
}
