package housing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/metrics"
	attachment "talib.app/backend/internal/modules/attachment/service"
	"talib.app/backend/internal/modules/housing/dto"
	"talib.app/backend/internal/modules/housing/repository"
	search "talib.app/backend/internal/modules/search/service"
	view "talib.app/backend/internal/modules/view/service"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/ratelimiter"
	"talib.app/backend/pkg/sanitizer"
)

const (
	listImageLimit = 3
	createAction   = "create_listing"
	dateLayout     = "2006-01-02"
)

var sortOrders = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC, created_at DESC",
	"price_desc": "price DESC, created_at DESC",
}

type HousingService interface {
	ListHousing(ctx context.Context, filter dto.HousingFilter) (*commonDto.Paginated[dto.HousingResponse], error)
	// GetHousing returns the full listing and counts a view for viewer.
	GetHousing(ctx context.Context, id uuid.UUID, viewer string) (*dto.HousingResponse, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.HousingResponse, error)
	CreateHousing(ctx context.Context, actor entity.Actor, req dto.CreateHousingRequest) (*dto.HousingResponse, error)
	UpdateHousing(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateHousingRequest) (*dto.HousingResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, status entity.HousingStatus) (*dto.HousingResponse, error)
	DeleteHousing(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error)
}

type housingService struct {
	repo           repository.HousingRepository
	attachments    attachment.AttachmentService
	search         search.SearchService
	views          view.ViewService
	limiter        *ratelimiter.Limiter
	createCooldown time.Duration
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewHousingService(
	repo repository.HousingRepository,
	attachments attachment.AttachmentService,
	searchService search.SearchService,
	views view.ViewService,
	limiter *ratelimiter.Limiter,
	createCooldown time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) HousingService {
	return &housingService{
		repo:           repo,
		attachments:    attachments,
		search:         searchService,
		views:          views,
		limiter:        limiter,
		createCooldown: createCooldown,
		metrics:        m,
		logger:         logger,
	}
}

func (s *housingService) find(ctx context.Context, id uuid.UUID) (*entity.Housing, error) {
	housing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("housing not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return housing, nil
}

func (s *housingService) ListHousing(ctx context.Context, filter dto.HousingFilter) (*commonDto.Paginated[dto.HousingResponse], error) {
	filter.Normalize()

	listFilter := repository.ListFilter{
		City:      strings.TrimSpace(filter.City),
		Type:      entity.HousingType(filter.Type),
		Search:    strings.TrimSpace(filter.Search),
		MinPrice:  filter.MinPrice,
		MaxPrice:  filter.MaxPrice,
		Bedrooms:  filter.Bedrooms,
		Furnished: filter.Furnished,
		OrderBy:   sortOrders[filter.Sort],
	}
	switch filter.Status {
	case "":
		listFilter.Status = entity.HousingAvailable
	case "all":
	default:
		listFilter.Status = entity.HousingStatus(filter.Status)
	}
	if filter.OwnerID != "" {
		ownerID, err := uuid.Parse(filter.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner_id: %w", apperror.ErrBadRequest)
		}
		listFilter.OwnerID = &ownerID
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("min_price must not exceed max_price: %w", apperror.ErrBadRequest)
	}

	rows, total, err := s.repo.List(ctx, listFilter, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.HousingResponse, 0, len(rows))
	for i := range rows {
		data = append(data, ToResponse(&rows[i], listImageLimit))
	}
	return commonDto.NewPaginated(data, filter.PageQuery, total), nil
}

func (s *housingService) GetHousing(ctx context.Context, id uuid.UUID, viewer string) (*dto.HousingResponse, error) {
	housing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.views.IncrementView(ctx, entity.KindHousing, id, viewer); err != nil {
		s.logger.Warn("failed to count housing view", zap.String("housing_id", id.String()), zap.Error(err))
	}

	resp := ToResponse(housing, 0)
	return &resp, nil
}

func (s *housingService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.HousingResponse, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	data := make([]dto.HousingResponse, 0, len(rows))
	for i := range rows {
		data = append(data, ToResponse(&rows[i], listImageLimit))
	}
	return data, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("available_from must be YYYY-MM-DD: %w", apperror.ErrBadRequest)
	}
	return &t, nil
}

func (s *housingService) CreateHousing(ctx context.Context, actor entity.Actor, req dto.CreateHousingRequest) (*dto.HousingResponse, error) {
	availableFrom, err := parseDate(req.AvailableFrom)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, actor.ID, createAction, s.createCooldown); err != nil {
		return nil, err
	}

	housing := &entity.Housing{
		OwnerID:       actor.ID,
		Title:         sanitizer.PlainText(req.Title),
		Description:   sanitizer.PlainText(req.Description),
		Type:          entity.HousingType(req.Type),
		Price:         req.Price,
		City:          sanitizer.PlainText(req.City),
		Address:       sanitizer.PlainText(req.Address),
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Furnished:     req.Furnished,
		AvailableFrom: availableFrom,
		Status:        entity.HousingAvailable,
	}
	if housing.Title == "" || housing.City == "" {
		_ = s.limiter.Release(ctx, actor.ID, createAction)
		return nil, fmt.Errorf("title and city must contain text: %w", apperror.ErrBadRequest)
	}

	if err := s.repo.Create(ctx, housing); err != nil {
		_ = s.limiter.Release(ctx, actor.ID, createAction)
		return nil, err
	}

	if len(req.ImageIDs) > 0 {
		if err := s.attachments.AttachToHousing(ctx, housing.ID, actor.ID, req.ImageIDs); err != nil {
			if delErr := s.repo.Delete(ctx, housing.ID); delErr != nil {
				s.logger.Error("failed to roll back housing after attach error", zap.String("housing_id", housing.ID.String()), zap.Error(delErr))
			}
			_ = s.limiter.Release(ctx, actor.ID, createAction)
			return nil, err
		}
	}

	created, err := s.find(ctx, housing.ID)
	if err != nil {
		return nil, err
	}

	s.index(created)
	s.metrics.RecordListingCreated(string(entity.KindHousing))
	s.logger.Info("housing created", zap.String("housing_id", created.ID.String()), zap.String("owner_id", actor.ID.String()))

	resp := ToResponse(created, 0)
	return &resp, nil
}

// owns reports whether actor is the owner account that published housing.
func owns(actor entity.Actor, housing *entity.Housing) bool {
	return actor.Role == entity.RoleOwner && actor.ID == housing.OwnerID
}

func (s *housingService) UpdateHousing(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateHousingRequest) (*dto.HousingResponse, error) {
	housing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(actor, housing) {
		return nil, fmt.Errorf("only the owner can edit this listing: %w", apperror.ErrForbidden)
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := sanitizer.PlainText(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title must contain text: %w", apperror.ErrBadRequest)
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = sanitizer.PlainText(*req.Description)
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.City != nil {
		city := sanitizer.PlainText(*req.City)
		if city == "" {
			return nil, fmt.Errorf("city must contain text: %w", apperror.ErrBadRequest)
		}
		updates["city"] = city
	}
	if req.Address != nil {
		updates["address"] = sanitizer.PlainText(*req.Address)
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.Furnished != nil {
		updates["furnished"] = *req.Furnished
	}
	if req.AvailableFrom != nil {
		availableFrom, err := parseDate(req.AvailableFrom)
		if err != nil {
			return nil, err
		}
		updates["available_from"] = availableFrom
	}

	if req.ImageIDs != nil {
		if err := s.attachments.AttachToHousing(ctx, id, actor.ID, *req.ImageIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(updated)

	resp := ToResponse(updated, 0)
	return &resp, nil
}

func (s *housingService) UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, status entity.HousingStatus) (*dto.HousingResponse, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", status, apperror.ErrBadRequest)
	}

	housing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(actor, housing) {
		return nil, fmt.Errorf("only the owner can change this listing: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	housing.Status = status
	s.index(housing)

	resp := ToResponse(housing, 0)
	return &resp, nil
}

func (s *housingService) DeleteHousing(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	housing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(housing.OwnerID, entity.RoleOwner) {
		return fmt.Errorf("you can only delete your own listings: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("housing not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.DeleteFiles(ctx, housing.Images)
	if err := s.search.Delete(entity.KindHousing, id); err != nil {
		s.logger.Warn("failed to remove housing from search index", zap.String("housing_id", id.String()), zap.Error(err))
	}

	s.logger.Info("housing deleted", zap.String("housing_id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}

func (s *housingService) GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error) {
	housing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if housing.Owner == nil {
		return nil, fmt.Errorf("owner not found: %w", apperror.ErrNotFound)
	}
	return &commonDto.ContactResponse{
		Name:        housing.Owner.FullName,
		Email:       housing.Owner.Email,
		Phone:       housing.Owner.Phone,
		CompanyName: housing.Owner.CompanyName,
	}, nil
}

func (s *housingService) index(housing *entity.Housing) {
	if err := s.search.IndexHousing(housing); err != nil {
		s.logger.Warn("failed to index housing", zap.String("housing_id", housing.ID.String()), zap.Error(err))
	}
}

// ToResponse maps a listing to its API shape with up to imageLimit images; imageLimit <= 0 keeps all.
func ToResponse(housing *entity.Housing, imageLimit int) dto.HousingResponse {
	resp := dto.HousingResponse{
		ID:            housing.ID,
		OwnerID:       housing.OwnerID,
		Title:         housing.Title,
		Description:   housing.Description,
		Type:          string(housing.Type),
		Price:         housing.Price,
		City:          housing.City,
		Address:       housing.Address,
		Bedrooms:      housing.Bedrooms,
		Bathrooms:     housing.Bathrooms,
		Furnished:     housing.Furnished,
		AvailableFrom: housing.AvailableFrom,
		Status:        string(housing.Status),
		Views:         housing.Views,
		Images:        entity.ImageURLs(housing.Images, imageLimit),
		CreatedAt:     housing.CreatedAt,
		UpdatedAt:     housing.UpdatedAt,
	}
	if housing.Owner != nil {
		resp.Owner = &dto.OwnerSummary{
			ID:         housing.Owner.ID,
			FullName:   housing.Owner.FullName,
			AvatarURL:  housing.Owner.AvatarURL,
			IsVerified: housing.Owner.IsVerified,
		}
	}
	return resp
}
