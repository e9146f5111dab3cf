package item

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
	category "talib.app/backend/internal/modules/category/service"
	"talib.app/backend/internal/modules/item/dto"
	"talib.app/backend/internal/modules/item/repository"
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
)

var sortOrders = map[string]string{
	"newest":     "created_at DESC",
	"price_asc":  "price ASC, created_at DESC",
	"price_desc": "price DESC, created_at DESC",
}

type ItemService interface {
	ListItems(ctx context.Context, filter dto.ItemFilter) (*commonDto.Paginated[dto.ItemResponse], error)
	GetItem(ctx context.Context, id uuid.UUID, viewer string) (*dto.ItemResponse, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.ItemResponse, error)
	CreateItem(ctx context.Context, actor entity.Actor, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	UpdateItem(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	// ToggleSold flips is_sold and stamps or clears sold_at.
	ToggleSold(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ItemResponse, error)
	DeleteItem(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error)
}

type itemService struct {
	repo           repository.ItemRepository
	categories     category.CategoryService
	attachments    attachment.AttachmentService
	search         search.SearchService
	views          view.ViewService
	limiter        *ratelimiter.Limiter
	createCooldown time.Duration
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewItemService(
	repo repository.ItemRepository,
	categories category.CategoryService,
	attachments attachment.AttachmentService,
	searchService search.SearchService,
	views view.ViewService,
	limiter *ratelimiter.Limiter,
	createCooldown time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) ItemService {
	return &itemService{
		repo:           repo,
		categories:     categories,
		attachments:    attachments,
		search:         searchService,
		views:          views,
		limiter:        limiter,
		createCooldown: createCooldown,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *itemService) find(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) checkCategory(ctx context.Context, slug string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	ok, err := s.categories.Exists(ctx, slug)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown category %q: %w", slug, apperror.ErrBadRequest)
	}
	return slug, nil
}

func (s *itemService) ListItems(ctx context.Context, filter dto.ItemFilter) (*commonDto.Paginated[dto.ItemResponse], error) {
	filter.Normalize()

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("min_price must not exceed max_price: %w", apperror.ErrBadRequest)
	}

	listFilter := repository.ListFilter{
		Category:    strings.ToLower(strings.TrimSpace(filter.Category)),
		Condition:   entity.ItemCondition(filter.Condition),
		Search:      strings.TrimSpace(filter.Search),
		MinPrice:    filter.MinPrice,
		MaxPrice:    filter.MaxPrice,
		IncludeSold: filter.IncludeSold,
		OrderBy:     sortOrders[filter.Sort],
	}
	if filter.StudentID != "" {
		studentID, err := uuid.Parse(filter.StudentID)
		if err != nil {
			return nil, fmt.Errorf("invalid student_id: %w", apperror.ErrBadRequest)
		}
		listFilter.StudentID = &studentID
	}

	rows, total, err := s.repo.List(ctx, listFilter, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.ItemResponse, 0, len(rows))
	for i := range rows {
		data = append(data, ToResponse(&rows[i], listImageLimit))
	}
	return commonDto.NewPaginated(data, filter.PageQuery, total), nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID, viewer string) (*dto.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.views.IncrementView(ctx, entity.KindItem, id, viewer); err != nil {
		s.logger.Warn("failed to count item view", zap.String("item_id", id.String()), zap.Error(err))
	}

	resp := ToResponse(item, 0)
	return &resp, nil
}

func (s *itemService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.ItemResponse, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ItemResponse, 0, len(rows))
	for i := range rows {
		data = append(data, ToResponse(&rows[i], listImageLimit))
	}
	return data, nil
}

func (s *itemService) CreateItem(ctx context.Context, actor entity.Actor, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	slug, err := s.checkCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	title := sanitizer.PlainText(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title must contain text: %w", apperror.ErrBadRequest)
	}

	if err := s.limiter.Allow(ctx, actor.ID, createAction, s.createCooldown); err != nil {
		return nil, err
	}

	item := &entity.Item{
		StudentID:   actor.ID,
		Title:       title,
		Description: sanitizer.PlainText(req.Description),
		Category:    slug,
		Condition:   entity.ItemCondition(req.Condition),
		Price:       req.Price,
		Location:    sanitizer.PlainTextPtr(req.Location),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		_ = s.limiter.Release(ctx, actor.ID, createAction)
		return nil, err
	}

	if len(req.ImageIDs) > 0 {
		if err := s.attachments.AttachToItem(ctx, item.ID, actor.ID, req.ImageIDs); err != nil {
			if delErr := s.repo.Delete(ctx, item.ID); delErr != nil {
				s.logger.Error("failed to roll back item after attach error", zap.String("item_id", item.ID.String()), zap.Error(delErr))
			}
			_ = s.limiter.Release(ctx, actor.ID, createAction)
			return nil, err
		}
	}

	created, err := s.find(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	s.index(created)
	s.metrics.RecordListingCreated(string(entity.KindItem))
	s.logger.Info("item created", zap.String("item_id", created.ID.String()), zap.String("student_id", actor.ID.String()))

	resp := ToResponse(created, 0)
	return &resp, nil
}

func owns(actor entity.Actor, item *entity.Item) bool {
	return actor.Role == entity.RoleStudent && actor.ID == item.StudentID
}

func (s *itemService) UpdateItem(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(actor, item) {
		return nil, fmt.Errorf("only the seller can edit this item: %w", apperror.ErrForbidden)
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
	if req.Category != nil {
		slug, err := s.checkCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = slug
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Location != nil {
		updates["location"] = sanitizer.PlainTextPtr(req.Location)
	}

	if req.ImageIDs != nil {
		if err := s.attachments.AttachToItem(ctx, id, actor.ID, *req.ImageIDs); err != nil {
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

func (s *itemService) ToggleSold(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(actor, item) {
		return nil, fmt.Errorf("only the seller can mark this item: %w", apperror.ErrForbidden)
	}

	var soldAt *time.Time
	if !item.IsSold {
		now := s.now()
		soldAt = &now
	}

	if err := s.repo.Update(ctx, id, map[string]any{"is_sold": !item.IsSold, "sold_at": soldAt}); err != nil {
		return nil, err
	}
	item.IsSold = !item.IsSold
	item.SoldAt = soldAt
	s.index(item)

	resp := ToResponse(item, 0)
	return &resp, nil
}

func (s *itemService) DeleteItem(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(item.StudentID, entity.RoleStudent) {
		return fmt.Errorf("you can only delete your own items: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.DeleteFiles(ctx, item.Images)
	if err := s.search.Delete(entity.KindItem, id); err != nil {
		s.logger.Warn("failed to remove item from search index", zap.String("item_id", id.String()), zap.Error(err))
	}

	s.logger.Info("item deleted", zap.String("item_id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}

func (s *itemService) GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Student == nil {
		return nil, fmt.Errorf("seller not found: %w", apperror.ErrNotFound)
	}
	return &commonDto.ContactResponse{
		Name:  item.Student.FullName(),
		Email: item.Student.Email,
		Phone: item.Student.Phone,
	}, nil
}

func (s *itemService) index(item *entity.Item) {
	if err := s.search.IndexItem(item); err != nil {
		s.logger.Warn("failed to index item", zap.String("item_id", item.ID.String()), zap.Error(err))
	}
}

func ToResponse(item *entity.Item, imageLimit int) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:          item.ID,
		StudentID:   item.StudentID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Condition:   string(item.Condition),
		Price:       item.Price,
		Location:    item.Location,
		IsSold:      item.IsSold,
		SoldAt:      item.SoldAt,
		Views:       item.Views,
		Images:      entity.ImageURLs(item.Images, imageLimit),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Student != nil {
		resp.Seller = &dto.SellerSummary{
			ID:         item.Student.ID,
			FullName:   item.Student.FullName(),
			University: item.Student.University,
			AvatarURL:  item.Student.AvatarURL,
		}
	}
	return resp
}
