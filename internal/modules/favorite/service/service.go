package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/metrics"
	content "talib.app/backend/internal/modules/content/service"
	"talib.app/backend/internal/modules/favorite/dto"
	"talib.app/backend/internal/modules/favorite/repository"
	notification "talib.app/backend/internal/modules/notification/service"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
)

type FavoriteService interface {
	ListFavorites(ctx context.Context, studentID uuid.UUID, query dto.FavoriteQuery) (*commonDto.Paginated[dto.FavoriteResponse], error)
	AddFavorite(ctx context.Context, studentID uuid.UUID, req dto.AddFavoriteRequest) (*dto.FavoriteResponse, error)
	RemoveFavorite(ctx context.Context, studentID, id uuid.UUID) error
	RemoveByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) error
	Check(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (*dto.CheckResponse, error)
}

type favoriteService struct {
	repo     repository.FavoriteRepository
	resolver content.Resolver
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewFavoriteService(
	repo repository.FavoriteRepository,
	resolver content.Resolver,
	notifier notification.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) FavoriteService {
	return &favoriteService{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

func favoritable(ref entity.ContentRef) error {
	if !ref.Kind.Favoritable() {
		return fmt.Errorf("%q cannot be favorited: %w", ref.Kind, apperror.ErrBadRequest)
	}
	return nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, studentID uuid.UUID, query dto.FavoriteQuery) (*commonDto.Paginated[dto.FavoriteResponse], error) {
	query.Normalize()

	favorites, total, err := s.repo.List(ctx, studentID, entity.ContentKind(query.Kind), query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		resp := toResponse(&favorites[i], "")
		summary, err := s.resolver.Resolve(ctx, favorites[i].Target())
		switch {
		case err == nil:
			resp.Title = summary.Title
			resp.Available = true
		case !errors.Is(err, apperror.ErrNotFound):
			return nil, err
		}
		data = append(data, resp)
	}

	return commonDto.NewPaginated(data, query.PageQuery, total), nil
}

func (s *favoriteService) AddFavorite(ctx context.Context, studentID uuid.UUID, req dto.AddFavoriteRequest) (*dto.FavoriteResponse, error) {
	ref := entity.ContentRef{Kind: entity.ContentKind(req.Kind), ID: req.ContentID}
	if err := favoritable(ref); err != nil {
		return nil, err
	}

	summary, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	favorite := &entity.Favorite{
		StudentID: studentID,
		Kind:      ref.Kind,
		ContentID: ref.ID,
	}
	created, err := s.repo.Create(ctx, favorite)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("already in favorites: %w", apperror.ErrConflict)
	}

	s.metrics.RecordFavoriteAdded(string(ref.Kind))

	actorID := studentID
	contentID := ref.ID
	if err := s.notifier.Notify(ctx, &entity.Notification{
		RecipientID: summary.OwnerID,
		ActorID:     &actorID,
		Type:        entity.NotificationFavoriteAdded,
		Kind:        ref.Kind,
		ContentID:   &contentID,
		Message:     fmt.Sprintf("Someone saved %q to their favorites", summary.Title),
	}); err != nil {
		s.logger.Warn("failed to notify favorite",
			zap.String("target", ref.String()),
			zap.Error(err))
	}

	resp := toResponse(favorite, summary.Title)
	resp.Available = true
	return &resp, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, studentID, id uuid.UUID) error {
	favorite, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("favorite not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if favorite.StudentID != studentID {
		return fmt.Errorf("favorite belongs to another student: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("favorite not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *favoriteService) RemoveByTarget(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) error {
	if err := favoritable(ref); err != nil {
		return err
	}

	removed, err := s.repo.DeleteByTarget(ctx, studentID, ref)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("favorite not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *favoriteService) Check(ctx context.Context, studentID uuid.UUID, ref entity.ContentRef) (*dto.CheckResponse, error) {
	if err := favoritable(ref); err != nil {
		return nil, err
	}

	favorite, err := s.repo.FindByTarget(ctx, studentID, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.CheckResponse{IsFavorited: false}, nil
		}
		return nil, err
	}
	return &dto.CheckResponse{IsFavorited: true, FavoriteID: &favorite.ID}, nil
}

func toResponse(favorite *entity.Favorite, title string) dto.FavoriteResponse {
	return dto.FavoriteResponse{
		ID:        favorite.ID,
		Kind:      string(favorite.Kind),
		ContentID: favorite.ContentID,
		Title:     title,
		CreatedAt: favorite.CreatedAt,
	}
}
