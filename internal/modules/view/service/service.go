package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/view/repository"
)

const (
	pendingKey   = "pending:listing_views"
	viewerWindow = time.Hour
)

type ViewService interface {
	// IncrementView counts one view per viewer per hour. Without redis every call writes through.
	IncrementView(ctx context.Context, kind entity.ContentKind, id uuid.UUID, viewer string) error
	// SyncViews flushes buffered counters to the database and returns how many listings changed.
	SyncViews(ctx context.Context) (int, error)
}

type viewService struct {
	redisClient *redis.Client
	repo        repository.ViewRepository
	logger      *zap.Logger
}

func NewViewService(redisClient *redis.Client, repo repository.ViewRepository, logger *zap.Logger) ViewService {
	return &viewService{
		redisClient: redisClient,
		repo:        repo,
		logger:      logger,
	}
}

func counterKey(member string) string {
	return "views:" + member
}

func (s *viewService) IncrementView(ctx context.Context, kind entity.ContentKind, id uuid.UUID, viewer string) error {
	if s.redisClient == nil {
		return s.repo.AddViews(ctx, kind, id, 1)
	}

	member := fmt.Sprintf("%s:%s", kind, id)

	if viewer != "" {
		viewerKey := fmt.Sprintf("views:viewer:%s:%s", member, viewer)
		fresh, err := s.redisClient.SetNX(ctx, viewerKey, "1", viewerWindow).Result()
		if err != nil {
			return fmt.Errorf("failed to check viewer: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, counterKey(member))
	pipe.SAdd(ctx, pendingKey, member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}
	return nil
}

func (s *viewService) SyncViews(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	members, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending views: %w", err)
	}

	synced := 0
	for _, member := range members {
		kind, id, ok := parseMember(member)
		if !ok {
			s.redisClient.SRem(ctx, pendingKey, member)
			continue
		}

		raw, err := s.redisClient.Get(ctx, counterKey(member)).Result()
		if err != nil && err != redis.Nil {
			s.logger.Warn("failed to read view counter", zap.String("listing", member), zap.Error(err))
			continue
		}
		count, _ := strconv.Atoi(raw)
		if count <= 0 {
			s.redisClient.SRem(ctx, pendingKey, member)
			continue
		}

		if err := s.repo.AddViews(ctx, kind, id, count); err != nil {
			s.logger.Warn("failed to persist views", zap.String("listing", member), zap.Error(err))
			continue
		}

		// Views that arrived after the read stay in the counter for the next run.
		remaining, err := s.redisClient.DecrBy(ctx, counterKey(member), int64(count)).Result()
		if err == nil && remaining <= 0 {
			s.redisClient.SRem(ctx, pendingKey, member)
		}
		synced++
	}

	return synced, nil
}

func parseMember(member string) (entity.ContentKind, uuid.UUID, bool) {
	kind, rawID, found := strings.Cut(member, ":")
	if !found {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", uuid.Nil, false
	}
	return entity.ContentKind(kind), id, true
}
