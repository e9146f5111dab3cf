package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/notification/dto"
	notifRepo "talib.app/backend/internal/modules/notification/repository"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
)

// ReadRetention is how long read notifications are kept before the cleanup job removes them.
const ReadRetention = 30 * 24 * time.Hour

func Channel(recipientID string) string {
	return fmt.Sprintf("notifications:%s", recipientID)
}

// Notifier is the side of the service other modules depend on.
type Notifier interface {
	// Notify stores and publishes notification. Callers treat failures as non-fatal.
	Notify(ctx context.Context, notification *entity.Notification) error
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, recipientID uuid.UUID, query dto.NotificationQuery) (*commonDto.Paginated[entity.Notification], error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	PurgeRead(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	if notification.ActorID != nil && *notification.ActorID == notification.RecipientID {
		return nil
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(ToEvent(notification))
		if err != nil {
			return err
		}
		if err := s.redisClient.Publish(ctx, Channel(notification.RecipientID.String()), payload).Err(); err != nil {
			s.logger.Warn("failed to publish notification",
				zap.String("recipient_id", notification.RecipientID.String()),
				zap.Error(err))
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, recipientID uuid.UUID, query dto.NotificationQuery) (*commonDto.Paginated[entity.Notification], error) {
	query.Normalize()
	notifications, total, err := s.repo.GetByRecipient(ctx, recipientID, query.UnreadOnly, query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}
	return commonDto.NewPaginated(notifications, query.PageQuery, total), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *notificationService) PurgeRead(ctx context.Context) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-ReadRetention))
}

func ToEvent(n *entity.Notification) dto.Event {
	return dto.Event{
		ID:        n.ID,
		Type:      n.Type,
		Kind:      string(n.Kind),
		ContentID: n.ContentID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
