package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/notification/dto"
	notifRepo "talib.app/backend/internal/modules/notification/repository"
	"talib.app/backend/internal/testutil"
	"talib.app/backend/pkg/apperror"
)

func TestNotificationService_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	ctx := context.Background()

	recipient := uuid.New()
	actor := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, &entity.Notification{
			RecipientID: recipient,
			ActorID:     &actor,
			Type:        entity.NotificationFavoriteAdded,
			Kind:        entity.KindItem,
			Message:     "someone saved your item",
		}))
	}

	count, err := svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	page, err := svc.GetNotifications(ctx, recipient, dto.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, int64(3), page.Meta.TotalItems)

	require.NoError(t, svc.MarkAsRead(ctx, page.Data[0].ID, recipient))
	assert.ErrorIs(t, svc.MarkAsRead(ctx, page.Data[1].ID, uuid.New()), apperror.ErrNotFound)

	count, err = svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkAllAsRead(ctx, recipient))
	unread, err := svc.GetNotifications(ctx, recipient, dto.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread.Data)
}

func TestNotificationService_SkipsSelfNotification(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	ctx := context.Background()

	self := uuid.New()
	require.NoError(t, svc.Notify(ctx, &entity.Notification{
		RecipientID: self,
		ActorID:     &self,
		Type:        entity.NotificationFavoriteAdded,
		Message:     "you saved your own item",
	}))

	count, err := svc.UnreadCount(ctx, self)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "notifications:abc", Channel("abc"))
}
