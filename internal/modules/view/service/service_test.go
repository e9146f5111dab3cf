package view

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/view/repository"
	"talib.app/backend/internal/testutil"
)

func TestIncrementView_WithoutRedisWritesThrough(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewViewService(nil, repository.NewViewRepository(db), zap.NewNop())
	ctx := context.Background()

	owner := testutil.CreateOwner(t, db, "owner@talib.app")
	housing := testutil.CreateHousing(t, db, owner.ID, "Jakarta", 2000)

	require.NoError(t, svc.IncrementView(ctx, entity.KindHousing, housing.ID, "10.0.0.1"))
	require.NoError(t, svc.IncrementView(ctx, entity.KindHousing, housing.ID, "10.0.0.2"))

	var reloaded entity.Housing
	require.NoError(t, db.First(&reloaded, "id = ?", housing.ID).Error)
	assert.Equal(t, 2, reloaded.Views)

	synced, err := svc.SyncViews(ctx)
	require.NoError(t, err)
	assert.Zero(t, synced)
}

func TestViewRepository_RejectsUnknownKind(t *testing.T) {
	db := testutil.NewDB(t)
	err := repository.NewViewRepository(db).AddViews(context.Background(), entity.KindOwner, uuid.New(), 1)
	assert.Error(t, err)
}

func TestParseMember(t *testing.T) {
	id := uuid.New()
	kind, parsed, ok := parseMember("item:" + id.String())
	assert.True(t, ok)
	assert.Equal(t, entity.KindItem, kind)
	assert.Equal(t, id, parsed)

	_, _, ok = parseMember("garbage")
	assert.False(t, ok)
	_, _, ok = parseMember("item:not-a-uuid")
	assert.False(t, ok)
}
