package item

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	attachmentRepo "talib.app/backend/internal/modules/attachment/repository"
	attachment "talib.app/backend/internal/modules/attachment/service"
	categoryRepo "talib.app/backend/internal/modules/category/repository"
	category "talib.app/backend/internal/modules/category/service"
	"talib.app/backend/internal/modules/item/dto"
	"talib.app/backend/internal/modules/item/repository"
	search "talib.app/backend/internal/modules/search/service"
	viewRepo "talib.app/backend/internal/modules/view/repository"
	view "talib.app/backend/internal/modules/view/service"
	"talib.app/backend/internal/testutil"
	"talib.app/backend/pkg/apperror"
)

func newService(t *testing.T) (*itemService, *gorm.DB, entity.Actor) {
	db := testutil.NewDB(t)
	attachments := attachment.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), testutil.NewMemoryStorage(), 5<<20, nil, zap.NewNop())
	svc := NewItemService(
		repository.NewItemRepository(db),
		category.NewCategoryService(categoryRepo.NewCategoryRepository(db)),
		attachments,
		search.NewNoopSearchService(),
		view.NewViewService(nil, viewRepo.NewViewRepository(db), zap.NewNop()),
		nil, 0, nil, zap.NewNop(),
	).(*itemService)

	student := testutil.CreateStudent(t, db, "seller@campus.ac.id")
	return svc, db, entity.Actor{ID: student.ID, Role: entity.RoleStudent}
}

func TestCreateItem_ValidatesCategory(t *testing.T) {
	svc, _, seller := newService(t)
	ctx := context.Background()

	req := dto.CreateItemRequest{Title: "Calculus 8th edition", Category: "Textbooks", Condition: "good", Price: 150000}
	res, err := svc.CreateItem(ctx, seller, req)
	require.NoError(t, err)
	assert.Equal(t, "textbooks", res.Category)
	require.NotNil(t, res.Seller)
	assert.Equal(t, "Test Student", res.Seller.FullName)

	req.Category = "spaceships"
	_, err = svc.CreateItem(ctx, seller, req)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.UpdateItem(ctx, seller, res.ID, dto.UpdateItemRequest{Category: &req.Category})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestListItems_CategoryFilterMatchesCount(t *testing.T) {
	svc, db, seller := newService(t)
	for i := 0; i < 3; i++ {
		testutil.CreateItem(t, db, seller.ID, "textbooks", float64(10000*(i+1)))
	}
	testutil.CreateItem(t, db, seller.ID, "electronics", 500000)
	testutil.CreateItem(t, db, seller.ID, "furniture", 200000)

	filter := dto.ItemFilter{Category: "textbooks"}
	filter.Limit = 2
	page, err := svc.ListItems(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
	for _, row := range page.Data {
		assert.Equal(t, "textbooks", row.Category)
	}
}

func TestListItems_ExcludesSoldByDefault(t *testing.T) {
	svc, db, seller := newService(t)
	sold := testutil.CreateItem(t, db, seller.ID, "kitchen", 50000)
	testutil.CreateItem(t, db, seller.ID, "kitchen", 70000)
	require.NoError(t, db.Model(sold).Update("is_sold", true).Error)

	page, err := svc.ListItems(context.Background(), dto.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Meta.TotalItems)

	page, err = svc.ListItems(context.Background(), dto.ItemFilter{IncludeSold: true, Condition: "good"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.TotalItems)
}

func TestToggleSold(t *testing.T) {
	svc, db, seller := newService(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	item := testutil.CreateItem(t, db, seller.ID, "sports", 80000)

	res, err := svc.ToggleSold(ctx, seller, item.ID)
	require.NoError(t, err)
	assert.True(t, res.IsSold)
	require.NotNil(t, res.SoldAt)
	assert.True(t, fixed.Equal(*res.SoldAt))

	res, err = svc.ToggleSold(ctx, seller, item.ID)
	require.NoError(t, err)
	assert.False(t, res.IsSold)
	assert.Nil(t, res.SoldAt)

	_, err = svc.ToggleSold(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}, item.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDeleteItem_Ownership(t *testing.T) {
	svc, db, seller := newService(t)
	ctx := context.Background()
	item := testutil.CreateItem(t, db, seller.ID, "clothing", 30000)

	err := svc.DeleteItem(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}, item.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	var count int64
	require.NoError(t, db.Model(&entity.Item{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.DeleteItem(ctx, seller, item.ID))
	assert.ErrorIs(t, svc.DeleteItem(ctx, seller, item.ID), apperror.ErrNotFound)
}

func TestGetByIDs_KeepsOrder(t *testing.T) {
	svc, db, seller := newService(t)
	a := testutil.CreateItem(t, db, seller.ID, "other", 1)
	b := testutil.CreateItem(t, db, seller.ID, "other", 2)

	rows, err := svc.GetByIDs(context.Background(), []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID, rows[0].ID)
	assert.Equal(t, a.ID, rows[1].ID)
}
