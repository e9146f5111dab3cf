package housing

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	attachmentRepo "talib.app/backend/internal/modules/attachment/repository"
	attachment "talib.app/backend/internal/modules/attachment/service"
	"talib.app/backend/internal/modules/housing/dto"
	"talib.app/backend/internal/modules/housing/repository"
	viewRepo "talib.app/backend/internal/modules/view/repository"
	view "talib.app/backend/internal/modules/view/service"
	"talib.app/backend/internal/testutil"
	"talib.app/backend/pkg/apperror"
)

type recordingSearch struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
}

func (r *recordingSearch) IndexHousing(h *entity.Housing) error {
	r.indexed = append(r.indexed, h.ID)
	return nil
}

func (r *recordingSearch) IndexItem(*entity.Item) error {
	return nil
}

func (r *recordingSearch) Delete(kind entity.ContentKind, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingSearch) Search(context.Context, entity.ContentKind, string, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *recordingSearch) Enabled() bool {
	return true
}

type fixture struct {
	db          *gorm.DB
	store       *testutil.MemoryStorage
	search      *recordingSearch
	attachments attachment.AttachmentService
	svc         HousingService
	owner       entity.Actor
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	store := testutil.NewMemoryStorage()
	rec := &recordingSearch{}
	attachments := attachment.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), store, 5<<20, nil, zap.NewNop())
	views := view.NewViewService(nil, viewRepo.NewViewRepository(db), zap.NewNop())
	svc := NewHousingService(repository.NewHousingRepository(db), attachments, rec, views, nil, 0, nil, zap.NewNop())

	owner := testutil.CreateOwner(t, db, "owner@mail.com")
	return &fixture{
		db:          db,
		store:       store,
		search:      rec,
		attachments: attachments,
		svc:         svc,
		owner:       entity.Actor{ID: owner.ID, Role: entity.RoleOwner},
	}
}

func (f *fixture) upload(t *testing.T, actor entity.Actor) uuid.UUID {
	res, err := f.attachments.UploadImage(context.Background(), actor, bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	return res.ID
}

func validRequest() dto.CreateHousingRequest {
	return dto.CreateHousingRequest{
		Title:       "Kamar dekat kampus",
		Description: "<p>Quiet room, <script>x()</script>wifi included</p>",
		Type:        string(entity.HousingRoom),
		Price:       1500000,
		City:        "Depok",
		Bedrooms:    1,
		Bathrooms:   1,
	}
}

func TestCreateHousing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest()
	date := "2026-11-01"
	req.AvailableFrom = &date
	req.ImageIDs = []uuid.UUID{f.upload(t, f.owner), f.upload(t, f.owner)}

	res, err := f.svc.CreateHousing(ctx, f.owner, req)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, res.OwnerID)
	assert.Equal(t, "Quiet room, wifi included", res.Description)
	assert.Equal(t, string(entity.HousingAvailable), res.Status)
	assert.Len(t, res.Images, 2)
	require.NotNil(t, res.AvailableFrom)
	assert.Equal(t, 11, int(res.AvailableFrom.Month()))
	require.NotNil(t, res.Owner)
	assert.Equal(t, "Test Owner", res.Owner.FullName)
	assert.Equal(t, []uuid.UUID{res.ID}, f.search.indexed)
}

func TestCreateHousing_ForeignImageRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := testutil.CreateOwner(t, f.db, "other@mail.com")
	req := validRequest()
	req.ImageIDs = []uuid.UUID{f.upload(t, entity.Actor{ID: other.ID, Role: entity.RoleOwner})}

	_, err := f.svc.CreateHousing(ctx, f.owner, req)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	var count int64
	require.NoError(t, f.db.Model(&entity.Housing{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListHousing_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 1000000)
	testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 2500000)
	testutil.CreateHousing(t, f.db, f.owner.ID, "Bandung", 1200000)
	rented := testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 900000)
	require.NoError(t, f.db.Model(rented).Update("status", entity.HousingRented).Error)

	maxPrice := 2000000.0
	page, err := f.svc.ListHousing(ctx, dto.HousingFilter{City: "dep", MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1000000.0, page.Data[0].Price)
	assert.Equal(t, int64(1), page.Meta.TotalItems)

	all, err := f.svc.ListHousing(ctx, dto.HousingFilter{Status: "all", Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, all.Data, 4)
	assert.Equal(t, 900000.0, all.Data[0].Price)
	assert.Equal(t, 2500000.0, all.Data[3].Price)

	available, err := f.svc.ListHousing(ctx, dto.HousingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), available.Meta.TotalItems)

	minPrice := 3000000.0
	_, err = f.svc.ListHousing(ctx, dto.HousingFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestListHousing_Pagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", float64(1000000+i))
	}

	filter := dto.HousingFilter{}
	filter.Page = 2
	filter.Limit = 2
	page, err := f.svc.ListHousing(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(5), page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.Equal(t, 2, page.Meta.CurrentPage)
}

func TestGetHousing_CountsViews(t *testing.T) {
	f := newFixture(t)
	h := testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 1000000)

	_, err := f.svc.GetHousing(context.Background(), h.ID, "ip:127.0.0.1")
	require.NoError(t, err)
	res, err := f.svc.GetHousing(context.Background(), h.ID, "ip:127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Views)

	_, err = f.svc.GetHousing(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateHousing_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 1000000)

	price := 1750000.0
	res, err := f.svc.UpdateHousing(ctx, f.owner, h.ID, dto.UpdateHousingRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, price, res.Price)

	stranger := entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}
	_, err = f.svc.UpdateHousing(ctx, stranger, h.ID, dto.UpdateHousingRequest{Price: &price})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, stranger, h.ID, entity.HousingRented)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	res, err = f.svc.UpdateStatus(ctx, f.owner, h.ID, entity.HousingRented)
	require.NoError(t, err)
	assert.Equal(t, string(entity.HousingRented), res.Status)
}

func TestUpdateHousing_ReplacesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest()
	first := f.upload(t, f.owner)
	req.ImageIDs = []uuid.UUID{first}
	created, err := f.svc.CreateHousing(ctx, f.owner, req)
	require.NoError(t, err)

	second := f.upload(t, f.owner)
	res, err := f.svc.UpdateHousing(ctx, f.owner, created.ID, dto.UpdateHousingRequest{ImageIDs: &[]uuid.UUID{second}})
	require.NoError(t, err)
	require.Len(t, res.Images, 1)

	var released entity.Image
	require.NoError(t, f.db.First(&released, "id = ?", first).Error)
	assert.Nil(t, released.HousingID)
}

func TestDeleteHousing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRequest()
	req.ImageIDs = []uuid.UUID{f.upload(t, f.owner)}
	created, err := f.svc.CreateHousing(ctx, f.owner, req)
	require.NoError(t, err)

	err = f.svc.DeleteHousing(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}, created.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	err = f.svc.DeleteHousing(ctx, entity.Actor{ID: f.owner.ID, Role: entity.RoleStudent}, created.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	var count int64
	require.NoError(t, f.db.Model(&entity.Housing{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, f.svc.DeleteHousing(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}, created.ID))
	require.NoError(t, f.db.Model(&entity.Housing{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.store.Count())
	assert.Equal(t, []uuid.UUID{created.ID}, f.search.deleted)
}

func TestGetContact(t *testing.T) {
	f := newFixture(t)
	h := testutil.CreateHousing(t, f.db, f.owner.ID, "Depok", 1000000)

	contact, err := f.svc.GetContact(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@mail.com", contact.Email)
	assert.Equal(t, "Test Owner", contact.Name)
}
