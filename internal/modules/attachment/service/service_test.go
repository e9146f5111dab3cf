package attachment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/attachment/repository"
	"talib.app/backend/internal/testutil"
	"talib.app/backend/pkg/apperror"
)

// pngHeader is enough for content sniffing to recognise a PNG.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type MockImageStorage struct {
	UploadFunc func(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	Uploads    int
	Deleted    []string
}

func (m *MockImageStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	m.Uploads++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, r, folder, fileName)
	}
	return "/uploads/" + folder + "/" + uuid.NewString() + "-" + fileName, nil
}

func (m *MockImageStorage) DeleteImage(ctx context.Context, fileURL string) error {
	m.Deleted = append(m.Deleted, fileURL)
	return nil
}

func newService(t *testing.T, store *MockImageStorage, maxSize int64) (*attachmentService, repository.AttachmentRepository) {
	svc, repo, _ := newServiceWithDB(t, store, maxSize)
	return svc, repo
}

func newServiceWithDB(t *testing.T, store *MockImageStorage, maxSize int64) (*attachmentService, repository.AttachmentRepository, *gorm.DB) {
	db := testutil.NewDB(t)
	repo := repository.NewAttachmentRepository(db)
	svc := NewAttachmentService(repo, store, maxSize, nil, zap.NewNop()).(*attachmentService)
	return svc, repo, db
}

func TestSniffImage(t *testing.T) {
	contentType, ext, ok := SniffImage(pngHeader)
	assert.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	_, _, ok = SniffImage([]byte("<?php echo 'hi'; ?>"))
	assert.False(t, ok)
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	store := &MockImageStorage{}
	svc, _ := newService(t, store, 5<<20)
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}

	_, err := svc.UploadImage(context.Background(), actor, bytes.NewReader([]byte("plain text pretending to be a jpg")))
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, store.Uploads)
}

func TestUploadImage_RejectsOversize(t *testing.T) {
	store := &MockImageStorage{}
	svc, _ := newService(t, store, int64(len(pngHeader)+10))
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}

	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	_, err := svc.UploadImage(context.Background(), actor, bytes.NewReader(big))
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, store.Uploads)
}

func TestUploadImage_Success(t *testing.T) {
	store := &MockImageStorage{}
	svc, _ := newService(t, store, 5<<20)
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}

	resp, err := svc.UploadImage(context.Background(), actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Contains(t, resp.URL, ".png")
	assert.Equal(t, 1, store.Uploads)
}

func TestUploadImage_StorageFailure(t *testing.T) {
	store := &MockImageStorage{UploadFunc: func(context.Context, io.Reader, string, string) (string, error) {
		return "", errors.New("bucket unavailable")
	}}
	svc, _ := newService(t, store, 5<<20)

	_, err := svc.UploadImage(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}, bytes.NewReader(pngHeader))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrBadRequest)
}

func TestAttachToHousing(t *testing.T) {
	store := &MockImageStorage{}
	svc, repo, db := newServiceWithDB(t, store, 5<<20)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, db, "budi@kos.id")
	housing := testutil.CreateHousing(t, db, owner.ID, "Bandung", 1500)
	actor := entity.Actor{ID: owner.ID, Role: entity.RoleOwner}

	first, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	second, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	foreign, err := svc.UploadImage(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleOwner}, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, svc.AttachToHousing(ctx, housing.ID, owner.ID, []uuid.UUID{second.ID, first.ID}))

	images, err := repo.FindByListing(ctx, repository.TargetHousing, housing.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, second.ID, images[0].ID)

	err = svc.AttachToHousing(ctx, housing.ID, owner.ID, []uuid.UUID{foreign.ID})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	// A rejected attach leaves the listing's images in place.
	images, err = repo.FindByListing(ctx, repository.TargetHousing, housing.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	tooMany := make([]uuid.UUID, MaxImagesPerListing+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	assert.ErrorIs(t, svc.AttachToHousing(ctx, housing.ID, owner.ID, tooMany), apperror.ErrBadRequest)
}

func TestAttachToHousing_ResubmitUnchanged(t *testing.T) {
	store := &MockImageStorage{}
	svc, repo, db := newServiceWithDB(t, store, 5<<20)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, db, "budi@kos.id")
	housing := testutil.CreateHousing(t, db, owner.ID, "Bandung", 1500)
	actor := entity.Actor{ID: owner.ID, Role: entity.RoleOwner}

	first, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	second, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	ids := []uuid.UUID{first.ID, second.ID}

	require.NoError(t, svc.AttachToHousing(ctx, housing.ID, owner.ID, ids))
	require.NoError(t, svc.AttachToHousing(ctx, housing.ID, owner.ID, ids))

	linked, err := repo.Attach(ctx, repository.TargetHousing, housing.ID, owner.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), linked)

	images, err := repo.FindByListing(ctx, repository.TargetHousing, housing.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, first.ID, images[0].ID)
	assert.Equal(t, second.ID, images[1].ID)
}

func TestAttachToItem_ImageOnHousingIsRejected(t *testing.T) {
	store := &MockImageStorage{}
	svc, _, db := newServiceWithDB(t, store, 5<<20)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, db, "budi@kos.id")
	housing := testutil.CreateHousing(t, db, owner.ID, "Bandung", 1500)
	student := testutil.CreateStudent(t, db, "sari@uni.edu")
	item := testutil.CreateItem(t, db, student.ID, "textbooks", 10)

	img, err := svc.UploadImage(ctx, entity.Actor{ID: owner.ID, Role: entity.RoleOwner}, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.NoError(t, svc.AttachToHousing(ctx, housing.ID, owner.ID, []uuid.UUID{img.ID}))

	err = svc.AttachToItem(ctx, item.ID, owner.ID, []uuid.UUID{img.ID})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestCleanupOrphanAttachments(t *testing.T) {
	store := &MockImageStorage{}
	svc, repo, db := newServiceWithDB(t, store, 5<<20)
	ctx := context.Background()

	student := testutil.CreateStudent(t, db, "sari@uni.edu")
	item := testutil.CreateItem(t, db, student.ID, "textbooks", 10)
	actor := entity.Actor{ID: student.ID, Role: entity.RoleStudent}

	orphan, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	kept, err := svc.UploadImage(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	linked, err := repo.Attach(ctx, repository.TargetItem, item.ID, actor.ID, []uuid.UUID{kept.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), linked)

	svc.now = func() time.Time { return time.Now().Add(OrphanTTL + time.Hour) }

	removed, err := svc.CleanupOrphanAttachments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{orphan.URL}, store.Deleted)

	images, err := repo.FindByListing(ctx, repository.TargetItem, item.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}
