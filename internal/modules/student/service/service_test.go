package student

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	attachmentRepo "talib.app/backend/internal/modules/attachment/repository"
	attachment "talib.app/backend/internal/modules/attachment/service"
	"talib.app/backend/internal/modules/student/dto"
	"talib.app/backend/internal/modules/student/repository"
	"talib.app/backend/internal/testutil"
	"talib.app/backend/pkg/apperror"
)

type recordingSearch struct {
	deleted map[entity.ContentKind][]uuid.UUID
}

func (r *recordingSearch) IndexHousing(*entity.Housing) error { return nil }

func (r *recordingSearch) IndexItem(*entity.Item) error { return nil }

func (r *recordingSearch) Delete(kind entity.ContentKind, id uuid.UUID) error {
	if r.deleted == nil {
		r.deleted = map[entity.ContentKind][]uuid.UUID{}
	}
	r.deleted[kind] = append(r.deleted[kind], id)
	return nil
}

func (r *recordingSearch) Search(context.Context, entity.ContentKind, string, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *recordingSearch) Enabled() bool { return true }

type fixture struct {
	db          *gorm.DB
	store       *testutil.MemoryStorage
	search      *recordingSearch
	attachments attachment.AttachmentService
	svc         StudentService
	student     *entity.Student
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	store := testutil.NewMemoryStorage()
	searcher := &recordingSearch{}
	attachments := attachment.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), store, 5<<20, nil, zap.NewNop())
	return &fixture{
		db:          db,
		store:       store,
		search:      searcher,
		attachments: attachments,
		svc:         NewStudentService(repository.NewStudentRepository(db), attachments, searcher, store, zap.NewNop()),
		student:     testutil.CreateStudent(t, db, "budi@campus.ac.id"),
	}
}

func newService(t *testing.T) (StudentService, *testutil.MemoryStorage, *entity.Student) {
	f := newFixture(t)
	return f.svc, f.store, f.student
}

func TestGetProfile_HidesPrivateFields(t *testing.T) {
	svc, _, student := newService(t)
	ctx := context.Background()

	self, err := svc.GetProfile(ctx, entity.Actor{ID: student.ID, Role: entity.RoleStudent}, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi@campus.ac.id", self.Email)

	// Same id under another role must not unlock private fields.
	impostor, err := svc.GetProfile(ctx, entity.Actor{ID: student.ID, Role: entity.RoleOwner}, student.ID)
	require.NoError(t, err)
	assert.Empty(t, impostor.Email)

	anonymous, err := svc.GetProfile(ctx, entity.Actor{}, student.ID)
	require.NoError(t, err)
	assert.Empty(t, anonymous.Email)
	assert.Equal(t, "Test Student", anonymous.FullName)

	admin, err := svc.GetProfile(ctx, entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi@campus.ac.id", admin.Email)

	_, err = svc.GetProfile(ctx, entity.Actor{}, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, store, student := newService(t)
	ctx := context.Background()

	first := "  Budi <b>Santoso</b> "
	university := "Universitas Indonesia"
	updated, err := svc.UpdateProfile(ctx, student.ID, dto.UpdateStudentRequest{
		FirstName:  &first,
		University: &university,
	}, bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", updated.FirstName)
	require.NotNil(t, updated.University)
	assert.Equal(t, university, *updated.University)
	require.NotNil(t, updated.AvatarURL)
	firstAvatar := *updated.AvatarURL
	assert.Equal(t, 1, store.Count())

	updated, err = svc.UpdateProfile(ctx, student.ID, dto.UpdateStudentRequest{}, bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	assert.NotEqual(t, firstAvatar, *updated.AvatarURL)
	assert.Equal(t, []string{firstAvatar}, store.Deleted)
	assert.Equal(t, 1, store.Count())
}

func TestUpdateProfile_RejectsInvalidInput(t *testing.T) {
	svc, store, student := newService(t)
	ctx := context.Background()

	blank := "   "
	_, err := svc.UpdateProfile(ctx, student.ID, dto.UpdateStudentRequest{FirstName: &blank}, nil)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.UpdateProfile(ctx, student.ID, dto.UpdateStudentRequest{}, strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, store.Count())
}

func TestListAndDelete(t *testing.T) {
	svc, _, student := newService(t)
	ctx := context.Background()

	page, err := svc.ListStudents(ctx, dto.StudentFilter{Search: "budi"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, student.ID, page.Data[0].ID)

	contact, err := svc.GetContact(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Student", contact.Name)

	require.NoError(t, svc.DeleteStudent(ctx, student.ID))
	assert.ErrorIs(t, svc.DeleteStudent(ctx, student.ID), apperror.ErrNotFound)
}

func TestDeleteStudent_CleansUpItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := entity.Actor{ID: f.student.ID, Role: entity.RoleStudent}

	avatar, err := f.svc.UpdateProfile(ctx, f.student.ID, dto.UpdateStudentRequest{}, bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	require.NotNil(t, avatar.AvatarURL)

	item := testutil.CreateItem(t, f.db, f.student.ID, "textbooks", 50)
	img, err := f.attachments.UploadImage(ctx, actor, bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	require.NoError(t, f.attachments.AttachToItem(ctx, item.ID, f.student.ID, []uuid.UUID{img.ID}))

	require.NoError(t, f.svc.DeleteStudent(ctx, f.student.ID))

	assert.Equal(t, []uuid.UUID{item.ID}, f.search.deleted[entity.KindItem])
	assert.ElementsMatch(t, []string{img.URL, *avatar.AvatarURL}, f.store.Deleted)

	var remaining int64
	require.NoError(t, f.db.Model(&entity.Item{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestDeleteStudent_WithoutListings(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.DeleteStudent(context.Background(), f.student.ID))
	assert.Empty(t, f.search.deleted)
	assert.Empty(t, f.store.Deleted)
}
