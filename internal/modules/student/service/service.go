package student

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	attachment "talib.app/backend/internal/modules/attachment/service"
	"talib.app/backend/internal/modules/student/dto"
	"talib.app/backend/internal/modules/student/repository"
	search "talib.app/backend/internal/modules/search/service"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/sanitizer"
	"talib.app/backend/pkg/storage"
)

type StudentService interface {
	GetProfile(ctx context.Context, viewer entity.Actor, id uuid.UUID) (*dto.StudentResponse, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req dto.UpdateStudentRequest, avatar io.Reader) (*dto.StudentResponse, error)
	GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error)
	ListStudents(ctx context.Context, filter dto.StudentFilter) (*commonDto.Paginated[dto.StudentResponse], error)
	DeleteStudent(ctx context.Context, id uuid.UUID) error
}

type studentService struct {
	repo        repository.StudentRepository
	attachments attachment.AttachmentService
	search      search.SearchService
	fileStorage storage.ImageStorage
	logger      *zap.Logger
}

func NewStudentService(repo repository.StudentRepository, attachments attachment.AttachmentService, searchService search.SearchService, fileStorage storage.ImageStorage, logger *zap.Logger) StudentService {
	return &studentService{
		repo:        repo,
		attachments: attachments,
		search:      searchService,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *studentService) find(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return student, nil
}

func (s *studentService) GetProfile(ctx context.Context, viewer entity.Actor, id uuid.UUID) (*dto.StudentResponse, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	private := viewer.IsAdmin() || (viewer.Role == entity.RoleStudent && viewer.ID == id)
	resp := ToResponse(student, private)
	return &resp, nil
}

func (s *studentService) UpdateProfile(ctx context.Context, id uuid.UUID, req dto.UpdateStudentRequest, avatar io.Reader) (*dto.StudentResponse, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		name := strings.TrimSpace(sanitizer.PlainText(*req.FirstName))
		if name == "" {
			return nil, fmt.Errorf("first name cannot be empty: %w", apperror.ErrBadRequest)
		}
		updates["first_name"] = name
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(sanitizer.PlainText(*req.LastName))
	}
	if req.University != nil {
		updates["university"] = sanitizer.PlainTextPtr(req.University)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}

	var oldAvatar *string
	if avatar != nil {
		url, err := s.attachments.StoreAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		updates["avatar_url"] = url
		oldAvatar = student.AvatarURL
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if url, ok := updates["avatar_url"].(string); ok {
			_ = s.fileStorage.DeleteImage(ctx, url)
		}
		return nil, err
	}

	if oldAvatar != nil && *oldAvatar != "" {
		if err := s.fileStorage.DeleteImage(ctx, *oldAvatar); err != nil {
			s.logger.Warn("failed to delete previous avatar", zap.String("url", *oldAvatar), zap.Error(err))
		}
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(updated, true)
	return &resp, nil
}

func (s *studentService) GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &commonDto.ContactResponse{
		Name:  student.FullName(),
		Email: student.Email,
		Phone: student.Phone,
	}, nil
}

func (s *studentService) ListStudents(ctx context.Context, filter dto.StudentFilter) (*commonDto.Paginated[dto.StudentResponse], error) {
	filter.Normalize()
	students, total, err := s.repo.List(ctx, filter.Search, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		data = append(data, ToResponse(&students[i], true))
	}
	return commonDto.NewPaginated(data, filter.PageQuery, total), nil
}

// DeleteStudent removes the account; the database cascades to its listings, so their
// files and search documents are collected first and cleaned up afterwards.
func (s *studentService) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	student, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	listingIDs, images, err := s.repo.Listings(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("student not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.DeleteFiles(ctx, images)
	if student.AvatarURL != nil && *student.AvatarURL != "" {
		if err := s.fileStorage.DeleteImage(ctx, *student.AvatarURL); err != nil {
			s.logger.Warn("failed to delete avatar", zap.String("url", *student.AvatarURL), zap.Error(err))
		}
	}
	for _, listingID := range listingIDs {
		if err := s.search.Delete(entity.KindItem, listingID); err != nil {
			s.logger.Warn("failed to remove item from search index", zap.String("item_id", listingID.String()), zap.Error(err))
		}
	}

	s.logger.Info("student deleted", zap.String("student_id", id.String()), zap.Int("listings", len(listingIDs)))
	return nil
}

func ToResponse(student *entity.Student, private bool) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:         student.ID,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		FullName:   student.FullName(),
		University: student.University,
		AvatarURL:  student.AvatarURL,
		CreatedAt:  student.CreatedAt,
	}
	if private {
		resp.Email = student.Email
		resp.Phone = student.Phone
	}
	return resp
}
