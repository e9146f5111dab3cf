package owner

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
	"talib.app/backend/internal/modules/owner/dto"
	"talib.app/backend/internal/modules/owner/repository"
	search "talib.app/backend/internal/modules/search/service"
	"talib.app/backend/pkg/apperror"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/sanitizer"
	"talib.app/backend/pkg/storage"
)

type OwnerService interface {
	GetProfile(ctx context.Context, viewer entity.Actor, id uuid.UUID) (*dto.OwnerResponse, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req dto.UpdateOwnerRequest, avatar io.Reader) (*dto.OwnerResponse, error)
	GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error)
	ListOwners(ctx context.Context, filter dto.OwnerFilter) (*commonDto.Paginated[dto.OwnerResponse], error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*dto.OwnerResponse, error)
	DeleteOwner(ctx context.Context, id uuid.UUID) error
}

type ownerService struct {
	repo        repository.OwnerRepository
	attachments attachment.AttachmentService
	search      search.SearchService
	fileStorage storage.ImageStorage
	logger      *zap.Logger
}

func NewOwnerService(repo repository.OwnerRepository, attachments attachment.AttachmentService, searchService search.SearchService, fileStorage storage.ImageStorage, logger *zap.Logger) OwnerService {
	return &ownerService{
		repo:        repo,
		attachments: attachments,
		search:      searchService,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *ownerService) find(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	owner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("owner not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return owner, nil
}

func (s *ownerService) GetProfile(ctx context.Context, viewer entity.Actor, id uuid.UUID) (*dto.OwnerResponse, error) {
	owner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	private := viewer.IsAdmin() || (viewer.Role == entity.RoleOwner && viewer.ID == id)
	resp := ToResponse(owner, private)
	return &resp, nil
}

func (s *ownerService) UpdateProfile(ctx context.Context, id uuid.UUID, req dto.UpdateOwnerRequest, avatar io.Reader) (*dto.OwnerResponse, error) {
	owner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FullName != nil {
		name := strings.TrimSpace(sanitizer.PlainText(*req.FullName))
		if name == "" {
			return nil, fmt.Errorf("full name cannot be empty: %w", apperror.ErrBadRequest)
		}
		updates["full_name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.CompanyName != nil {
		updates["company_name"] = sanitizer.PlainTextPtr(req.CompanyName)
	}

	var oldAvatar *string
	if avatar != nil {
		url, err := s.attachments.StoreAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		updates["avatar_url"] = url
		oldAvatar = owner.AvatarURL
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

func (s *ownerService) GetContact(ctx context.Context, id uuid.UUID) (*commonDto.ContactResponse, error) {
	owner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &commonDto.ContactResponse{
		Name:        owner.FullName,
		Email:       owner.Email,
		Phone:       owner.Phone,
		CompanyName: owner.CompanyName,
	}, nil
}

func (s *ownerService) ListOwners(ctx context.Context, filter dto.OwnerFilter) (*commonDto.Paginated[dto.OwnerResponse], error) {
	filter.Normalize()
	owners, total, err := s.repo.List(ctx, filter.Search, filter.Verified, filter.Limit, filter.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]dto.OwnerResponse, 0, len(owners))
	for i := range owners {
		data = append(data, ToResponse(&owners[i], true))
	}
	return commonDto.NewPaginated(data, filter.PageQuery, total), nil
}

func (s *ownerService) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*dto.OwnerResponse, error) {
	if err := s.repo.Update(ctx, id, map[string]any{"is_verified": verified}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("owner not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	owner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(owner, true)
	return &resp, nil
}

// DeleteOwner removes the account; the database cascades to its listings, so their
// files and search documents are collected first and cleaned up afterwards.
func (s *ownerService) DeleteOwner(ctx context.Context, id uuid.UUID) error {
	owner, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	listingIDs, images, err := s.repo.Listings(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("owner not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.DeleteFiles(ctx, images)
	if owner.AvatarURL != nil && *owner.AvatarURL != "" {
		if err := s.fileStorage.DeleteImage(ctx, *owner.AvatarURL); err != nil {
			s.logger.Warn("failed to delete avatar", zap.String("url", *owner.AvatarURL), zap.Error(err))
		}
	}
	for _, listingID := range listingIDs {
		if err := s.search.Delete(entity.KindHousing, listingID); err != nil {
			s.logger.Warn("failed to remove housing from search index", zap.String("housing_id", listingID.String()), zap.Error(err))
		}
	}

	s.logger.Info("owner deleted", zap.String("owner_id", id.String()), zap.Int("listings", len(listingIDs)))
	return nil
}

func ToResponse(owner *entity.Owner, private bool) dto.OwnerResponse {
	resp := dto.OwnerResponse{
		ID:          owner.ID,
		FullName:    owner.FullName,
		CompanyName: owner.CompanyName,
		AvatarURL:   owner.AvatarURL,
		IsVerified:  owner.IsVerified,
		CreatedAt:   owner.CreatedAt,
	}
	if private {
		resp.Email = owner.Email
		resp.Phone = owner.Phone
	}
	return resp
}
