package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/metrics"
	"talib.app/backend/internal/modules/attachment/dto"
	"talib.app/backend/internal/modules/attachment/repository"
	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/storage"
)

const (
	MaxImagesPerListing = 10
	OrphanTTL           = 24 * time.Hour
	uploadFolder        = "images"
	avatarFolder        = "avatars"
)

// AllowedImageTypes is matched against the sniffed content, never the client's header.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type AttachmentService interface {
	UploadImage(ctx context.Context, actor entity.Actor, r io.Reader) (*dto.UploadImageResponse, error)
	// StoreAvatar validates and stores a profile picture without an image row.
	StoreAvatar(ctx context.Context, r io.Reader) (string, error)
	AttachToHousing(ctx context.Context, housingID, ownerID uuid.UUID, imageIDs []uuid.UUID) error
	AttachToItem(ctx context.Context, itemID, studentID uuid.UUID, imageIDs []uuid.UUID) error
	// DeleteFiles removes stored files of images whose rows are already gone.
	DeleteFiles(ctx context.Context, images []entity.Image)
	CleanupOrphanAttachments(ctx context.Context) (int, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.ImageStorage
	maxSize        int64
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, fileStorage storage.ImageStorage, maxSize int64, m *metrics.Metrics, logger *zap.Logger) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
		maxSize:        maxSize,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

// SniffImage returns the detected type and its extension when data is an allowed image.
func SniffImage(data []byte) (string, string, bool) {
	mt := mimetype.Detect(data)
	for _, allowed := range AllowedImageTypes {
		if mt.Is(allowed) {
			return allowed, mt.Extension(), true
		}
	}
	return mt.String(), "", false
}

// readImage enforces the size cap and the sniffed type allow-list before anything is stored.
func (s *attachmentService) readImage(r io.Reader) (data []byte, contentType, ext string, err error) {
	// One extra byte tells an exactly-max file apart from an oversize one.
	data, err = io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, "", "", fmt.Errorf("image must not exceed %d MB: %w", s.maxSize>>20, apperror.ErrBadRequest)
	}
	if len(data) == 0 {
		return nil, "", "", fmt.Errorf("image is empty: %w", apperror.ErrBadRequest)
	}

	contentType, ext, ok := SniffImage(data)
	if !ok {
		return nil, "", "", fmt.Errorf("unsupported file type %s, allowed: jpeg, png, gif, webp: %w", contentType, apperror.ErrBadRequest)
	}
	return data, contentType, ext, nil
}

func (s *attachmentService) UploadImage(ctx context.Context, actor entity.Actor, r io.Reader) (*dto.UploadImageResponse, error) {
	data, contentType, ext, err := s.readImage(r)
	if err != nil {
		if errors.Is(err, apperror.ErrBadRequest) {
			s.metrics.RecordUpload("rejected")
		} else {
			s.metrics.RecordUpload("error")
		}
		return nil, err
	}

	url, err := s.fileStorage.UploadImage(ctx, bytes.NewReader(data), uploadFolder, "image"+ext)
	if err != nil {
		s.metrics.RecordUpload("error")
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	image := &entity.Image{
		UploaderID:   actor.ID,
		UploaderRole: actor.Role,
		FileURL:      url,
		ContentType:  contentType,
		Size:         int64(len(data)),
	}
	if err := s.attachmentRepo.Create(ctx, image); err != nil {
		if delErr := s.fileStorage.DeleteImage(ctx, url); delErr != nil {
			s.logger.Warn("failed to remove stored image after insert error", zap.String("url", url), zap.Error(delErr))
		}
		s.metrics.RecordUpload("error")
		return nil, err
	}

	s.metrics.RecordUpload("ok")
	return &dto.UploadImageResponse{
		ID:          image.ID,
		URL:         image.FileURL,
		ContentType: image.ContentType,
		Size:        image.Size,
	}, nil
}

func (s *attachmentService) StoreAvatar(ctx context.Context, r io.Reader) (string, error) {
	data, _, ext, err := s.readImage(r)
	if err != nil {
		return "", err
	}

	url, err := s.fileStorage.UploadImage(ctx, bytes.NewReader(data), avatarFolder, "avatar"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	return url, nil
}

func (s *attachmentService) AttachToHousing(ctx context.Context, housingID, ownerID uuid.UUID, imageIDs []uuid.UUID) error {
	return s.attach(ctx, repository.TargetHousing, housingID, ownerID, imageIDs)
}

func (s *attachmentService) AttachToItem(ctx context.Context, itemID, studentID uuid.UUID, imageIDs []uuid.UUID) error {
	return s.attach(ctx, repository.TargetItem, itemID, studentID, imageIDs)
}

func (s *attachmentService) attach(ctx context.Context, target string, listingID, uploaderID uuid.UUID, imageIDs []uuid.UUID) error {
	imageIDs = dedupe(imageIDs)
	if len(imageIDs) > MaxImagesPerListing {
		return fmt.Errorf("a listing can have at most %d images: %w", MaxImagesPerListing, apperror.ErrBadRequest)
	}

	linked, err := s.attachmentRepo.Attach(ctx, target, listingID, uploaderID, imageIDs)
	if err != nil {
		return err
	}
	if linked != int64(len(imageIDs)) {
		return fmt.Errorf("some images do not exist or belong to another listing: %w", apperror.ErrBadRequest)
	}
	return nil
}

func (s *attachmentService) DeleteFiles(ctx context.Context, images []entity.Image) {
	for _, img := range images {
		if err := s.fileStorage.DeleteImage(ctx, img.FileURL); err != nil {
			s.logger.Warn("failed to delete image file", zap.String("url", img.FileURL), zap.Error(err))
		}
	}
}

func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) (int, error) {
	orphans, err := s.attachmentRepo.FindOrphans(ctx, s.now().Add(-OrphanTTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if err := s.fileStorage.DeleteImage(ctx, orphan.FileURL); err != nil {
			s.logger.Warn("failed to delete orphan image file", zap.String("url", orphan.FileURL), zap.Error(err))
		}
		// The next run retries rows that fail to delete.
		if err := s.attachmentRepo.Delete(ctx, orphan.ID); err != nil {
			s.logger.Warn("failed to delete orphan image row", zap.String("id", orphan.ID.String()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
