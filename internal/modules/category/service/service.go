package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/category/dto"
	"talib.app/backend/internal/modules/category/repository"
	"talib.app/backend/pkg/apperror"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// Exists reports whether slug names a known item category.
	Exists(ctx context.Context, slug string) (bool, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	source := req.Name
	if req.Slug != "" {
		source = req.Slug
	}
	slug := Slugify(source)
	if slug == "" {
		return nil, fmt.Errorf("category slug must contain letters or digits: %w", apperror.ErrBadRequest)
	}

	category := &entity.ItemCategory{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("category %s already exists: %w", slug, apperror.ErrConflict)
	}

	resp := toResponse(*category)
	return &resp, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		responses = append(responses, toResponse(cat))
	}
	return responses, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	inUse, err := s.repo.CountItems(ctx, category.Slug)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("category %s is used by %d items: %w", category.Slug, inUse, apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}

func (s *categoryService) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toResponse(cat entity.ItemCategory) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Slug:        cat.Slug,
		Description: cat.Description,
	}
}
