package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/modules/content/repository"
	"talib.app/backend/pkg/apperror"
)

type Summary = repository.Summary

// Resolver looks up any content kind a favorite or report can point at.
type Resolver interface {
	Resolve(ctx context.Context, ref entity.ContentRef) (*Summary, error)
}

type resolver struct {
	repo repository.ContentRepository
}

func NewResolver(repo repository.ContentRepository) Resolver {
	return &resolver{repo: repo}
}

func (r *resolver) Resolve(ctx context.Context, ref entity.ContentRef) (*Summary, error) {
	if !ref.Kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q: %w", ref.Kind, apperror.ErrBadRequest)
	}

	summary, err := r.repo.FindSummary(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s not found: %w", ref.Kind, apperror.ErrNotFound)
		}
		return nil, err
	}
	return summary, nil
}
