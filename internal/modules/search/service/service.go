package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"talib.app/backend/internal/entity"
	"talib.app/backend/pkg/sanitizer"
)

const (
	IndexHousing = "housing"
	IndexItems   = "items"
)

// SearchService keeps listings in a full-text index and queries it.
type SearchService interface {
	IndexHousing(housing *entity.Housing) error
	IndexItem(item *entity.Item) error
	Delete(kind entity.ContentKind, id uuid.UUID) error
	// Search returns matching ids in relevance order.
	Search(ctx context.Context, kind entity.ContentKind, query string, limit int) ([]uuid.UUID, error)
	Enabled() bool
}

type housingDoc struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	CreatedAt   int64   `json:"created_at"`
}

type itemDoc struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	IsSold      bool    `json:"is_sold"`
	Price       float64 `json:"price"`
	CreatedAt   int64   `json:"created_at"`
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	logger *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, logger *zap.Logger) SearchService {
	s := &meiliSearchService{client: client, logger: logger}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	housingFilterable := []any{"status", "type", "city"}
	if _, err := s.client.Index(IndexHousing).UpdateFilterableAttributes(&housingFilterable); err != nil {
		s.logger.Warn("failed to update housing filterable attributes", zap.Error(err))
	}
	itemFilterable := []any{"is_sold", "category", "condition"}
	if _, err := s.client.Index(IndexItems).UpdateFilterableAttributes(&itemFilterable); err != nil {
		s.logger.Warn("failed to update items filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at", "price"}
	for _, index := range []string{IndexHousing, IndexItems} {
		if _, err := s.client.Index(index).UpdateSortableAttributes(&sortable); err != nil {
			s.logger.Warn("failed to update sortable attributes", zap.String("index", index), zap.Error(err))
		}
	}

	s.logger.Info("meilisearch indexes initialized")
}

func (s *meiliSearchService) Enabled() bool {
	return true
}

func (s *meiliSearchService) IndexHousing(housing *entity.Housing) error {
	doc := housingDoc{
		ID:          housing.ID.String(),
		Title:       housing.Title,
		Description: sanitizer.SearchText(housing.Description),
		City:        housing.City,
		Address:     housing.Address,
		Type:        string(housing.Type),
		Status:      string(housing.Status),
		Price:       housing.Price,
		CreatedAt:   housing.CreatedAt.Unix(),
	}

	task, err := s.client.Index(IndexHousing).AddDocuments([]housingDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.logger.Debug("indexed housing", zap.String("id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) IndexItem(item *entity.Item) error {
	doc := itemDoc{
		ID:          item.ID.String(),
		Title:       item.Title,
		Description: sanitizer.SearchText(item.Description),
		Category:    item.Category,
		Condition:   string(item.Condition),
		IsSold:      item.IsSold,
		Price:       item.Price,
		CreatedAt:   item.CreatedAt.Unix(),
	}
	if item.Location != nil {
		doc.Location = *item.Location
	}

	task, err := s.client.Index(IndexItems).AddDocuments([]itemDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.logger.Debug("indexed item", zap.String("id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) Delete(kind entity.ContentKind, id uuid.UUID) error {
	index, err := indexFor(kind)
	if err != nil {
		return err
	}
	_, err = s.client.Index(index).DeleteDocument(id.String())
	return err
}

func (s *meiliSearchService) Search(ctx context.Context, kind entity.ContentKind, query string, limit int) ([]uuid.UUID, error) {
	index, err := indexFor(kind)
	if err != nil {
		return nil, err
	}

	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	switch kind {
	case entity.KindHousing:
		req.Filter = "status = available"
	case entity.KindItem:
		req.Filter = "is_sold = false"
	}

	resp, err := s.client.Index(index).SearchWithContext(ctx, sanitizer.SearchText(query), req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	return decodeHitIDs(resp.Hits)
}

// decodeHitIDs round-trips hits through JSON so it works with any hit representation.
func decodeHitIDs(hits any) ([]uuid.UUID, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func indexFor(kind entity.ContentKind) (string, error) {
	switch kind {
	case entity.KindHousing:
		return IndexHousing, nil
	case entity.KindItem:
		return IndexItems, nil
	}
	return "", fmt.Errorf("kind %q is not searchable", kind)
}

func strPtr(s string) *string {
	return &s
}

// NewNoopSearchService is used when no search engine is configured; Search callers fall back to SQL.
func NewNoopSearchService() SearchService {
	return noopSearchService{}
}

type noopSearchService struct{}

func (noopSearchService) IndexHousing(*entity.Housing) error {
	return nil
}

func (noopSearchService) IndexItem(*entity.Item) error {
	return nil
}

func (noopSearchService) Delete(entity.ContentKind, uuid.UUID) error {
	return nil
}

func (noopSearchService) Enabled() bool {
	return false
}

func (noopSearchService) Search(context.Context, entity.ContentKind, string, int) ([]uuid.UUID, error) {
	return nil, nil
}
