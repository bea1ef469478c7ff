package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

// SnapshotCacheKey is where the serialized catalog is cached
const SnapshotCacheKey = "catalog:snapshot"

const (
	defaultSnapshotTTL = 10 * time.Minute
	defaultPageSize    = 20
	defaultMaxPageSize = 100
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// CatalogService serves filtered, ranked and paginated views of the catalog.
// Flow: check cache -> load from source -> cache -> filter/rank
type CatalogService struct {
	repo            domain.CatalogRepository
	cache           domain.CacheRepository
	cacheTTL        time.Duration
	defaultPageSize int
	maxPageSize     int
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(
	repo domain.CatalogRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultSnapshotTTL
	}
	pageSize := config.DefaultPageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPageSize := config.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = defaultMaxPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &CatalogService{
		repo:            repo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		defaultPageSize: pageSize,
		maxPageSize:     maxPageSize,
	}
}

// Snapshot returns the full catalog, served from cache when possible
func (s *CatalogService) Snapshot(ctx context.Context) ([]domain.Product, error) {
	if products, ok := s.getFromCache(ctx); ok {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	s.setInCache(ctx, products)
	return products, nil
}

// Refresh drops the cached snapshot and reloads it from the source
func (s *CatalogService) Refresh(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, SnapshotCacheKey); err != nil {
			log.Warn().Err(err).Str("component", "catalog").Msg("failed to drop cached snapshot")
		}
	}
	return s.Snapshot(ctx)
}

// Search filters the catalog and returns the requested page
func (s *CatalogService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.ProductPage, error) {
	if request == nil {
		request = &domain.SearchRequest{}
	}

	catalog, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := FilterProducts(catalog, request.SearchFilters)
	return s.paginate(filtered, request.Page, request.PageSize), nil
}

// paginate slices products into a 1-based page, clamping page and size
func (s *CatalogService) paginate(products []domain.Product, page, pageSize int) *domain.ProductPage {
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(products)
	totalPages := (total + pageSize - 1) / pageSize

	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	items := make([]domain.Product, end-start)
	copy(items, products[start:end])

	return &domain.ProductPage{
		Products:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Rank orders the catalog by relevance and preferences, truncated to
// request.Limit when positive
func (s *CatalogService) Rank(ctx context.Context, request *domain.RankRequest) ([]domain.Product, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	ranked := RankProducts(catalog, request.Query, request.Preferences)
	if request.Limit > 0 && request.Limit < len(ranked) {
		ranked = ranked[:request.Limit]
	}
	return ranked, nil
}

// Suggestions returns the filter facets of the current catalog
func (s *CatalogService) Suggestions(ctx context.Context) (domain.FilterSuggestions, error) {
	catalog, err := s.Snapshot(ctx)
	if err != nil {
		return domain.FilterSuggestions{}, err
	}
	return GetFilterSuggestions(catalog), nil
}

// GetProduct looks a product up by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for i := range catalog {
		if catalog[i].ID == id {
			p := catalog[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
}

// getFromCache decodes the cached snapshot. Any failure counts as a miss.
func (s *CatalogService) getFromCache(ctx context.Context) ([]domain.Product, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, SnapshotCacheKey)
	if err != nil {
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		log.Warn().Err(err).Str("component", "catalog").Msg("discarding unreadable cached snapshot")
		return nil, false
	}
	return products, true
}

// setInCache stores the snapshot; failures are logged and ignored
func (s *CatalogService) setInCache(ctx context.Context, products []domain.Product) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(products)
	if err != nil {
		log.Warn().Err(err).Str("component", "catalog").Msg("failed to encode snapshot")
		return
	}
	if err := s.cache.Set(ctx, SnapshotCacheKey, raw, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("component", "catalog").Msg("failed to cache snapshot")
	}
}
