package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/shopward/catalog/pkg/errors"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
)

// CatalogService implements the storefront read path. Every product it
// returns carries its promo annotation, resolved at request time against the
// promos whose window contains the request instant.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	promos     repository.PromoRepository
	settings   repository.SettingsRepository
	cache      *cache.CatalogCache
	logger     *slog.Logger
}

// NewCatalogService creates a new storefront catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	promos repository.PromoRepository,
	settings repository.SettingsRepository,
	catalogCache *cache.CatalogCache,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		promos:     promos,
		settings:   settings,
		cache:      catalogCache,
		logger:     logger,
	}
}

// ListCategories returns all categories with their product counts.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if hit, err := s.cache.Get(ctx, cache.CategoriesKey, &cached); err != nil {
		s.logCacheError(ctx, "get", cache.CategoriesKey, err)
	} else if hit {
		return cached, nil
	}

	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.cache.Set(ctx, cache.CategoriesKey, categories); err != nil {
		s.logCacheError(ctx, "set", cache.CategoriesKey, err)
	}

	return categories, nil
}

// GetCategoryBySlug returns a single category by its slug.
func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	key := cache.CategoryKey(slug)

	var cached domain.Category
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logCacheError(ctx, "get", key, err)
	} else if hit {
		return &cached, nil
	}

	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}

	if err := s.cache.Set(ctx, key, category); err != nil {
		s.logCacheError(ctx, "set", key, err)
	}

	return category, nil
}

// GetCategoryWithProducts returns a category by slug together with a page of
// its published products, each annotated with the applicable promo.
func (s *CatalogService) GetCategoryWithProducts(ctx context.Context, slug string, filter repository.ProductFilter) (*domain.Category, []domain.PricedProduct, int, error) {
	category, err := s.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, nil, 0, err
	}

	filter.CategoryID = &category.ID
	priced, total, err := s.ListProducts(ctx, filter)
	if err != nil {
		return nil, nil, 0, err
	}

	return category, priced, total, nil
}

// ListProducts returns published products matching the filter, each annotated
// with its applicable promo. The total count reflects the filter, not the page.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.PricedProduct, int, error) {
	// The storefront only ever sees published products.
	published := domain.ProductStatusPublished
	filter.Status = &published

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = s.defaultPerPage(ctx)
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	now := time.Now().UTC()
	priced, err := s.annotate(ctx, products, now)
	if err != nil {
		return nil, 0, err
	}

	return priced, total, nil
}

// GetProductBySlug returns a single published product with its promo
// annotation. Unpublished products are invisible to the storefront.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.PricedProduct, error) {
	key := cache.ProductKey(slug)

	var cached domain.PricedProduct
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logCacheError(ctx, "get", key, err)
	} else if hit {
		return &cached, nil
	}

	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	if product.Status != domain.ProductStatusPublished {
		return nil, apperrors.NotFound("product", slug)
	}

	now := time.Now().UTC()
	priced, err := s.annotate(ctx, []domain.Product{*product}, now)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, &priced[0]); err != nil {
		s.logCacheError(ctx, "set", key, err)
	}

	return &priced[0], nil
}

// ListActivePromos returns the promos active at the request instant, ordered
// by resolution precedence.
func (s *CatalogService) ListActivePromos(ctx context.Context) ([]domain.Promo, error) {
	var cached []domain.Promo
	if hit, err := s.cache.Get(ctx, cache.ActivePromosKey, &cached); err != nil {
		s.logCacheError(ctx, "get", cache.ActivePromosKey, err)
	} else if hit {
		return cached, nil
	}

	now := time.Now().UTC()
	candidates, err := s.promos.ListActiveWindow(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("list active promos: %w", err)
	}

	// The window query prunes by flag and dates only; re-check the full
	// activity predicate so malformed records never surface.
	active := make([]domain.Promo, 0, len(candidates))
	for _, p := range candidates {
		if p.IsActiveAt(now) {
			active = append(active, p)
		}
	}

	if err := s.cache.Set(ctx, cache.ActivePromosKey, active); err != nil {
		s.logCacheError(ctx, "set", cache.ActivePromosKey, err)
	}

	return active, nil
}

// annotate resolves the applicable promo for each product's category and
// attaches the discount annotation.
func (s *CatalogService) annotate(ctx context.Context, products []domain.Product, now time.Time) ([]domain.PricedProduct, error) {
	priced := make([]domain.PricedProduct, 0, len(products))
	if len(products) == 0 {
		return priced, nil
	}

	categoryIDs := distinctCategoryIDs(products)
	candidates, err := s.promos.ListActiveWindow(ctx, categoryIDs, now)
	if err != nil {
		return nil, fmt.Errorf("list promo candidates: %w", err)
	}

	for _, product := range products {
		promo := domain.ResolveApplicablePromo(candidates, product.CategoryID, now)
		priced = append(priced, domain.AnnotateProduct(product, promo, now))
	}

	return priced, nil
}

// defaultPerPage reads the configured page size from store settings, falling
// back to a sane default when settings are unavailable.
func (s *CatalogService) defaultPerPage(ctx context.Context) int {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load store settings, using default page size",
			slog.String("error", err.Error()),
		)
		return 12
	}
	return settings.ItemsPerPage
}

func (s *CatalogService) logCacheError(ctx context.Context, op, key string, err error) {
	s.logger.WarnContext(ctx, "catalog cache error",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

func distinctCategoryIDs(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.CategoryID]; ok {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}
	return ids
}
