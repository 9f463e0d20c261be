package repository

import (
	"context"
	"time"

	"github.com/shopward/catalog/internal/domain"
)

// Product sort orders accepted by ProductFilter.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID *string
	Search     *string
	MinPrice   *int64
	MaxPrice   *int64
	Status     *string
	Sort       string
	Page       int
	PerPage    int
}

// PromoFilter defines filter criteria for listing promos.
type PromoFilter struct {
	IsActive *bool
	Page     int
	PerPage  int
}

// PriceStats holds aggregate price figures over published products, in minor
// currency units.
type PriceStats struct {
	Min int64
	Max int64
	Avg int64
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// CountByCategory returns the number of products in the given category.
	CountByCategory(ctx context.Context, categoryID string) (int, error)

	// Count returns the total number of products.
	Count(ctx context.Context) (int, error)

	// PriceStats returns min/max/avg price aggregates over published products.
	PriceStats(ctx context.Context) (PriceStats, error)
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// GetBySlug retrieves a category by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// ListAll returns all categories with derived product counts.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of categories.
	Count(ctx context.Context) (int, error)
}

// PromoRepository defines the interface for promo persistence operations.
type PromoRepository interface {
	// Create inserts a new promo into the store.
	Create(ctx context.Context, promo *domain.Promo) error

	// GetByID retrieves a promo by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Promo, error)

	// List returns promos matching the given filter along with the total count.
	List(ctx context.Context, filter PromoFilter) ([]domain.Promo, int, error)

	// ListActiveWindow returns candidate promos whose manual flag is on and
	// whose window contains now, optionally narrowed to promos targeting any
	// of the given categories. Callers re-validate applicability; this is a
	// query-layer optimization, not the source of truth.
	ListActiveWindow(ctx context.Context, categoryIDs []string, now time.Time) ([]domain.Promo, error)

	// Update modifies an existing promo in the store.
	Update(ctx context.Context, promo *domain.Promo) error

	// Delete removes a promo from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of promos.
	Count(ctx context.Context) (int, error)
}

// SettingsRepository defines the interface for store settings persistence.
type SettingsRepository interface {
	// Get retrieves the single store settings row.
	Get(ctx context.Context) (*domain.StoreSettings, error)

	// Update replaces the store settings row.
	Update(ctx context.Context, settings *domain.StoreSettings) error
}
