package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/shopward/catalog/pkg/errors"
	"github.com/shopward/catalog/pkg/slug"
	"github.com/shopward/catalog/pkg/validator"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/event"
	"github.com/shopward/catalog/internal/repository"
)

// ProductService implements the admin product management operations.
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	producer   *event.Producer
	cache      *cache.CatalogCache
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	producer *event.Producer,
	catalogCache *cache.CatalogCache,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		producer:   producer,
		cache:      catalogCache,
		logger:     logger,
	}
}

// CreateProduct creates a new product in the given category. The slug is
// derived from the name; new products default to draft status.
func (s *ProductService) CreateProduct(ctx context.Context, input *domain.CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if err := s.checkCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Slug:          slug.Generate(input.Name),
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		ImageURL:      input.ImageURL,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.afterWrite(ctx, "catalog.product.created", product.ID, func() error {
		return s.producer.PublishProductCreated(ctx, product)
	})

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products across all
// statuses. Used by the admin panel; the storefront goes through CatalogService.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies partial updates to an existing product. Renaming a
// product regenerates its slug.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *domain.UpdateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		if err := s.checkCategoryExists(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = input.OriginalPrice
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Status != nil {
		product.Status = *input.Status
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.afterWrite(ctx, "catalog.product.updated", product.ID, func() error {
		return s.producer.PublishProductUpdated(ctx, product)
	})

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.afterWrite(ctx, "catalog.product.deleted", id, func() error {
		return s.producer.PublishProductDeleted(ctx, id)
	})

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// checkCategoryExists verifies the referenced category, translating a missing
// category into an input error rather than a not found.
func (s *ProductService) checkCategoryExists(ctx context.Context, categoryID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput(fmt.Sprintf("category %s does not exist", categoryID))
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

// afterWrite publishes the domain event and invalidates the storefront cache.
// Both are best effort: the write already committed.
func (s *ProductService) afterWrite(ctx context.Context, eventTopic, aggregateID string, publish func() error) {
	if err := publish(); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", eventTopic),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()),
		)
	}
}
