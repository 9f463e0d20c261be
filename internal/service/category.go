package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopward/catalog/pkg/slug"
	"github.com/shopward/catalog/pkg/validator"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/event"
	"github.com/shopward/catalog/internal/repository"
)

// CategoryService implements the admin category management operations.
type CategoryService struct {
	repo     repository.CategoryRepository
	producer *event.Producer
	cache    *cache.CatalogCache
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	producer *event.Producer,
	catalogCache *cache.CatalogCache,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:     repo,
		producer: producer,
		cache:    catalogCache,
		logger:   logger,
	}
}

// CreateCategory creates a new category with a slug derived from its name.
func (s *CategoryService) CreateCategory(ctx context.Context, input *domain.CreateCategoryInput) (*domain.Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.afterWrite(ctx, func() error {
		return s.producer.PublishCategoryCreated(ctx, category)
	})

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories with derived product counts.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory applies partial updates to an existing category. Renaming a
// category regenerates its slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *domain.UpdateCategoryInput) (*domain.Category, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != nil {
		category.Name = *input.Name
		category.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.afterWrite(ctx, func() error {
		return s.producer.PublishCategoryUpdated(ctx, category)
	})

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
	)

	return category, nil
}

// DeleteCategory removes a category. Deletion is refused while products still
// reference the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.afterWrite(ctx, func() error {
		return s.producer.PublishCategoryDeleted(ctx, id)
	})

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

func (s *CategoryService) afterWrite(ctx context.Context, publish func() error) {
	if err := publish(); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("error", err.Error()),
		)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()),
		)
	}
}
