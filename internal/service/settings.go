package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopward/catalog/pkg/validator"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
)

// SettingsService manages the single-row store configuration.
type SettingsService struct {
	repo   repository.SettingsRepository
	cache  *cache.CatalogCache
	logger *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo repository.SettingsRepository, catalogCache *cache.CatalogCache, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		cache:  catalogCache,
		logger: logger,
	}
}

// GetSettings returns the current store settings.
func (s *SettingsService) GetSettings(ctx context.Context) (*domain.StoreSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies partial updates to the store settings. The page size
// feeds storefront rendering, so the catalog cache is invalidated afterwards.
func (s *SettingsService) UpdateSettings(ctx context.Context, input *domain.UpdateSettingsInput) (*domain.StoreSettings, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings for update: %w", err)
	}

	if input.StoreName != nil {
		settings.StoreName = *input.StoreName
	}
	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.SupportEmail != nil {
		settings.SupportEmail = *input.SupportEmail
	}
	if input.ItemsPerPage != nil {
		settings.ItemsPerPage = *input.ItemsPerPage
	}

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "store settings updated",
		slog.String("store_name", settings.StoreName),
	)

	return settings, nil
}
