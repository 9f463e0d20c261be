package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/shopward/catalog/pkg/errors"
	"github.com/shopward/catalog/pkg/validator"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/event"
	"github.com/shopward/catalog/internal/repository"
)

// PromoWithState is a promo decorated with its temporal state label for the
// admin listing.
type PromoWithState struct {
	domain.Promo
	State string `json:"state"`
}

// PromoService implements the admin promo management operations. Configuration
// invariants are enforced here so a malformed promo never reaches the store.
type PromoService struct {
	repo     repository.PromoRepository
	producer *event.Producer
	cache    *cache.CatalogCache
	logger   *slog.Logger
}

// NewPromoService creates a new promo service.
func NewPromoService(
	repo repository.PromoRepository,
	producer *event.Producer,
	catalogCache *cache.CatalogCache,
	logger *slog.Logger,
) *PromoService {
	return &PromoService{
		repo:     repo,
		producer: producer,
		cache:    catalogCache,
		logger:   logger,
	}
}

// CreatePromo creates a new promo. New promos default to active unless the
// input says otherwise; a missing category list becomes the empty set, which
// applies to nothing until categories are assigned.
func (s *PromoService) CreatePromo(ctx context.Context, input *domain.CreatePromoInput) (*domain.Promo, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	categories := input.ApplicableCategories
	if categories == nil {
		categories = []string{}
	}

	now := time.Now().UTC()
	promo := &domain.Promo{
		ID:                   uuid.New().String(),
		Title:                input.Title,
		Description:          input.Description,
		DiscountPercent:      input.DiscountPercent,
		MaxDiscount:          input.MaxDiscount,
		StartsAt:             input.StartsAt,
		EndsAt:               input.EndsAt,
		IsActive:             isActive,
		ApplicableCategories: categories,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if violations := domain.ValidatePromoConfig(promo); len(violations) > 0 {
		return nil, apperrors.InvalidInput(strings.Join(violations, "; "))
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("create promo: %w", err)
	}

	s.afterWrite(ctx, promo.ID, func() error {
		return s.producer.PublishPromoCreated(ctx, promo)
	})

	s.logger.InfoContext(ctx, "promo created",
		slog.String("promo_id", promo.ID),
		slog.String("title", promo.Title),
		slog.Float64("discount_percent", promo.DiscountPercent),
	)

	return promo, nil
}

// GetPromo retrieves a promo by its ID with its current state label.
func (s *PromoService) GetPromo(ctx context.Context, id string) (*PromoWithState, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promo by id: %w", err)
	}

	now := time.Now().UTC()
	return &PromoWithState{Promo: *promo, State: promo.StateAt(now)}, nil
}

// ListPromos returns a filtered, paginated list of promos, each labeled with
// its temporal state at the time of the call.
func (s *PromoService) ListPromos(ctx context.Context, filter repository.PromoFilter) ([]PromoWithState, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	promos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}

	now := time.Now().UTC()
	labeled := make([]PromoWithState, 0, len(promos))
	for _, p := range promos {
		labeled = append(labeled, PromoWithState{Promo: p, State: p.StateAt(now)})
	}

	return labeled, total, nil
}

// UpdatePromo applies partial updates to an existing promo. The merged record
// must still satisfy the configuration invariants.
func (s *PromoService) UpdatePromo(ctx context.Context, id string, input *domain.UpdatePromoInput) (*domain.Promo, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promo for update: %w", err)
	}

	if input.Title != nil {
		promo.Title = *input.Title
	}
	if input.Description != nil {
		promo.Description = *input.Description
	}
	if input.DiscountPercent != nil {
		promo.DiscountPercent = *input.DiscountPercent
	}
	if input.MaxDiscount != nil {
		promo.MaxDiscount = *input.MaxDiscount
	}
	if input.StartsAt != nil {
		promo.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		promo.EndsAt = *input.EndsAt
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}
	if input.ApplicableCategories != nil {
		promo.ApplicableCategories = input.ApplicableCategories
	}

	if violations := domain.ValidatePromoConfig(promo); len(violations) > 0 {
		return nil, apperrors.InvalidInput(strings.Join(violations, "; "))
	}

	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, fmt.Errorf("update promo: %w", err)
	}

	s.afterWrite(ctx, promo.ID, func() error {
		return s.producer.PublishPromoUpdated(ctx, promo)
	})

	s.logger.InfoContext(ctx, "promo updated",
		slog.String("promo_id", promo.ID),
	)

	return promo, nil
}

// DeletePromo removes a promo by its ID.
func (s *PromoService) DeletePromo(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete promo: %w", err)
	}

	s.afterWrite(ctx, id, func() error {
		return s.producer.PublishPromoDeleted(ctx, id)
	})

	s.logger.InfoContext(ctx, "promo deleted",
		slog.String("promo_id", id),
	)

	return nil
}

func (s *PromoService) afterWrite(ctx context.Context, promoID string, publish func() error) {
	if err := publish(); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish promo event",
			slog.String("promo_id", promoID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()),
		)
	}
}
