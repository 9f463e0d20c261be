package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
)

// reportPageSize is the page size used when walking promo rows for the state
// breakdown.
const reportPageSize = 100

// ReportService produces the admin catalog summary.
type ReportService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	promos     repository.PromoRepository
	logger     *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	promos repository.PromoRepository,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		products:   products,
		categories: categories,
		promos:     promos,
		logger:     logger,
	}
}

// CatalogSummary aggregates entity counts, the promo state breakdown, and
// price statistics over published products.
func (s *ReportService) CatalogSummary(ctx context.Context) (*domain.CatalogSummary, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	categoryCount, err := s.categories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	promoCount, err := s.promos.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count promos: %w", err)
	}

	states, err := s.promoStateBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.products.PriceStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("price stats: %w", err)
	}

	return &domain.CatalogSummary{
		ProductCount:  productCount,
		CategoryCount: categoryCount,
		PromoCount:    promoCount,
		PromoStates:   states,
		MinPrice:      stats.Min,
		MaxPrice:      stats.Max,
		AvgPrice:      stats.Avg,
	}, nil
}

// promoStateBreakdown walks all promos and tallies their temporal states at a
// single instant so the breakdown is internally consistent.
func (s *ReportService) promoStateBreakdown(ctx context.Context) (map[string]int, error) {
	now := time.Now().UTC()
	states := map[string]int{
		domain.PromoStateInactive: 0,
		domain.PromoStateUpcoming: 0,
		domain.PromoStateActive:   0,
		domain.PromoStateExpired:  0,
	}

	for page := 1; ; page++ {
		promos, total, err := s.promos.List(ctx, repository.PromoFilter{Page: page, PerPage: reportPageSize})
		if err != nil {
			return nil, fmt.Errorf("list promos for report: %w", err)
		}

		for _, p := range promos {
			states[p.StateAt(now)]++
		}

		if len(promos) == 0 || page*reportPageSize >= total {
			break
		}
	}

	return states, nil
}
