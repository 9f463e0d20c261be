package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shopward/catalog/pkg/errors"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
)

func newTestCatalogService(t *testing.T) (*CatalogService, *mockProductRepository, *mockCategoryRepository, *mockPromoRepository, *mockSettingsRepository) {
	t.Helper()
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	promos := new(mockPromoRepository)
	settings := new(mockSettingsRepository)
	svc := NewCatalogService(products, categories, promos, settings, newTestCache(t), newTestLogger())
	return svc, products, categories, promos, settings
}

func storefrontPromo(id string, percent float64, categories ...string) domain.Promo {
	now := time.Now().UTC()
	return domain.Promo{
		ID:                   id,
		Title:                "Storewide Sale",
		DiscountPercent:      percent,
		MaxDiscount:          100_000,
		StartsAt:             now.Add(-24 * time.Hour),
		EndsAt:               now.Add(24 * time.Hour),
		IsActive:             true,
		ApplicableCategories: categories,
	}
}

func publishedProduct(id, categoryID string, price int64) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       "Walnut Desk",
		Slug:       "walnut-desk",
		CategoryID: categoryID,
		Price:      price,
		Status:     domain.ProductStatusPublished,
	}
}

func TestCatalogListProducts_AnnotatesWithApplicablePromo(t *testing.T) {
	svc, products, _, promos, _ := newTestCatalogService(t)

	product := publishedProduct("prod-1", "cat-a", 200_000)
	products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Status != nil && *f.Status == domain.ProductStatusPublished
	})).Return([]domain.Product{product}, 1, nil)
	promos.On("ListActiveWindow", mock.Anything, []string{"cat-a"}, mock.Anything).
		Return([]domain.Promo{storefrontPromo("promo-1", 10, "cat-a")}, nil)

	priced, total, err := svc.ListProducts(context.Background(), repository.ProductFilter{Page: 1, PerPage: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, priced, 1)
	require.NotNil(t, priced[0].Promo)
	assert.Equal(t, "Storewide Sale", priced[0].Promo.Title)
	assert.Equal(t, int64(180_000), priced[0].Promo.DiscountedPrice)
	// The underlying price stays untouched.
	assert.Equal(t, int64(200_000), priced[0].Price)
	products.AssertExpectations(t)
	promos.AssertExpectations(t)
}

func TestCatalogListProducts_NoPromoForCategory(t *testing.T) {
	svc, products, _, promos, _ := newTestCatalogService(t)

	product := publishedProduct("prod-1", "cat-b", 150_000)
	products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{product}, 1, nil)
	promos.On("ListActiveWindow", mock.Anything, []string{"cat-b"}, mock.Anything).
		Return([]domain.Promo{}, nil)

	priced, _, err := svc.ListProducts(context.Background(), repository.ProductFilter{Page: 1, PerPage: 20})

	require.NoError(t, err)
	require.Len(t, priced, 1)
	assert.Nil(t, priced[0].Promo)
}

func TestCatalogListProducts_HighestPercentWinsAcrossCandidates(t *testing.T) {
	svc, products, _, promos, _ := newTestCatalogService(t)

	product := publishedProduct("prod-1", "cat-a", 100_000)
	products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{product}, 1, nil)
	promos.On("ListActiveWindow", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Promo{
		storefrontPromo("promo-low", 5, "cat-a"),
		storefrontPromo("promo-high", 20, "cat-a"),
	}, nil)

	priced, _, err := svc.ListProducts(context.Background(), repository.ProductFilter{Page: 1, PerPage: 20})

	require.NoError(t, err)
	require.NotNil(t, priced[0].Promo)
	assert.Equal(t, float64(20), priced[0].Promo.DiscountPercent)
	assert.Equal(t, int64(80_000), priced[0].Promo.DiscountedPrice)
}

func TestCatalogListProducts_EmptyPage(t *testing.T) {
	svc, products, _, _, _ := newTestCatalogService(t)

	products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{}, 0, nil)

	priced, total, err := svc.ListProducts(context.Background(), repository.ProductFilter{Page: 1, PerPage: 20})

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, priced)
}

func TestCatalogListProducts_FallsBackToSettingsPageSize(t *testing.T) {
	svc, products, _, promos, settings := newTestCatalogService(t)

	settings.On("Get", mock.Anything).Return(&domain.StoreSettings{ItemsPerPage: 24}, nil)
	products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.PerPage == 24 && f.Page == 1
	})).Return([]domain.Product{}, 0, nil)
	promos.On("ListActiveWindow", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Promo{}, nil).Maybe()

	_, _, err := svc.ListProducts(context.Background(), repository.ProductFilter{})

	require.NoError(t, err)
	products.AssertExpectations(t)
	settings.AssertExpectations(t)
}

func TestCatalogGetProductBySlug_Annotated(t *testing.T) {
	svc, products, _, promos, _ := newTestCatalogService(t)

	product := publishedProduct("prod-1", "cat-a", 50_000)
	products.On("GetBySlug", mock.Anything, "walnut-desk").Return(&product, nil)
	promos.On("ListActiveWindow", mock.Anything, []string{"cat-a"}, mock.Anything).
		Return([]domain.Promo{storefrontPromo("promo-1", 50, "cat-a")}, nil)

	priced, err := svc.GetProductBySlug(context.Background(), "walnut-desk")

	require.NoError(t, err)
	require.NotNil(t, priced.Promo)
	assert.Equal(t, int64(25_000), priced.Promo.DiscountedPrice)
}

func TestCatalogGetProductBySlug_DraftInvisible(t *testing.T) {
	svc, products, _, _, _ := newTestCatalogService(t)

	draft := publishedProduct("prod-1", "cat-a", 50_000)
	draft.Status = domain.ProductStatusDraft
	products.On("GetBySlug", mock.Anything, "walnut-desk").Return(&draft, nil)

	priced, err := svc.GetProductBySlug(context.Background(), "walnut-desk")

	require.Error(t, err)
	assert.Nil(t, priced)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogGetProductBySlug_CachesResult(t *testing.T) {
	svc, products, _, promos, _ := newTestCatalogService(t)

	product := publishedProduct("prod-1", "cat-a", 50_000)
	products.On("GetBySlug", mock.Anything, "walnut-desk").Return(&product, nil).Once()
	promos.On("ListActiveWindow", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Promo{}, nil).Once()

	_, err := svc.GetProductBySlug(context.Background(), "walnut-desk")
	require.NoError(t, err)

	// Second call must be served from cache without touching the repos.
	priced, err := svc.GetProductBySlug(context.Background(), "walnut-desk")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", priced.ID)
	products.AssertExpectations(t)
	promos.AssertExpectations(t)
}

func TestCatalogListCategories_CachesResult(t *testing.T) {
	svc, _, categories, _, _ := newTestCatalogService(t)

	categories.On("ListAll", mock.Anything).Return([]domain.Category{
		{ID: "cat-a", Name: "Office", Slug: "office", ProductCount: 3},
	}, nil).Once()

	first, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	categories.AssertExpectations(t)
}

func TestCatalogGetCategoryBySlug_NotFound(t *testing.T) {
	svc, _, categories, _, _ := newTestCatalogService(t)

	categories.On("GetBySlug", mock.Anything, "missing").
		Return(nil, apperrors.NotFound("category", "missing"))

	category, err := svc.GetCategoryBySlug(context.Background(), "missing")

	require.Error(t, err)
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogGetCategoryWithProducts_AnnotatesProducts(t *testing.T) {
	svc, products, categories, promos, _ := newTestCatalogService(t)

	category := domain.Category{ID: "cat-a", Name: "Office Furniture", Slug: "office-furniture", ProductCount: 1}
	categories.On("GetBySlug", mock.Anything, "office-furniture").Return(&category, nil)
	products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.CategoryID != nil && *f.CategoryID == "cat-a" &&
			f.Status != nil && *f.Status == domain.ProductStatusPublished
	})).Return([]domain.Product{publishedProduct("prod-1", "cat-a", 200_000)}, 1, nil)
	promos.On("ListActiveWindow", mock.Anything, []string{"cat-a"}, mock.Anything).
		Return([]domain.Promo{storefrontPromo("promo-1", 25, "cat-a")}, nil)

	got, priced, total, err := svc.GetCategoryWithProducts(context.Background(), "office-furniture", repository.ProductFilter{Page: 1, PerPage: 20})

	require.NoError(t, err)
	assert.Equal(t, "cat-a", got.ID)
	assert.Equal(t, 1, total)
	require.Len(t, priced, 1)
	require.NotNil(t, priced[0].Promo)
	assert.Equal(t, int64(150_000), priced[0].Promo.DiscountedPrice)
	products.AssertExpectations(t)
	promos.AssertExpectations(t)
}

func TestCatalogGetCategoryWithProducts_UnknownSlug(t *testing.T) {
	svc, products, categories, _, _ := newTestCatalogService(t)

	categories.On("GetBySlug", mock.Anything, "missing").
		Return(nil, apperrors.NotFound("category", "missing"))

	_, _, _, err := svc.GetCategoryWithProducts(context.Background(), "missing", repository.ProductFilter{})

	require.ErrorIs(t, err, apperrors.ErrNotFound)
	products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCatalogListActivePromos_FiltersMalformedCandidates(t *testing.T) {
	svc, _, _, promos, _ := newTestCatalogService(t)

	good := storefrontPromo("promo-good", 15, "cat-a")
	malformed := storefrontPromo("promo-bad", 150, "cat-a")
	promos.On("ListActiveWindow", mock.Anything, []string(nil), mock.Anything).
		Return([]domain.Promo{good, malformed}, nil)

	active, err := svc.ListActivePromos(context.Background())

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "promo-good", active[0].ID)
}
