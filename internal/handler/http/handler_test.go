package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopward/catalog/pkg/health"
	"github.com/shopward/catalog/pkg/httputil"
	pkgkafka "github.com/shopward/catalog/pkg/kafka"
	"github.com/shopward/catalog/pkg/middleware"

	apperrors "github.com/shopward/catalog/pkg/errors"

	"github.com/shopward/catalog/internal/cache"
	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/event"
	"github.com/shopward/catalog/internal/repository"
	"github.com/shopward/catalog/internal/service"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) PriceStats(ctx context.Context) (repository.PriceStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.PriceStats), args.Error(1)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPromoRepository struct {
	mock.Mock
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *domain.Promo) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *mockPromoRepository) GetByID(ctx context.Context, id string) (*domain.Promo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promo), args.Error(1)
}

func (m *mockPromoRepository) List(ctx context.Context, filter repository.PromoFilter) ([]domain.Promo, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Promo), args.Int(1), args.Error(2)
}

func (m *mockPromoRepository) ListActiveWindow(ctx context.Context, categoryIDs []string, now time.Time) ([]domain.Promo, error) {
	args := m.Called(ctx, categoryIDs, now)
	return args.Get(0).([]domain.Promo), args.Error(1)
}

func (m *mockPromoRepository) Update(ctx context.Context, promo *domain.Promo) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *mockPromoRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPromoRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) Get(ctx context.Context) (*domain.StoreSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoreSettings), args.Error(1)
}

func (m *mockSettingsRepository) Update(ctx context.Context, settings *domain.StoreSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// ============================================================================
// Test fixture
// ============================================================================

const adminToken = "valid-admin-token"

type fixture struct {
	router     http.Handler
	products   *mockProductRepository
	categories *mockCategoryRepository
	promos     *mockPromoRepository
	settings   *mockSettingsRepository
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := testLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	catalogCache := cache.New(client, time.Minute)

	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	promos := new(mockPromoRepository)
	settings := new(mockSettingsRepository)

	tokenValidator := func(token string) (*middleware.Claims, error) {
		if token == adminToken {
			return &middleware.Claims{AdminID: "admin-1", Role: "admin"}, nil
		}
		if token == "viewer-token" {
			return &middleware.Claims{AdminID: "admin-2", Role: "viewer"}, nil
		}
		return nil, apperrors.Unauthorized("invalid token")
	}

	router := NewRouter(RouterConfig{
		Catalog:        service.NewCatalogService(products, categories, promos, settings, catalogCache, logger),
		Products:       service.NewProductService(products, categories, producer, catalogCache, logger),
		Categories:     service.NewCategoryService(categories, producer, catalogCache, logger),
		Promos:         service.NewPromoService(promos, producer, catalogCache, logger),
		Settings:       service.NewSettingsService(settings, catalogCache, logger),
		Reports:        service.NewReportService(products, categories, promos, logger),
		Health:         health.NewHandler(),
		TokenValidator: tokenValidator,
		CORS:           middleware.DefaultCORSConfig(),
		PprofCIDRs:     []string{"127.0.0.1/32"},
		Logger:         logger,
	})

	return &fixture{
		router:     router,
		products:   products,
		categories: categories,
		promos:     promos,
		settings:   settings,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// ============================================================================
// Storefront
// ============================================================================

func TestStorefrontListProducts(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	f.products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{
		{ID: "prod-1", Name: "Walnut Desk", Slug: "walnut-desk", CategoryID: "cat-a", Price: 200_000, Status: domain.ProductStatusPublished},
	}, 1, nil)
	f.promos.On("ListActiveWindow", mock.Anything, []string{"cat-a"}, mock.Anything).Return([]domain.Promo{
		{
			ID: "promo-1", Title: "Spring Sale", DiscountPercent: 10, MaxDiscount: 50_000,
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true,
			ApplicableCategories: []string{"cat-a"},
		},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/products", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=60")

	var resp httputil.PaginatedResponse[domain.PricedProduct]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Promo)
	assert.Equal(t, int64(180_000), resp.Data[0].Promo.DiscountedPrice)
}

func TestStorefrontGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	f.products.On("GetBySlug", mock.Anything, "missing").
		Return(nil, apperrors.NotFound("product", "missing"))

	rec := f.do(t, http.MethodGet, "/api/v1/products/missing", nil, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestStorefrontListCategories(t *testing.T) {
	f := newFixture(t)

	f.categories.On("ListAll", mock.Anything).Return([]domain.Category{
		{ID: "cat-a", Name: "Office", Slug: "office", ProductCount: 3},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/categories", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestStorefrontGetCategoryProducts(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	f.categories.On("GetBySlug", mock.Anything, "office").Return(&domain.Category{
		ID: "cat-a", Name: "Office", Slug: "office", ProductCount: 1,
	}, nil)
	f.products.On("List", mock.Anything, mock.MatchedBy(func(filter repository.ProductFilter) bool {
		return filter.CategoryID != nil && *filter.CategoryID == "cat-a"
	})).Return([]domain.Product{
		{ID: "prod-1", Name: "Walnut Desk", Slug: "walnut-desk", CategoryID: "cat-a", Price: 200_000, Status: domain.ProductStatusPublished},
	}, 1, nil)
	f.promos.On("ListActiveWindow", mock.Anything, []string{"cat-a"}, mock.Anything).Return([]domain.Promo{
		{
			ID: "promo-1", Title: "Spring Sale", DiscountPercent: 10, MaxDiscount: 50_000,
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true,
			ApplicableCategories: []string{"cat-a"},
		},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/categories/office/products", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Category domain.Category                                  `json:"category"`
			Products httputil.PaginatedResponse[domain.PricedProduct] `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "office", resp.Data.Category.Slug)
	assert.Equal(t, 1, resp.Data.Products.TotalCount)
	require.Len(t, resp.Data.Products.Data, 1)
	require.NotNil(t, resp.Data.Products.Data[0].Promo)
	assert.Equal(t, int64(180_000), resp.Data.Products.Data[0].Promo.DiscountedPrice)
}

func TestStorefrontListActivePromos(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	f.promos.On("ListActiveWindow", mock.Anything, []string(nil), mock.Anything).Return([]domain.Promo{
		{
			ID: "promo-1", Title: "Spring Sale", DiscountPercent: 10,
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true,
			ApplicableCategories: []string{"cat-a"},
		},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/promos", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// Admin auth
// ============================================================================

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/products", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RejectsInvalidToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/products", nil, "garbage")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RejectsNonAdminRole(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/products", nil, "viewer-token")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ============================================================================
// Admin products
// ============================================================================

const testCategoryUUID = "6a1f0b2c-8d3e-4f5a-9b6c-7d8e9f0a1b2c"

func TestAdminCreateProduct(t *testing.T) {
	f := newFixture(t)

	f.categories.On("GetByID", mock.Anything, testCategoryUUID).
		Return(&domain.Category{ID: testCategoryUUID}, nil)
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name":        "Walnut Desk",
		"category_id": testCategoryUUID,
		"price":       200000,
	}, adminToken)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "walnut-desk", data["slug"])
	assert.Equal(t, "draft", data["status"])
}

func TestAdminCreateProduct_ValidationError(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/products", map[string]any{
		"price": 100,
	}, adminToken)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Name")
}

func TestAdminCreateProduct_MalformedBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestAdminGetProduct_InvalidUUID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/products/not-a-uuid", nil, adminToken)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestAdminDeleteProduct(t *testing.T) {
	f := newFixture(t)

	id := "2b9d8f3e-1a2b-4c5d-8e9f-0a1b2c3d4e5f"
	f.products.On("Delete", mock.Anything, id).Return(nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/admin/products/"+id, nil, adminToken)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.products.AssertExpectations(t)
}

// ============================================================================
// Admin promos
// ============================================================================

func TestAdminCreatePromo(t *testing.T) {
	f := newFixture(t)

	f.promos.On("Create", mock.Anything, mock.AnythingOfType("*domain.Promo")).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/promos", map[string]any{
		"title":                 "Spring Sale",
		"discount_percent":      15,
		"max_discount":          50000,
		"starts_at":             "2026-03-01T00:00:00Z",
		"ends_at":               "2026-03-31T23:59:59Z",
		"applicable_categories": []string{testCategoryUUID},
	}, adminToken)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Spring Sale", data["title"])
	assert.Equal(t, true, data["is_active"])
}

func TestAdminCreatePromo_InvertedWindow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/promos", map[string]any{
		"title":            "Backwards",
		"discount_percent": 15,
		"starts_at":        "2026-03-31T00:00:00Z",
		"ends_at":          "2026-03-01T00:00:00Z",
	}, adminToken)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "starts_at must not be after ends_at")
}

func TestAdminListPromos_IncludesState(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	f.promos.On("List", mock.Anything, mock.Anything).Return([]domain.Promo{
		{ID: "p1", Title: "Running", DiscountPercent: 10, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true},
	}, 1, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/promos", nil, adminToken)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[map[string]any]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "active", resp.Data[0]["state"])
}

// ============================================================================
// Admin settings and reports
// ============================================================================

func TestAdminUpdateSettings(t *testing.T) {
	f := newFixture(t)

	f.settings.On("Get", mock.Anything).Return(&domain.StoreSettings{
		StoreName: "Shopward", Currency: "USD", SupportEmail: "support@shopward.dev", ItemsPerPage: 12,
	}, nil)
	f.settings.On("Update", mock.Anything, mock.AnythingOfType("*domain.StoreSettings")).Return(nil)

	rec := f.do(t, http.MethodPut, "/api/v1/admin/settings", map[string]any{
		"items_per_page": 24,
	}, adminToken)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(24), data["items_per_page"])
}

func TestAdminCatalogSummary(t *testing.T) {
	f := newFixture(t)

	f.products.On("Count", mock.Anything).Return(10, nil)
	f.categories.On("Count", mock.Anything).Return(2, nil)
	f.promos.On("Count", mock.Anything).Return(1, nil)
	f.promos.On("List", mock.Anything, mock.Anything).Return([]domain.Promo{}, 0, nil)
	f.products.On("PriceStats", mock.Anything).Return(repository.PriceStats{Min: 100, Max: 900, Avg: 400}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/admin/reports/summary", nil, adminToken)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(10), data["product_count"])
	assert.Equal(t, float64(400), data["avg_price"])
}

// ============================================================================
// Health
// ============================================================================

func TestHealthLive(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
