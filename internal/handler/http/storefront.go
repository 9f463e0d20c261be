package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shopward/catalog/pkg/httputil"
	"github.com/shopward/catalog/pkg/pagination"
	"github.com/shopward/catalog/pkg/validator"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
	"github.com/shopward/catalog/internal/service"
)

// StorefrontHandler serves the public, read-only catalog endpoints.
type StorefrontHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(catalog *service.CatalogService, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := productFilterFromQuery(r)

	products, total, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// GetProduct handles GET /api/v1/products/{slug}
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetProductBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ListCategories handles GET /api/v1/categories
func (h *StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// GetCategory handles GET /api/v1/categories/{slug}
func (h *StorefrontHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.catalog.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// categoryProductsResponse bundles a category with a page of its products.
type categoryProductsResponse struct {
	Category *domain.Category                                 `json:"category"`
	Products httputil.PaginatedResponse[domain.PricedProduct] `json:"products"`
}

// GetCategoryProducts handles GET /api/v1/categories/{slug}/products
func (h *StorefrontHandler) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	filter := productFilterFromQuery(r)

	category, products, total, err := h.catalog.GetCategoryWithProducts(r.Context(), slug, filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categoryProductsResponse{
		Category: category,
		Products: httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage),
	}})
}

// ListActivePromos handles GET /api/v1/promos
func (h *StorefrontHandler) ListActivePromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.catalog.ListActivePromos(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: promos})
}

// productFilterFromQuery builds a product filter from list query parameters.
// Shared by the storefront and admin listings.
func productFilterFromQuery(r *http.Request) repository.ProductFilter {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	q := r.URL.Query()
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("min_price"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil && p >= 0 {
			filter.MinPrice = &p
		}
	}
	if v := q.Get("max_price"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil && p >= 0 {
			filter.MaxPrice = &p
		}
	}
	if v := q.Get("sort"); v != "" {
		filter.Sort = v
	}

	return filter
}

// writeServiceError renders a service error, treating validation failures as
// field-level 400s.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, valErr)
		return
	}
	httputil.WriteError(w, r, err, logger)
}
