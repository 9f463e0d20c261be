package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopward/catalog/pkg/health"
	"github.com/shopward/catalog/pkg/middleware"

	"github.com/shopward/catalog/internal/service"
)

// storefrontMaxAge is the Cache-Control max-age for public catalog responses,
// in seconds. Kept short because promo windows change the rendering.
const storefrontMaxAge = 60

// RouterConfig carries the dependencies for building the catalog HTTP router.
type RouterConfig struct {
	Catalog        *service.CatalogService
	Products       *service.ProductService
	Categories     *service.CategoryService
	Promos         *service.PromoService
	Settings       *service.SettingsService
	Reports        *service.ReportService
	Health         *health.Handler
	TokenValidator middleware.TokenValidator
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all catalog service routes registered.
// Storefront endpoints are public and cacheable; admin endpoints require a
// valid token with the admin role.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("catalog"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("catalog"))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	storefront := NewStorefrontHandler(cfg.Catalog, cfg.Logger)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	categoryHandler := NewCategoryHandler(cfg.Categories, cfg.Logger)
	promoHandler := NewPromoHandler(cfg.Promos, cfg.Logger)
	settingsHandler := NewSettingsHandler(cfg.Settings, cfg.Reports, cfg.Logger)

	// Public storefront API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CacheControl(storefrontMaxAge))

		r.Get("/products", storefront.ListProducts)
		r.Get("/products/{slug}", storefront.GetProduct)
		r.Get("/categories", storefront.ListCategories)
		r.Get("/categories/{slug}", storefront.GetCategory)
		r.Get("/categories/{slug}/products", storefront.GetCategoryProducts)
		r.Get("/promos", storefront.ListActivePromos)
	})

	// Admin API
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(middleware.RequireRole("admin"))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.CreateProduct)
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{id}", categoryHandler.GetCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})

		r.Route("/promos", func(r chi.Router) {
			r.Post("/", promoHandler.CreatePromo)
			r.Get("/", promoHandler.ListPromos)
			r.Get("/{id}", promoHandler.GetPromo)
			r.Put("/{id}", promoHandler.UpdatePromo)
			r.Delete("/{id}", promoHandler.DeletePromo)
		})

		r.Get("/settings", settingsHandler.GetSettings)
		r.Put("/settings", settingsHandler.UpdateSettings)
		r.Get("/reports/summary", settingsHandler.GetCatalogSummary)
	})

	return r
}
