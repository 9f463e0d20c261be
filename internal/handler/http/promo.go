package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shopward/catalog/pkg/httputil"
	"github.com/shopward/catalog/pkg/pagination"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
	"github.com/shopward/catalog/internal/service"
)

// PromoHandler handles the admin promo management endpoints.
type PromoHandler struct {
	service *service.PromoService
	logger  *slog.Logger
}

// NewPromoHandler creates a new admin promo HTTP handler.
func NewPromoHandler(svc *service.PromoService, logger *slog.Logger) *PromoHandler {
	return &PromoHandler{
		service: svc,
		logger:  logger,
	}
}

// CreatePromo handles POST /api/v1/admin/promos
func (h *PromoHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var input domain.CreatePromoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadBody(w, err)
		return
	}

	promo, err := h.service.CreatePromo(r.Context(), &input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: promo})
}

// ListPromos handles GET /api/v1/admin/promos
func (h *PromoHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.PromoFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := r.URL.Query().Get("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsActive = &b
		}
	}

	promos, total, err := h.service.ListPromos(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(promos, total, filter.Page, filter.PerPage))
}

// GetPromo handles GET /api/v1/admin/promos/{id}
func (h *PromoHandler) GetPromo(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	promo, err := h.service.GetPromo(r.Context(), id.String())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: promo})
}

// UpdatePromo handles PUT /api/v1/admin/promos/{id}
func (h *PromoHandler) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var input domain.UpdatePromoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadBody(w, err)
		return
	}

	promo, err := h.service.UpdatePromo(r.Context(), id.String(), &input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: promo})
}

// DeletePromo handles DELETE /api/v1/admin/promos/{id}
func (h *PromoHandler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeletePromo(r.Context(), id.String()); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
