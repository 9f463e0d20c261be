package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopward/catalog/pkg/httputil"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/service"
)

// SettingsHandler handles the admin settings and reports endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
	reports  *service.ReportService
	logger   *slog.Logger
}

// NewSettingsHandler creates a new admin settings HTTP handler.
func NewSettingsHandler(settings *service.SettingsService, reports *service.ReportService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		reports:  reports,
		logger:   logger,
	}
}

// GetSettings handles GET /api/v1/admin/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// UpdateSettings handles PUT /api/v1/admin/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var input domain.UpdateSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadBody(w, err)
		return
	}

	settings, err := h.settings.UpdateSettings(r.Context(), &input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// GetCatalogSummary handles GET /api/v1/admin/reports/summary
func (h *SettingsHandler) GetCatalogSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.CatalogSummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}
