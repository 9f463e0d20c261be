package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shopward/catalog/internal/domain"
	apperrors "github.com/shopward/catalog/pkg/errors"
)

// SettingsRepository implements repository.SettingsRepository using
// PostgreSQL. Store settings live in a single row seeded by the migrations.
type SettingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(db DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the store settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.StoreSettings, error) {
	query := `
		SELECT store_name, currency, support_email, items_per_page, updated_at
		FROM store_settings
		WHERE id = 1`

	var s domain.StoreSettings
	err := r.db.QueryRow(ctx, query).Scan(
		&s.StoreName,
		&s.Currency,
		&s.SupportEmail,
		&s.ItemsPerPage,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan store settings: %w", err)
	}

	return &s, nil
}

// Update replaces the store settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *domain.StoreSettings) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE store_settings
		SET store_name = $1, currency = $2, support_email = $3, items_per_page = $4, updated_at = $5
		WHERE id = 1`

	ct, err := r.db.Exec(ctx, query,
		s.StoreName,
		s.Currency,
		s.SupportEmail,
		s.ItemsPerPage,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update store settings: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
