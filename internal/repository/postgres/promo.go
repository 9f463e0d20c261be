package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shopward/catalog/internal/domain"
	"github.com/shopward/catalog/internal/repository"
	"github.com/shopward/catalog/pkg/database"
	apperrors "github.com/shopward/catalog/pkg/errors"
)

const promoColumns = `id, title, description, discount_percent, max_discount, starts_at, ends_at, is_active, applicable_categories, created_at, updated_at`

// PromoRepository implements repository.PromoRepository using PostgreSQL.
// The applicable category set is stored as a JSONB array of category IDs.
type PromoRepository struct {
	db DBTX
}

// NewPromoRepository creates a new PostgreSQL-backed promo repository.
func NewPromoRepository(db DBTX) *PromoRepository {
	return &PromoRepository{db: db}
}

// Create inserts a new promo into the database.
func (r *PromoRepository) Create(ctx context.Context, p *domain.Promo) error {
	categoriesJSON, err := json.Marshal(p.ApplicableCategories)
	if err != nil {
		return fmt.Errorf("marshal applicable_categories: %w", err)
	}

	query := `
		INSERT INTO promos (id, title, description, discount_percent, max_discount, starts_at, ends_at, is_active, applicable_categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.DiscountPercent,
		p.MaxDiscount,
		p.StartsAt,
		p.EndsAt,
		p.IsActive,
		categoriesJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promo: %w", err)
	}

	return nil
}

// GetByID retrieves a promo by its ID.
func (r *PromoRepository) GetByID(ctx context.Context, id string) (*domain.Promo, error) {
	query := `SELECT ` + promoColumns + ` FROM promos WHERE id = $1`
	return r.scanPromo(ctx, query, id)
}

// List returns promos matching the given filter with the total count.
func (r *PromoRepository) List(ctx context.Context, filter repository.PromoFilter) ([]domain.Promo, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM promos
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		promoColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var (
		promos     []domain.Promo
		totalCount int
	)

	for rows.Next() {
		p, err := scanPromoRow(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		promos = append(promos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate promo rows: %w", err)
	}

	if promos == nil {
		promos = []domain.Promo{}
	}

	return promos, totalCount, nil
}

// ListActiveWindow returns promos whose manual flag is on and whose window
// contains now. When categoryIDs is non-empty, only promos targeting at least
// one of those categories are returned (JSONB ?| containment). Callers
// re-validate applicability against the domain rules.
func (r *PromoRepository) ListActiveWindow(ctx context.Context, categoryIDs []string, now time.Time) ([]domain.Promo, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promos
		WHERE is_active AND starts_at <= $1 AND ends_at >= $1`
	args := []any{now}

	if len(categoryIDs) > 0 {
		query += ` AND applicable_categories ?| $2`
		args = append(args, categoryIDs)
	}

	query += ` ORDER BY discount_percent DESC, max_discount DESC, id ASC`

	ctx, end := database.TraceQuery(ctx, "ListActiveWindowPromos", query)
	rows, err := r.db.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("list active window promos: %w", err)
	}
	defer rows.Close()

	var promos []domain.Promo
	for rows.Next() {
		p, err := scanPromoRow(rows, nil)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promo rows: %w", err)
	}

	if promos == nil {
		promos = []domain.Promo{}
	}

	return promos, nil
}

// Update modifies an existing promo in the database.
func (r *PromoRepository) Update(ctx context.Context, p *domain.Promo) error {
	categoriesJSON, err := json.Marshal(p.ApplicableCategories)
	if err != nil {
		return fmt.Errorf("marshal applicable_categories: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE promos
		SET title = $1, description = $2, discount_percent = $3, max_discount = $4,
		    starts_at = $5, ends_at = $6, is_active = $7, applicable_categories = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.db.Exec(ctx, query,
		p.Title,
		p.Description,
		p.DiscountPercent,
		p.MaxDiscount,
		p.StartsAt,
		p.EndsAt,
		p.IsActive,
		categoriesJSON,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update promo: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("promo", p.ID)
	}

	return nil
}

// Delete removes a promo from the database.
func (r *PromoRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM promos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promo: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("promo", id)
	}

	return nil
}

// Count returns the total number of promos.
func (r *PromoRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM promos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count promos: %w", err)
	}
	return count, nil
}

// scanPromo is a helper that executes a query expected to return a single promo row.
func (r *PromoRepository) scanPromo(ctx context.Context, query string, args ...any) (*domain.Promo, error) {
	var (
		p              domain.Promo
		categoriesJSON []byte
	)

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.DiscountPercent,
		&p.MaxDiscount,
		&p.StartsAt,
		&p.EndsAt,
		&p.IsActive,
		&categoriesJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan promo: %w", err)
	}

	if err := unmarshalCategories(categoriesJSON, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// scanPromoRow scans one promo from a multi-row result set. When total is
// non-nil the row is expected to carry a trailing total_count column.
func scanPromoRow(rows pgx.Rows, total *int) (*domain.Promo, error) {
	var (
		p              domain.Promo
		categoriesJSON []byte
	)

	dest := []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&p.DiscountPercent,
		&p.MaxDiscount,
		&p.StartsAt,
		&p.EndsAt,
		&p.IsActive,
		&categoriesJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan promo row: %w", err)
	}

	if err := unmarshalCategories(categoriesJSON, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func unmarshalCategories(raw []byte, p *domain.Promo) error {
	if raw != nil {
		if err := json.Unmarshal(raw, &p.ApplicableCategories); err != nil {
			return fmt.Errorf("unmarshal applicable_categories: %w", err)
		}
	}
	if p.ApplicableCategories == nil {
		p.ApplicableCategories = []string{}
	}
	return nil
}
