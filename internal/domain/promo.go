package domain

import (
	"math"
	"time"
)

// Promo state labels as shown in the admin promo list.
const (
	PromoStateInactive = "inactive"
	PromoStateUpcoming = "upcoming"
	PromoStateActive   = "active"
	PromoStateExpired  = "expired"
)

// Promo represents a time-boxed, category-scoped percentage discount with an
// absolute cap. MaxDiscount is in minor currency units.
type Promo struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DiscountPercent float64   `json:"discount_percent"`
	MaxDiscount     int64     `json:"max_discount"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	IsActive        bool      `json:"is_active"`
	// ApplicableCategories is the set of category IDs this promo targets.
	// A promo targeting zero categories applies to nothing.
	ApplicableCategories []string  `json:"applicable_categories"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DiscountInfo is the transient discount annotation attached to a product for
// display. It has no independent lifecycle and is recomputed on every query.
type DiscountInfo struct {
	Title           string  `json:"title"`
	DiscountPercent float64 `json:"discount_percent"`
	MaxDiscount     int64   `json:"max_discount"`
	DiscountedPrice int64   `json:"discounted_price"`
}

// PricedProduct is a product as served to the storefront, with the applicable
// promo annotation when one resolves.
type PricedProduct struct {
	Product
	Promo *DiscountInfo `json:"promo,omitempty"`
}

// ValidatePromoConfig returns the list of configuration violations for a promo.
// An empty list means the promo is well formed. Used at the CRUD boundary so
// malformed records are rejected before they are stored.
func ValidatePromoConfig(p *Promo) []string {
	var violations []string
	if p.Title == "" {
		violations = append(violations, "title is required")
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		violations = append(violations, "discount_percent must be between 0 and 100")
	}
	if p.MaxDiscount < 0 {
		violations = append(violations, "max_discount must not be negative")
	}
	if p.StartsAt.After(p.EndsAt) {
		violations = append(violations, "starts_at must not be after ends_at")
	}
	return violations
}

// wellFormed reports whether the promo satisfies its configuration invariants.
// A malformed record fails closed: it is never considered active.
func (p *Promo) wellFormed() bool {
	return len(ValidatePromoConfig(p)) == 0
}

// IsActiveAt reports whether the promo is active at the given instant: the
// manual flag is on, the record is well formed, and now falls within
// [StartsAt, EndsAt] inclusive on both ends.
func (p *Promo) IsActiveAt(now time.Time) bool {
	if !p.IsActive || !p.wellFormed() {
		return false
	}
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// AppliesToCategory reports whether the promo targets the given category.
func (p *Promo) AppliesToCategory(categoryID string) bool {
	for _, id := range p.ApplicableCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// DiscountedPrice computes the price after applying the promo at the given
// instant. When the promo is not active the price passes through unchanged.
// The raw discount is rounded half away from zero to the nearest minor unit,
// then capped at MaxDiscount; the result never goes below zero.
func (p *Promo) DiscountedPrice(price int64, now time.Time) int64 {
	if !p.IsActiveAt(now) {
		return price
	}
	raw := int64(math.Round(float64(price) * p.DiscountPercent / 100))
	applied := raw
	if p.MaxDiscount < applied {
		applied = p.MaxDiscount
	}
	result := price - applied
	if result < 0 {
		return 0
	}
	return result
}

// StateAt returns the temporal state label for the promo at the given instant:
// inactive when the manual flag is off, otherwise upcoming, active, or expired
// relative to the promo window.
func (p *Promo) StateAt(now time.Time) string {
	if !p.IsActive {
		return PromoStateInactive
	}
	switch {
	case now.Before(p.StartsAt):
		return PromoStateUpcoming
	case now.After(p.EndsAt):
		return PromoStateExpired
	default:
		return PromoStateActive
	}
}

// ResolveApplicablePromo selects the single promo (if any) that applies to the
// given category at the given instant. A promo matches when the category is in
// its applicable set and it is active. When several match, the highest
// DiscountPercent wins; ties are broken by larger MaxDiscount, then by
// smallest ID, so resolution is deterministic regardless of input order.
func ResolveApplicablePromo(promos []Promo, categoryID string, now time.Time) *Promo {
	var best *Promo
	for i := range promos {
		p := &promos[i]
		if !p.AppliesToCategory(categoryID) || !p.IsActiveAt(now) {
			continue
		}
		if best == nil || promoPrecedes(p, best) {
			best = p
		}
	}
	return best
}

// promoPrecedes reports whether a ranks ahead of b in resolution order.
func promoPrecedes(a, b *Promo) bool {
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	if a.MaxDiscount != b.MaxDiscount {
		return a.MaxDiscount > b.MaxDiscount
	}
	return a.ID < b.ID
}

// AnnotateProduct attaches the discount annotation for the resolved promo to
// the product. A nil promo, or one that is not active at the given instant,
// yields a product without annotation. Annotation never mutates the product.
func AnnotateProduct(product Product, promo *Promo, now time.Time) PricedProduct {
	priced := PricedProduct{Product: product}
	if promo == nil || !promo.IsActiveAt(now) {
		return priced
	}
	priced.Promo = &DiscountInfo{
		Title:           promo.Title,
		DiscountPercent: promo.DiscountPercent,
		MaxDiscount:     promo.MaxDiscount,
		DiscountedPrice: promo.DiscountedPrice(product.Price, now),
	}
	return priced
}

// CreatePromoInput holds the parameters for creating a promo.
type CreatePromoInput struct {
	Title                string    `json:"title" validate:"required,min=1,max=255"`
	Description          string    `json:"description" validate:"max=2000"`
	DiscountPercent      float64   `json:"discount_percent" validate:"gte=0,lte=100"`
	MaxDiscount          int64     `json:"max_discount" validate:"gte=0"`
	StartsAt             time.Time `json:"starts_at" validate:"required"`
	EndsAt               time.Time `json:"ends_at" validate:"required"`
	IsActive             *bool     `json:"is_active"`
	ApplicableCategories []string  `json:"applicable_categories" validate:"dive,uuid"`
}

// UpdatePromoInput holds the parameters for updating a promo.
// Nil fields are left unchanged.
type UpdatePromoInput struct {
	Title                *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description          *string    `json:"description" validate:"omitempty,max=2000"`
	DiscountPercent      *float64   `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	MaxDiscount          *int64     `json:"max_discount" validate:"omitempty,gte=0"`
	StartsAt             *time.Time `json:"starts_at"`
	EndsAt               *time.Time `json:"ends_at"`
	IsActive             *bool      `json:"is_active"`
	ApplicableCategories []string   `json:"applicable_categories" validate:"omitempty,dive,uuid"`
}
