package domain

import (
	"time"
)

// Product status constants.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product represents a product in the catalog. Price and OriginalPrice are in
// minor currency units (cents).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	Price       int64     `json:"price"`
	// OriginalPrice is the pre-discount list price, distinct from promo
	// discounting. Nil when the product was never marked down.
	OriginalPrice *int64    `json:"original_price,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string  `json:"name" validate:"required,min=1,max=255"`
	Description   string  `json:"description" validate:"max=5000"`
	CategoryID    string  `json:"category_id" validate:"required,uuid"`
	Price         int64   `json:"price" validate:"gte=0"`
	OriginalPrice *int64  `json:"original_price" validate:"omitempty,gte=0"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	Status        string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// UpdateProductInput holds the parameters for updating a product.
// Nil fields are left unchanged.
type UpdateProductInput struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	Price         *int64  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *int64  `json:"original_price" validate:"omitempty,gte=0"`
	ImageURL      *string `json:"image_url" validate:"omitempty"`
	Status        *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ValidProductStatuses returns the set of valid product statuses.
func ValidProductStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusPublished, ProductStatusArchived}
}

// IsValidProductStatus checks whether the given status string is a valid product status.
func IsValidProductStatus(status string) bool {
	for _, s := range ValidProductStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
