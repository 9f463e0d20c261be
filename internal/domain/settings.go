package domain

import (
	"time"
)

// StoreSettings is the single-row store configuration.
type StoreSettings struct {
	StoreName    string    `json:"store_name"`
	Currency     string    `json:"currency"`
	SupportEmail string    `json:"support_email"`
	ItemsPerPage int       `json:"items_per_page"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateSettingsInput holds the parameters for updating store settings.
// Nil fields are left unchanged.
type UpdateSettingsInput struct {
	StoreName    *string `json:"store_name" validate:"omitempty,min=1,max=255"`
	Currency     *string `json:"currency" validate:"omitempty,len=3"`
	SupportEmail *string `json:"support_email" validate:"omitempty,email"`
	ItemsPerPage *int    `json:"items_per_page" validate:"omitempty,gt=0,lte=100"`
}

// CatalogSummary aggregates catalog counts and price figures for the admin
// reports endpoint.
type CatalogSummary struct {
	ProductCount  int              `json:"product_count"`
	CategoryCount int              `json:"category_count"`
	PromoCount    int              `json:"promo_count"`
	PromoStates   map[string]int   `json:"promo_states"`
	MinPrice      int64            `json:"min_price"`
	MaxPrice      int64            `json:"max_price"`
	AvgPrice      int64            `json:"avg_price"`
}
