package pagination

import (
	"net/http"
	"strconv"
)

// Hard limit on page size; anything above is clamped at parse time.
const MaxPerPage = 100

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// Default returns the default pagination parameters.
func Default() Params {
	return Params{Page: 1, PerPage: 20}
}

// FromRequest extracts `page` and `per_page` from the request query string,
// falling back to defaults for missing or out-of-range values.
func FromRequest(r *http.Request) Params {
	p := Default()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= MaxPerPage {
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}
