// Package pagination pages in-memory lists such as the notification log.
package pagination

import "github.com/gofiber/fiber/v2"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a requested page, clamped to sane bounds
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes the returned page
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// GetParams reads ?page= and ?limit=; invalid values fall back to defaults
func GetParams(c *fiber.Ctx) *Params {
	page := max(c.QueryInt("page", 1), 1)
	limit := c.QueryInt("limit", DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	return &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// GetMeta builds the metadata for a page out of total items
func GetMeta(params *Params, total int64) *Meta {
	limit := int64(params.Limit)
	totalPages := int((total + limit - 1) / limit)
	return &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
	}
}
