package helpers

import (
	"net/http"
	"strconv"

	"quickagenda/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing or
// malformed values fall back to the defaults; page_size is capped at
// MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()

	page := DefaultPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		page = v
	}

	size := DefaultPageSize
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v >= 1 {
		size = v
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return domain.PaginationParams{Page: page, PageSize: size}
}

// PaginationMeta accompanies every paginated list payload.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta derives the page count from the total; a zero page size
// yields zero pages.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
