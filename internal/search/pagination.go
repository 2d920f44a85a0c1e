package search

import "math"

const (
	DefaultPage     = 1
	DefaultLimit    = 10
	MaxPublicLimit  = 50
	MaxAdminLimit   = 100
	MaxSearchLength = 100

	// MaxPage keeps (page-1)*limit well inside int on every platform.
	MaxPage = 1_000_000
)

type Page struct {
	Number int
	Limit  int
}

// Offset is the number of items before the page. It saturates at math.MaxInt instead
// of wrapping.
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

func NewPagination(p Page, total int64) Pagination {
	pages := 0
	if p.Limit > 0 && total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  pages,
		TotalItems:  total,
		HasNextPage: p.Number < pages,
		HasPrevPage: p.Number > 1,
		Limit:       p.Limit,
	}
}
