// Package pagination slices ordered result sets into pages and renders the
// page-number window used by listing screens.
package pagination

import (
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// Ellipsis marks a collapsed gap in the page-number window produced by
// IterPages. Two markers never appear consecutively.
const Ellipsis = -1

// Window edge sizes: always show the first and last two pages, two pages
// before the current one and five after it.
const (
	leftEdge     = 2
	leftCurrent  = 2
	rightCurrent = 5
	rightEdge    = 2
)

// Pagination describes one page of an ordered result set.
type Pagination struct {
	Page    int
	PerPage int
	Total   int
}

// New validates the requested page number. Page numbers are 1-based;
// requesting a page beyond the last is not an error and yields an empty
// slice with correct metadata.
func New(total, page, perPage int) (*Pagination, error) {
	if page < 1 {
		return nil, util.NewValidationError("page number must be >= 1", map[string]any{"page": page})
	}
	if perPage < 1 {
		return nil, util.NewValidationError("page size must be >= 1", map[string]any{"per_page": perPage})
	}
	if total < 0 {
		total = 0
	}
	return &Pagination{Page: page, PerPage: perPage, Total: total}, nil
}

// Pages returns the total page count, ceil(total/perPage).
func (p *Pagination) Pages() int {
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Offset returns the zero-based index of the first item on this page.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Bounds returns the [start, end) slice indices for this page, clipped to
// the sequence length.
func (p *Pagination) Bounds() (int, int) {
	start := p.Offset()
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// HasPrev reports whether a previous page exists.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p *Pagination) HasNext() bool {
	return p.Page < p.Pages()
}

// PrevNum returns the previous page number, or 0 when on the first page.
func (p *Pagination) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

// NextNum returns the next page number, or 0 when on the last page.
func (p *Pagination) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// IterPages returns the visible page-number window: the first two pages, up
// to two pages before and five after the current page, and the last two
// pages, with each gap collapsed to a single Ellipsis marker.
func (p *Pagination) IterPages() []int {
	pages := p.Pages()
	window := make([]int, 0, pages)
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				window = append(window, Ellipsis)
			}
			window = append(window, num)
			last = num
		}
	}
	return window
}
