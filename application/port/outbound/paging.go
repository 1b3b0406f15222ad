package outbound

import "math"

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageQuery describes an optional page of results. Page is zero-based.
// Adapters validate SortBy against the fields they can order by.
type PageQuery struct {
	Page      int
	Size      int
	SortBy    string
	Direction SortDirection
}

// Offset returns the number of items before the page. It saturates at
// math.MaxInt instead of overflowing and is never negative.
func (q PageQuery) Offset() int {
	if q.Page <= 0 || q.Size <= 0 {
		return 0
	}
	if q.Page > math.MaxInt/q.Size {
		return math.MaxInt
	}
	return q.Page * q.Size
}

// TotalPages returns the number of pages needed for total items.
func (q PageQuery) TotalPages(total int) int {
	if q.Size <= 0 {
		return 0
	}
	return (total + q.Size - 1) / q.Size
}
