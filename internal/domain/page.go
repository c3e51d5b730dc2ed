package domain

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int
}

// Pages returns the number of pages needed to hold Total items.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page < p.Pages()
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}
