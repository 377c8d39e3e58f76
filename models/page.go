package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is 1-based pagination as accepted by list endpoints.
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 {
	n := p.Normalize()
	return int64((n.Page - 1) * n.PageSize)
}

// ListResult is the envelope returned by list endpoints.
type ListResult[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}
