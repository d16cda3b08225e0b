package listquery

import "github.com/svit-college/curriculum-portal/internal/shared"

// Page bundles one window of a list view with the links a template needs.
type Page[T any] struct {
	Items      []T
	Query      Query
	Sorts      map[string]SortLink
	Pagination shared.Pagination
	BaseURL    string
	PrevURL    string
	NextURL    string
}

// NewPage paginates records (already passed through Apply) and builds sort
// and paging links for base.
func NewPage[T any](records []T, q Query, base string, page, perPage int, sortKeys ...string) Page[T] {
	items, meta := Paginate(records, page, perPage)
	p := Page[T]{
		Items:      items,
		Query:      q,
		Sorts:      SortLinks(q, base, sortKeys...),
		Pagination: meta,
		BaseURL:    base,
	}
	if meta.HasPrev() {
		p.PrevURL = PageURL(q, base, meta.PrevPage(), meta.PerPage)
	}
	if meta.HasNext() {
		p.NextURL = PageURL(q, base, meta.NextPage(), meta.PerPage)
	}
	return p
}
