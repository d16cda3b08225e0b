package listquery

import (
	"net/url"
	"strconv"

	"github.com/svit-college/curriculum-portal/internal/shared"
)

const (
	paramText    = "q"
	paramFlag    = "flag"
	paramSort    = "sort"
	paramDir     = "dir"
	paramPage    = "page"
	paramPerPage = "per_page"
)

// ParseQuery reads a list query from the query string and normalizes it
// against schema. Filters are read from parameters named after the schema's
// filter names.
func ParseQuery[T any](values url.Values, schema Schema[T]) Query {
	q := Query{
		FreeText: values.Get(paramText),
		Flags:    values[paramFlag],
		Sort: Sort{
			Key:       values.Get(paramSort),
			Direction: Direction(values.Get(paramDir)),
		},
	}
	for name := range schema.Filters {
		if v := values.Get(name); v != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[name] = v
		}
	}
	return schema.Normalize(q)
}

// ParsePage reads page and per_page, defaulting to the first page of
// shared.DefaultPerPage records.
func ParsePage(values url.Values) (page, perPage int) {
	page, err := strconv.Atoi(values.Get(paramPage))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err = strconv.Atoi(values.Get(paramPerPage))
	if err != nil || !shared.ValidPerPage(perPage) {
		perPage = shared.DefaultPerPage
	}
	return page, perPage
}

// Paginate returns the window of records for page along with its metadata.
func Paginate[T any](records []T, page, perPage int) ([]T, shared.Pagination) {
	meta := shared.NewPagination(page, perPage, len(records))
	if len(records) == 0 {
		return []T{}, meta
	}
	start := meta.Offset()
	end := min(start+meta.PerPage, len(records))
	return records[start:end], meta
}
