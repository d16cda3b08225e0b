// Package listquery derives the filtered, sorted view a list screen renders
// from a raw record collection and a declarative Query.
package listquery

import (
	"net/url"
	"slices"
	"strings"

	"github.com/svit-college/curriculum-portal/internal/rbac"
)

// Direction orders a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool { return d == Asc || d == Desc }

// Sort selects the sort key and direction.
type Sort struct {
	Key       string
	Direction Direction
}

// Query describes a list view. It is built per request and never persisted.
type Query struct {
	FreeText       string
	Filters        map[string]string
	Flags          []string
	Sort           Sort
	VisibilityRole rbac.Role
}

// Filter returns the value of a named equality filter.
func (q Query) Filter(name string) string {
	return q.Filters[name]
}

// HasFlag reports whether the named boolean flag is set.
func (q Query) HasFlag(name string) bool {
	return slices.Contains(q.Flags, name)
}

// Toggle returns a copy of q sorted by key. Re-selecting the active key while
// ascending switches to descending; any other selection sorts ascending.
func (q Query) Toggle(key string) Query {
	next := q.clone()
	if q.Sort.Key == key && q.Sort.Direction == Asc {
		next.Sort = Sort{Key: key, Direction: Desc}
	} else {
		next.Sort = Sort{Key: key, Direction: Asc}
	}
	return next
}

// Values encodes q as query-string parameters. The visibility role is never
// encoded; handlers derive it from the session.
func (q Query) Values() url.Values {
	values := url.Values{}
	if text := strings.TrimSpace(q.FreeText); text != "" {
		values.Set(paramText, text)
	}
	for name, value := range q.Filters {
		if value != "" {
			values.Set(name, value)
		}
	}
	for _, flag := range q.Flags {
		values.Add(paramFlag, flag)
	}
	if q.Sort.Key != "" {
		values.Set(paramSort, q.Sort.Key)
		values.Set(paramDir, string(q.Sort.Direction))
	}
	return values
}

// URL renders q against base, e.g. "/announcements?q=exam&sort=date&dir=desc".
func (q Query) URL(base string) string {
	encoded := q.Values().Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}

func (q Query) clone() Query {
	next := q
	if q.Filters != nil {
		next.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			next.Filters[k] = v
		}
	}
	next.Flags = slices.Clone(q.Flags)
	return next
}
