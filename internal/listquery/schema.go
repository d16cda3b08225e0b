package listquery

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/svit-college/curriculum-portal/internal/rbac"
)

// Kind selects how sort values are compared.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindBool
)

// SortField declares a sortable field. Value returns the field value and
// whether it is present; the dynamic type must match Kind (string, float64,
// time.Time or bool).
type SortField[T any] struct {
	Kind  Kind
	Value func(T) (any, bool)
}

// TextField sorts lexically. Empty strings count as missing.
func TextField[T any](fn func(T) string) SortField[T] {
	return SortField[T]{Kind: KindText, Value: func(rec T) (any, bool) {
		v := fn(rec)
		return v, v != ""
	}}
}

// NumberField sorts numerically.
func NumberField[T any](fn func(T) float64) SortField[T] {
	return SortField[T]{Kind: KindNumber, Value: func(rec T) (any, bool) {
		return fn(rec), true
	}}
}

// DateField sorts chronologically. Zero times count as missing.
func DateField[T any](fn func(T) time.Time) SortField[T] {
	return SortField[T]{Kind: KindDate, Value: func(rec T) (any, bool) {
		v := fn(rec)
		return v, !v.IsZero()
	}}
}

// BoolField sorts false before true.
func BoolField[T any](fn func(T) bool) SortField[T] {
	return SortField[T]{Kind: KindBool, Value: func(rec T) (any, bool) {
		return fn(rec), true
	}}
}

// Schema declares how a record type is searched, filtered and sorted.
type Schema[T any] struct {
	// Search lists the fields matched by free text.
	Search []func(T) string
	// Filters maps filter names to the field compared for equality.
	Filters map[string]func(T) string
	// Flags maps flag names to boolean predicates.
	Flags map[string]func(T) bool
	Sorts map[string]SortField[T]
	// Visibility returns the roles allowed to see a record. Nil means the
	// record type has no visibility concept and every record is visible.
	Visibility  func(T) []rbac.Role
	DefaultSort Sort
}

// Reset returns the empty query ordered by the default sort.
func (s Schema[T]) Reset() Query {
	return Query{Sort: s.DefaultSort}
}

// Normalize turns untrusted input into a query Apply accepts: unknown sort
// keys and directions fall back to the default sort, unknown or empty filters
// and unknown flags are dropped.
func (s Schema[T]) Normalize(q Query) Query {
	out := Query{
		FreeText:       strings.TrimSpace(q.FreeText),
		VisibilityRole: q.VisibilityRole,
	}
	for name, value := range q.Filters {
		if _, ok := s.Filters[name]; !ok || value == "" {
			continue
		}
		if out.Filters == nil {
			out.Filters = make(map[string]string)
		}
		out.Filters[name] = value
	}
	for _, flag := range q.Flags {
		if _, ok := s.Flags[flag]; ok && !slices.Contains(out.Flags, flag) {
			out.Flags = append(out.Flags, flag)
		}
	}
	out.Sort = q.Sort
	if _, ok := s.Sorts[out.Sort.Key]; !ok {
		out.Sort = s.DefaultSort
	}
	if !out.Sort.Direction.Valid() {
		if out.Sort.Key == s.DefaultSort.Key {
			out.Sort.Direction = s.DefaultSort.Direction
		} else {
			out.Sort.Direction = Asc
		}
	}
	return out
}

// FilterNames returns the declared filter names in sorted order.
func (s Schema[T]) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for name := range s.Filters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s Schema[T]) sortField(key string) SortField[T] {
	field, ok := s.Sorts[key]
	if !ok {
		panic(fmt.Sprintf("listquery: unknown sort key %q", key))
	}
	return field
}
