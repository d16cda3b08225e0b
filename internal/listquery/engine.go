package listquery

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Apply returns the records selected by q, in q's order. Stages run in a
// fixed order: visibility, free text, equality filters, flags, stable sort.
// The input slice is never modified.
//
// A zero Sort selects the schema default. Unknown sort keys, directions,
// filter names or flags are programming errors and panic; handlers pass
// untrusted input through Schema.Normalize first.
func Apply[T any](records []T, schema Schema[T], q Query) []T {
	order := q.Sort
	if order.Key == "" {
		order = schema.DefaultSort
	}
	field := schema.sortField(order.Key)
	if !order.Direction.Valid() {
		panic(fmt.Sprintf("listquery: unknown sort direction %q", order.Direction))
	}
	filters := make([]filterStage[T], 0, len(q.Filters))
	for name, value := range q.Filters {
		get, ok := schema.Filters[name]
		if !ok {
			panic(fmt.Sprintf("listquery: unknown filter %q", name))
		}
		if value == "" {
			continue
		}
		filters = append(filters, filterStage[T]{get: get, want: value})
	}
	flags := make([]func(T) bool, 0, len(q.Flags))
	for _, name := range q.Flags {
		pred, ok := schema.Flags[name]
		if !ok {
			panic(fmt.Sprintf("listquery: unknown flag %q", name))
		}
		flags = append(flags, pred)
	}
	needle := strings.ToLower(strings.TrimSpace(q.FreeText))

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if !visible(schema, q, rec) || !matchesText(schema, needle, rec) {
			continue
		}
		if !matchesFilters(filters, rec) || !matchesFlags(flags, rec) {
			continue
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := compareField(field, a, b)
		if order.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}

type filterStage[T any] struct {
	get  func(T) string
	want string
}

func visible[T any](schema Schema[T], q Query, rec T) bool {
	if q.VisibilityRole == "" || schema.Visibility == nil {
		return true
	}
	return slices.Contains(schema.Visibility(rec), q.VisibilityRole)
}

func matchesText[T any](schema Schema[T], needle string, rec T) bool {
	if needle == "" {
		return true
	}
	for _, get := range schema.Search {
		if strings.Contains(strings.ToLower(get(rec)), needle) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](filters []filterStage[T], rec T) bool {
	for _, f := range filters {
		if f.get(rec) != f.want {
			return false
		}
	}
	return true
}

func matchesFlags[T any](flags []func(T) bool, rec T) bool {
	for _, pred := range flags {
		if !pred(rec) {
			return false
		}
	}
	return true
}

// compareField orders two records by field. Missing values sort before
// present ones; equal values compare as 0 so the stable sort keeps input order.
func compareField[T any](field SortField[T], a, b T) int {
	av, aok := field.Value(a)
	bv, bok := field.Value(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	switch field.Kind {
	case KindText:
		return strings.Compare(av.(string), bv.(string))
	case KindNumber:
		return cmp.Compare(av.(float64), bv.(float64))
	case KindDate:
		return av.(time.Time).Compare(bv.(time.Time))
	case KindBool:
		return compareBool(av.(bool), bv.(bool))
	default:
		panic(fmt.Sprintf("listquery: unknown sort kind %d", field.Kind))
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
