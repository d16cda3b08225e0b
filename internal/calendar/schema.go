package calendar

import (
	"time"

	"github.com/svit-college/curriculum-portal/internal/listquery"
)

// FilterType narrows a list to one event type.
const FilterType = "type"

// Schema declares how event lists are searched and sorted.
var Schema = listquery.Schema[Event]{
	Search: []func(Event) string{
		func(e Event) string { return e.Title },
		func(e Event) string { return e.Description },
	},
	Filters: map[string]func(Event) string{
		FilterType: func(e Event) string { return string(e.Type) },
	},
	Sorts: map[string]listquery.SortField[Event]{
		"start": listquery.DateField(func(e Event) time.Time { return e.Start }),
		"end":   listquery.DateField(func(e Event) time.Time { return e.End }),
		"title": listquery.TextField(func(e Event) string { return e.Title }),
		"type":  listquery.TextField(func(e Event) string { return string(e.Type) }),
	},
	DefaultSort: listquery.Sort{Key: "start", Direction: listquery.Asc},
}
