package curriculum

import (
	"strconv"
	"time"

	"github.com/svit-college/curriculum-portal/internal/listquery"
)

// Filter names accepted on the curriculum list.
const (
	FilterDepartment = "department"
	FilterYear       = "year"
	FilterSemester   = "semester"
	FilterStatus     = "status"
)

// Schema declares how curriculum lists are searched, filtered and sorted.
var Schema = listquery.Schema[Entry]{
	Search: []func(Entry) string{
		func(e Entry) string { return e.Title },
		func(e Entry) string { return e.Description },
		func(e Entry) string { return e.Faculty },
	},
	Filters: map[string]func(Entry) string{
		FilterDepartment: func(e Entry) string { return e.Department },
		FilterYear:       func(e Entry) string { return strconv.Itoa(e.Year) },
		FilterSemester:   func(e Entry) string { return e.Semester },
		FilterStatus:     func(e Entry) string { return string(e.Status) },
	},
	Sorts: map[string]listquery.SortField[Entry]{
		"title":       listquery.TextField(func(e Entry) string { return e.Title }),
		"department":  listquery.TextField(func(e Entry) string { return e.Department }),
		"year":        listquery.NumberField(func(e Entry) float64 { return float64(e.Year) }),
		"semester":    listquery.TextField(func(e Entry) string { return e.Semester }),
		"faculty":     listquery.TextField(func(e Entry) string { return e.Faculty }),
		"lastUpdated": listquery.DateField(func(e Entry) time.Time { return e.LastUpdated }),
	},
	DefaultSort: listquery.Sort{Key: "lastUpdated", Direction: listquery.Desc},
}
