package resources

import (
	"time"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/rbac"
)

// FilterCategory narrows a list to one category.
const FilterCategory = "category"

// Schema declares how resource lists are searched, sorted and scoped by role.
var Schema = listquery.Schema[Resource]{
	Search: []func(Resource) string{
		func(r Resource) string { return r.Title },
		func(r Resource) string { return r.Description },
	},
	Filters: map[string]func(Resource) string{
		FilterCategory: func(r Resource) string { return string(r.Category) },
	},
	Sorts: map[string]listquery.SortField[Resource]{
		"title":    listquery.TextField(func(r Resource) string { return r.Title }),
		"addedOn":  listquery.DateField(func(r Resource) time.Time { return r.AddedOn }),
		"category": listquery.TextField(func(r Resource) string { return string(r.Category) }),
	},
	Visibility:  func(r Resource) []rbac.Role { return r.Visibility },
	DefaultSort: listquery.Sort{Key: "title", Direction: listquery.Asc},
}
