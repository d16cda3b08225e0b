package announcements

import (
	"time"

	"github.com/svit-college/curriculum-portal/internal/listquery"
)

// FlagImportant narrows a list to important announcements.
const FlagImportant = "important"

// Schema declares how announcement lists are searched and sorted.
var Schema = listquery.Schema[Announcement]{
	Search: []func(Announcement) string{
		func(a Announcement) string { return a.Title },
		func(a Announcement) string { return a.Content },
		func(a Announcement) string { return a.Author },
	},
	Flags: map[string]func(Announcement) bool{
		FlagImportant: func(a Announcement) bool { return a.Important },
	},
	Sorts: map[string]listquery.SortField[Announcement]{
		"date":      listquery.DateField(func(a Announcement) time.Time { return a.Date }),
		"title":     listquery.TextField(func(a Announcement) string { return a.Title }),
		"author":    listquery.TextField(func(a Announcement) string { return a.Author }),
		"important": listquery.BoolField(func(a Announcement) bool { return a.Important }),
	},
	DefaultSort: listquery.Sort{Key: "date", Direction: listquery.Desc},
}
