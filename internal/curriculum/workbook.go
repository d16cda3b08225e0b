package curriculum

import (
	"strings"

	"github.com/svit-college/curriculum-portal/internal/export"
)

// Workbook lays out curriculum exports.
var Workbook = export.Workbook[Entry]{
	Sheet: "Curriculum",
	Title: "Curriculum Catalogue",
	Columns: []export.Column[Entry]{
		{Header: "ID", Width: 6, Value: func(e Entry) any { return e.ID }},
		{Header: "Title", Width: 40, Value: func(e Entry) any { return e.Title }},
		{Header: "Department", Width: 12, Value: func(e Entry) any { return e.Department }},
		{Header: "Year", Width: 6, Value: func(e Entry) any { return e.Year }},
		{Header: "Semester", Width: 10, Value: func(e Entry) any { return e.Semester }},
		{Header: "Faculty", Width: 24, Value: func(e Entry) any { return e.Faculty }},
		{Header: "Status", Width: 12, Value: func(e Entry) any { return string(e.Status) }},
		{Header: "Last Updated", Width: 14, Value: func(e Entry) any { return e.LastUpdated }},
		{Header: "Units", Width: 40, Value: func(e Entry) any {
			titles := make([]string, len(e.Units))
			for i, u := range e.Units {
				titles[i] = u.Title
			}
			return strings.Join(titles, "; ")
		}},
	},
}
