package curriculum

import (
	"context"
	"slices"
	"time"
)

// Department codes offered by the college.
const (
	DeptCSE   = "CSE"
	DeptECE   = "ECE"
	DeptEEE   = "EEE"
	DeptMECH  = "MECH"
	DeptCIVIL = "CIVIL"
)

// Departments lists the department codes in display order.
var Departments = []string{DeptCSE, DeptECE, DeptEEE, DeptMECH, DeptCIVIL}

// Semesters lists the semester labels.
var Semesters = []string{"Odd", "Even"}

// Years lists the study years.
var Years = []int{1, 2, 3, 4}

// Status tracks the publication state of an entry.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusArchived  Status = "archived"
)

// Statuses lists every status.
var Statuses = []Status{StatusPublished, StatusDraft, StatusArchived}

// Unit is one teaching unit of a syllabus.
type Unit struct {
	Title       string   `json:"title" form:"unit_title" validate:"required"`
	Description string   `json:"description" form:"unit_description"`
	Topics      []string `json:"topics" form:"unit_topics"`
}

// Entry is a course syllabus.
type Entry struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" form:"title" validate:"required,max=200"`
	Department  string    `json:"department" form:"department" validate:"required,oneof=CSE ECE EEE MECH CIVIL"`
	Year        int       `json:"year" form:"year" validate:"required,min=1,max=4"`
	Semester    string    `json:"semester" form:"semester" validate:"required,oneof=Odd Even"`
	Faculty     string    `json:"faculty" form:"faculty" validate:"required"`
	LastUpdated time.Time `json:"last_updated" form:"last_updated" validate:"required"`
	Status      Status    `json:"status" form:"status" validate:"required,oneof=published draft archived"`
	Description string    `json:"description" form:"description"`
	Objectives  []string  `json:"objectives" form:"objectives"`
	Outcomes    []string  `json:"outcomes" form:"outcomes"`
	Units       []Unit    `json:"units" form:"units" validate:"dive"`
	Textbooks   []string  `json:"textbooks" form:"textbooks"`
	References  []string  `json:"references" form:"references"`
}

// Published reports whether students may see the entry.
func (e Entry) Published() bool { return e.Status == StatusPublished }

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string
	Department  *string
	Year        *int
	Semester    *string
	Faculty     *string
	LastUpdated *time.Time
	Status      *Status
	Description *string
	Objectives  *[]string
	Outcomes    *[]string
	Units       *[]Unit
	Textbooks   *[]string
	References  *[]string
}

// Apply merges the patch into e.
func (p Patch) Apply(e *Entry) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Semester != nil {
		e.Semester = *p.Semester
	}
	if p.Faculty != nil {
		e.Faculty = *p.Faculty
	}
	if p.LastUpdated != nil {
		e.LastUpdated = *p.LastUpdated
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Objectives != nil {
		e.Objectives = slices.Clone(*p.Objectives)
	}
	if p.Outcomes != nil {
		e.Outcomes = slices.Clone(*p.Outcomes)
	}
	if p.Units != nil {
		e.Units = cloneUnits(*p.Units)
	}
	if p.Textbooks != nil {
		e.Textbooks = slices.Clone(*p.Textbooks)
	}
	if p.References != nil {
		e.References = slices.Clone(*p.References)
	}
}

// Repository persists curriculum entries.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Create(ctx context.Context, e Entry) (Entry, error)
	Update(ctx context.Context, id int64, patch Patch) (Entry, error)
	Delete(ctx context.Context, id int64) error
}

func clone(e Entry) Entry {
	e.Objectives = slices.Clone(e.Objectives)
	e.Outcomes = slices.Clone(e.Outcomes)
	e.Units = cloneUnits(e.Units)
	e.Textbooks = slices.Clone(e.Textbooks)
	e.References = slices.Clone(e.References)
	return e
}

func cloneUnits(units []Unit) []Unit {
	if units == nil {
		return nil
	}
	out := make([]Unit, len(units))
	for i, u := range units {
		u.Topics = slices.Clone(u.Topics)
		out[i] = u
	}
	return out
}
