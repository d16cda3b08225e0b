package calendar

import (
	"context"
	"slices"
	"time"
)

// EventType classifies calendar events.
type EventType string

const (
	TypeAcademic EventType = "academic"
	TypeExam     EventType = "exam"
	TypeEvent    EventType = "event"
	TypeHoliday  EventType = "holiday"
)

// EventTypes lists the recognised types in display order.
var EventTypes = []EventType{TypeAcademic, TypeExam, TypeEvent, TypeHoliday}

// Label returns the display name of t.
func (t EventType) Label() string {
	switch t {
	case TypeAcademic:
		return "Academic"
	case TypeExam:
		return "Examination"
	case TypeEvent:
		return "Event"
	case TypeHoliday:
		return "Holiday"
	}
	return string(t)
}

// Badge returns the CSS modifier used for t.
func (t EventType) Badge() string {
	switch t {
	case TypeExam:
		return "danger"
	case TypeEvent:
		return "success"
	case TypeHoliday:
		return "warning"
	}
	return "primary"
}

// Link is an external reference attached to an event.
type Link struct {
	Title string `json:"title" form:"link_title" validate:"required,max=200"`
	URL   string `json:"url" form:"link_url" validate:"required,http_url"`
}

// Event is an entry in the academic calendar. Start and End are civil dates
// and End is inclusive.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" form:"title" validate:"required,max=200"`
	Start       time.Time `json:"start" form:"start" validate:"required"`
	End         time.Time `json:"end" form:"end" validate:"required,gtefield=Start"`
	Description string    `json:"description" form:"description"`
	Type        EventType `json:"type" form:"type" validate:"required,oneof=academic exam event holiday"`
	Links       []Link    `json:"links" form:"links" validate:"dive"`
}

// Days returns the number of calendar days the event covers.
func (e Event) Days() int {
	return int(e.End.Sub(e.Start).Hours()/24) + 1
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	Description *string
	Type        *EventType
	Links       *[]Link
}

// Apply merges the patch into e.
func (p Patch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Links != nil {
		e.Links = slices.Clone(*p.Links)
	}
}

// Repository persists calendar events.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id int64) (Event, error)
	Create(ctx context.Context, e Event) (Event, error)
	Update(ctx context.Context, id int64, patch Patch) (Event, error)
	Delete(ctx context.Context, id int64) error
}

func clone(e Event) Event {
	e.Links = slices.Clone(e.Links)
	return e
}
