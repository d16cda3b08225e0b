package calendar

import (
	"context"
	"time"

	"github.com/svit-college/curriculum-portal/internal/platform/memstore"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// MemoryRepository keeps events in process memory.
type MemoryRepository struct {
	store *memstore.Store[Event]
}

// NewMemoryRepository returns a repository seeded with seed.
func NewMemoryRepository(seed []Event, latency time.Duration) *MemoryRepository {
	return &MemoryRepository{store: memstore.New(
		func(e Event) int64 { return e.ID },
		func(e *Event, id int64) { e.ID = id },
		seed,
		memstore.Options[Event]{Latency: latency, Clone: clone},
	)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Event, error) {
	return r.store.List(ctx)
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (Event, error) {
	return r.store.Get(ctx, id)
}

func (r *MemoryRepository) Create(ctx context.Context, e Event) (Event, error) {
	return r.store.Create(ctx, e)
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, patch Patch) (Event, error) {
	return r.store.Update(ctx, id, func(e *Event) error {
		patch.Apply(e)
		return nil
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, id)
}

// Seed returns the 2024 academic calendar.
func Seed() []Event {
	d := shared.MustDate
	return []Event{
		{
			ID: 1, Title: "Semester Start Date", Start: d("2024-01-08"), End: d("2024-01-08"),
			Description: "Start of the Spring 2024 semester for all departments", Type: TypeAcademic,
			Links: []Link{{Title: "Academic Calendar", URL: "https://svit.edu/academic-calendar-2024"}},
		},
		{
			ID: 2, Title: "Mid-Semester Examinations", Start: d("2024-03-15"), End: d("2024-03-25"),
			Description: "Mid-semester examinations for all departments", Type: TypeExam,
			Links: []Link{
				{Title: "Exam Schedule", URL: "https://svit.edu/exams/schedule-march-2024"},
				{Title: "Exam Guidelines", URL: "https://svit.edu/exams/guidelines"},
			},
		},
		{
			ID: 3, Title: "College Technical Fest", Start: d("2024-02-15"), End: d("2024-02-17"),
			Description: "Annual Technical Fest of SVIT College", Type: TypeEvent,
			Links: []Link{{Title: "Event Details", URL: "https://svit.edu/techfest-2024"}},
		},
		{
			ID: 4, Title: "Final Practical Examinations", Start: d("2024-04-20"), End: d("2024-04-30"),
			Description: "Final practical examinations for all departments", Type: TypeExam,
		},
		{
			ID: 5, Title: "End Semester Examinations", Start: d("2024-05-10"), End: d("2024-05-25"),
			Description: "End semester theory examinations for all departments", Type: TypeExam,
		},
		{
			ID: 6, Title: "Summer Vacation", Start: d("2024-05-26"), End: d("2024-07-14"),
			Description: "Summer vacation for all students", Type: TypeHoliday,
		},
		{
			ID: 7, Title: "Odd Semester Registration", Start: d("2024-07-15"), End: d("2024-07-18"),
			Description: "Registration for Odd Semester 2024-25", Type: TypeAcademic,
		},
	}
}
