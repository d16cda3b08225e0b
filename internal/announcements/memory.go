package announcements

import (
	"context"
	"time"

	"github.com/svit-college/curriculum-portal/internal/platform/memstore"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// MemoryRepository keeps announcements in process memory.
type MemoryRepository struct {
	store *memstore.Store[Announcement]
}

// NewMemoryRepository returns a repository seeded with seed.
func NewMemoryRepository(seed []Announcement, latency time.Duration) *MemoryRepository {
	return &MemoryRepository{store: memstore.New(
		func(a Announcement) int64 { return a.ID },
		func(a *Announcement, id int64) { a.ID = id },
		seed,
		memstore.Options[Announcement]{Latency: latency, Clone: clone},
	)}
}

func (r *MemoryRepository) List(ctx context.Context) ([]Announcement, error) {
	return r.store.List(ctx)
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (Announcement, error) {
	return r.store.Get(ctx, id)
}

func (r *MemoryRepository) Create(ctx context.Context, a Announcement) (Announcement, error) {
	return r.store.Create(ctx, a)
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, patch Patch) (Announcement, error) {
	return r.store.Update(ctx, id, func(a *Announcement) error {
		patch.Apply(a)
		return nil
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, id)
}

// Seed returns the announcements shipped with a fresh installation.
func Seed() []Announcement {
	return []Announcement{
		{
			ID:        1,
			Title:     "Mid-Semester Exam Schedule",
			Content:   "The mid-semester examinations will begin from March 15, 2024. Please check the detailed schedule on the college website.",
			Date:      shared.MustDate("2024-03-01"),
			Author:    "Admin User",
			Important: true,
			Links:     []Link{{Title: "Exam Schedule PDF", URL: "https://svit.edu/exams/schedule-march-2024.pdf"}},
		},
		{
			ID:      2,
			Title:   "Workshop on Machine Learning",
			Content: "A two-day workshop on Machine Learning with Python will be conducted on March 10-11, 2024. All CSE students are encouraged to participate.",
			Date:    shared.MustDate("2024-02-28"),
			Author:  "Dr. Ramesh Kumar",
			Links: []Link{
				{Title: "Registration Form", URL: "https://svit.edu/workshops/ml-workshop-registration"},
				{Title: "Workshop Details", URL: "https://svit.edu/workshops/ml-workshop-details"},
			},
		},
		{
			ID:      3,
			Title:   "Library Timings Extended",
			Content: "The college library will remain open until 9 PM on weekdays during the examination period (March 10 to April 5, 2024).",
			Date:    shared.MustDate("2024-02-25"),
			Author:  "Admin User",
		},
	}
}
