package curriculum

import (
	"context"
	"time"

	"github.com/svit-college/curriculum-portal/internal/platform/memstore"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// MemoryRepository keeps curriculum entries in process memory.
type MemoryRepository struct {
	store *memstore.Store[Entry]
}

// NewMemoryRepository returns a repository seeded with seed.
func NewMemoryRepository(seed []Entry, latency time.Duration) *MemoryRepository {
	return &MemoryRepository{store: memstore.New(
		func(e Entry) int64 { return e.ID },
		func(e *Entry, id int64) { e.ID = id },
		seed,
		memstore.Options[Entry]{Latency: latency, Clone: clone},
	)}
}

func (m *MemoryRepository) List(ctx context.Context) ([]Entry, error) {
	return m.store.List(ctx)
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (Entry, error) {
	return m.store.Get(ctx, id)
}

func (m *MemoryRepository) Create(ctx context.Context, e Entry) (Entry, error) {
	return m.store.Create(ctx, e)
}

func (m *MemoryRepository) Update(ctx context.Context, id int64, patch Patch) (Entry, error) {
	return m.store.Update(ctx, id, func(e *Entry) error {
		patch.Apply(e)
		return nil
	})
}

func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return m.store.Delete(ctx, id)
}

// Seed returns the syllabus catalogue of a fresh installation. Only the first
// entry carries a full syllabus.
func Seed() []Entry {
	d := shared.MustDate
	return []Entry{
		{
			ID:          1,
			Title:       "Programming in Python",
			Department:  DeptCSE,
			Year:        1,
			Semester:    "Odd",
			Faculty:     "Dr. Arun Kumar",
			LastUpdated: d("2024-02-20"),
			Status:      StatusPublished,
			Description: "Introduction to programming concepts using Python language",
			Objectives: []string{
				"Understand basic programming concepts",
				"Learn Python syntax and semantics",
				"Develop problem-solving skills",
			},
			Outcomes: []string{
				"Ability to write Python programs",
				"Capability to solve computational problems",
				"Foundation for advanced programming courses",
			},
			Units: []Unit{
				{
					Title:       "Introduction to Python",
					Description: "Basics of Python programming",
					Topics:      []string{"Python History and Installation", "Python Syntax and Variables", "Basic Data Types"},
				},
				{
					Title:       "Control Structures",
					Description: "Conditional statements and loops",
					Topics:      []string{"Conditional Statements (if-else)", "Loops (for, while)", "Control Flow"},
				},
			},
			Textbooks: []string{
				"Python Programming: An Introduction to Computer Science by John Zelle",
				"Learning Python by Mark Lutz",
			},
			References: []string{
				"Think Python by Allen B. Downey",
				"Python Documentation (docs.python.org)",
			},
		},
		{ID: 2, Title: "Data Structures and Algorithms", Department: DeptCSE, Year: 2, Semester: "Even", Faculty: "Prof. Meena Rani", LastUpdated: d("2024-01-15"), Status: StatusPublished},
		{ID: 3, Title: "Computer Networks", Department: DeptCSE, Year: 3, Semester: "Odd", Faculty: "Dr. Sunil Reddy", LastUpdated: d("2024-03-05"), Status: StatusPublished},
		{ID: 4, Title: "Database Management Systems", Department: DeptCSE, Year: 2, Semester: "Odd", Faculty: "Prof. Ananya Singh", LastUpdated: d("2024-01-10"), Status: StatusPublished},
		{ID: 5, Title: "Digital Signal Processing", Department: DeptECE, Year: 3, Semester: "Even", Faculty: "Dr. Ravi Teja", LastUpdated: d("2024-02-28"), Status: StatusPublished},
		{ID: 6, Title: "Electromagnetic Theory", Department: DeptECE, Year: 2, Semester: "Odd", Faculty: "Prof. Shalini Verma", LastUpdated: d("2024-02-10"), Status: StatusPublished},
		{ID: 7, Title: "Power Systems", Department: DeptEEE, Year: 3, Semester: "Odd", Faculty: "Dr. Ramesh Iyer", LastUpdated: d("2024-03-02"), Status: StatusPublished},
		{ID: 8, Title: "Thermodynamics", Department: DeptMECH, Year: 2, Semester: "Even", Faculty: "Prof. Suresh Kumar", LastUpdated: d("2024-01-25"), Status: StatusPublished},
	}
}
