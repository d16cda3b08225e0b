package resources

import (
	"context"
	"time"

	"github.com/svit-college/curriculum-portal/internal/platform/memstore"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// MemoryRepository keeps resources in process memory.
type MemoryRepository struct {
	store *memstore.Store[Resource]
}

// NewMemoryRepository returns a repository seeded with seed.
func NewMemoryRepository(seed []Resource, latency time.Duration) *MemoryRepository {
	return &MemoryRepository{store: memstore.New(
		func(r Resource) int64 { return r.ID },
		func(r *Resource, id int64) { r.ID = id },
		seed,
		memstore.Options[Resource]{Latency: latency, Clone: clone},
	)}
}

func (m *MemoryRepository) List(ctx context.Context) ([]Resource, error) {
	return m.store.List(ctx)
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (Resource, error) {
	return m.store.Get(ctx, id)
}

func (m *MemoryRepository) Create(ctx context.Context, r Resource) (Resource, error) {
	return m.store.Create(ctx, r)
}

func (m *MemoryRepository) Update(ctx context.Context, id int64, patch Patch) (Resource, error) {
	return m.store.Update(ctx, id, func(r *Resource) error {
		patch.Apply(r)
		return nil
	})
}

func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return m.store.Delete(ctx, id)
}

// Seed returns the default link collection.
func Seed() []Resource {
	everyone := []rbac.Role{rbac.RoleStudent, rbac.RoleFaculty, rbac.RoleAdmin}
	staff := []rbac.Role{rbac.RoleFaculty, rbac.RoleAdmin}
	admins := []rbac.Role{rbac.RoleAdmin}
	d := shared.MustDate
	return []Resource{
		{ID: 1, Title: "College Website", URL: "https://svit.edu", Description: "Official website of SVIT College", Category: CategoryOfficial, AddedBy: "Admin User", AddedOn: d("2024-01-01"), Visibility: everyone},
		{ID: 2, Title: "Library Portal", URL: "https://library.svit.edu", Description: "Online portal for SVIT College Library", Category: CategoryAcademic, AddedBy: "Admin User", AddedOn: d("2024-01-05"), Visibility: everyone},
		{ID: 3, Title: "Learning Management System", URL: "https://lms.svit.edu", Description: "SVIT Learning Management System for online courses", Category: CategoryAcademic, AddedBy: "Admin User", AddedOn: d("2024-01-10"), Visibility: everyone},
		{ID: 4, Title: "Faculty Portal", URL: "https://faculty.svit.edu", Description: "Faculty portal for managing courses and student information", Category: CategoryOfficial, AddedBy: "Admin User", AddedOn: d("2024-01-15"), Visibility: staff},
		{ID: 5, Title: "Exam Registration Portal", URL: "https://exams.svit.edu", Description: "Portal for exam registration and results", Category: CategoryAcademic, AddedBy: "Admin User", AddedOn: d("2024-01-20"), Visibility: everyone},
		{ID: 6, Title: "Campus Recruitment Portal", URL: "https://placements.svit.edu", Description: "Portal for campus recruitment and internship opportunities", Category: CategoryPlacement, AddedBy: "Admin User", AddedOn: d("2024-02-01"), Visibility: everyone},
		{ID: 7, Title: "Administrative Dashboard", URL: "https://admin.svit.edu", Description: "Administrative dashboard for college management", Category: CategoryOfficial, AddedBy: "Admin User", AddedOn: d("2024-02-10"), Visibility: admins},
	}
}
