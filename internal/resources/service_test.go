package resources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

var admin = &rbac.Principal{ID: 3, DisplayName: "Admin User", Role: rbac.RoleAdmin}

func newTestService() *Service {
	return NewService(NewMemoryRepository(Seed(), 0), nil, nil)
}

func titles(items []Resource) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.Title
	}
	return out
}

func TestForRoleScopesVisibility(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	student, err := svc.ForRole(ctx, rbac.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, student, 5)
	assert.NotContains(t, titles(student), "Faculty Portal")
	assert.NotContains(t, titles(student), "Administrative Dashboard")

	faculty, err := svc.ForRole(ctx, rbac.RoleFaculty)
	require.NoError(t, err)
	assert.Len(t, faculty, 6)
	assert.Contains(t, titles(faculty), "Faculty Portal")

	everything, err := svc.ForRole(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, everything, 7)
	assert.Equal(t, "Administrative Dashboard", everything[0].Title, "ordered by title")
}

func TestByCategory(t *testing.T) {
	items, err := newTestService().ByCategory(context.Background(), rbac.RoleStudent, CategoryOfficial)
	require.NoError(t, err)
	assert.Equal(t, []string{"College Website"}, titles(items))
}

func TestListSearchAndSort(t *testing.T) {
	q := listquery.Query{
		FreeText: "portal",
		Sort:     listquery.Sort{Key: "addedOn", Direction: listquery.Desc},
	}
	items, err := newTestService().List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Campus Recruitment Portal",
		"Exam Registration Portal",
		"Faculty Portal",
		"Library Portal",
	}, titles(items))
}

func TestCreateStampsDateAndAuthor(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }

	created, err := svc.Create(context.Background(), admin, Resource{
		Title:      "  Alumni Network ",
		URL:        "https://alumni.svit.edu",
		Category:   CategoryOther,
		AddedOn:    shared.MustDate("2020-01-01"),
		Visibility: []rbac.Role{rbac.RoleStudent},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)
	assert.Equal(t, "Alumni Network", created.Title)
	assert.Equal(t, "Admin User", created.AddedBy)
	assert.Equal(t, shared.MustDate("2024-03-05"), created.AddedOn)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), admin, Resource{Title: "Broken", URL: "not a url", Category: "misc"})
	require.ErrorIs(t, err, shared.ErrValidation)

	fields := shared.FieldErrors(err)
	assert.Contains(t, fields, "url")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "visibility")

	n, err := svc.ForRole(context.Background(), rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, n, 7, "nothing stored")
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	roles := []rbac.Role{rbac.RoleStudent, rbac.RoleFaculty, rbac.RoleAdmin}
	updated, err := svc.Update(ctx, admin, 4, Patch{Visibility: &roles})
	require.NoError(t, err)
	assert.Equal(t, "Faculty Portal", updated.Title)

	student, err := svc.ForRole(ctx, rbac.RoleStudent)
	require.NoError(t, err)
	assert.Contains(t, titles(student), "Faculty Portal")

	empty := []rbac.Role{}
	_, err = svc.Update(ctx, admin, 4, Patch{Visibility: &empty})
	assert.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, svc.Delete(ctx, admin, 4))
	_, err = svc.Get(ctx, 4)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin, 4), shared.ErrNotFound)
}
