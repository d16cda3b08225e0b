package announcements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

type recordingNotifier struct {
	ids []int64
	err error
}

func (n *recordingNotifier) NotifyImportant(ctx context.Context, id int64, title string) error {
	n.ids = append(n.ids, id)
	return n.err
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

var admin = &rbac.Principal{ID: 3, DisplayName: "Admin User", Role: rbac.RoleAdmin}

func newTestService(t *testing.T) (*Service, *recordingNotifier, *recordingAuditor) {
	t.Helper()
	notifier := &recordingNotifier{}
	auditor := &recordingAuditor{}
	clock := func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	svc := NewService(NewMemoryRepository(Seed(), 0), WithNotifier(notifier), WithAuditor(auditor), WithClock(clock))
	return svc, notifier, auditor
}

func titles(list []Announcement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Title
	}
	return out
}

func TestListDefaultOrderIsNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	list, err := svc.List(context.Background(), Schema.Reset())
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid-Semester Exam Schedule", "Workshop on Machine Learning", "Library Timings Extended"}, titles(list))
}

func TestListFreeText(t *testing.T) {
	svc, _, _ := newTestService(t)
	q := Schema.Reset()
	q.FreeText = "library"
	list, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Library Timings Extended"}, titles(list))

	q.FreeText = "ramesh"
	list, err = svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Workshop on Machine Learning"}, titles(list), "author is searchable")
}

func TestRecentAndImportant(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid-Semester Exam Schedule", "Workshop on Machine Learning"}, titles(recent))

	important, err := svc.Important(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid-Semester Exam Schedule"}, titles(important))
}

func TestCreateDefaultsAndNotifies(t *testing.T) {
	svc, notifier, auditor := newTestService(t)
	created, err := svc.Create(context.Background(), admin, Announcement{
		Title:     "Convocation",
		Content:   "Convocation will be held in the main hall.",
		Important: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "2024-03-05", shared.FormatDate(created.Date))
	assert.Equal(t, "Admin User", created.Author)
	assert.Equal(t, []int64{4}, notifier.ids)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, "create", auditor.logs[0].Action)
	assert.Equal(t, int64(3), auditor.logs[0].ActorID)
}

func TestCreateValidation(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	_, err := svc.Create(context.Background(), admin, Announcement{Content: "x", Links: []Link{{Title: "bad", URL: "ftp://nope"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
	fields := shared.FieldErrors(err)
	assert.Contains(t, fields, "title")
	assert.Empty(t, notifier.ids)
}

func TestNotifierFailureDoesNotFailCreate(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	notifier.err = errors.New("queue down")
	_, err := svc.Create(context.Background(), admin, Announcement{Title: "T", Content: "C", Important: true})
	assert.NoError(t, err)
}

func TestUpdateIsPartialMerge(t *testing.T) {
	svc, _, _ := newTestService(t)
	title := "Library Timings Extended Again"
	updated, err := svc.Update(context.Background(), admin, 3, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Admin User", updated.Author)
	assert.Equal(t, "2024-02-25", shared.FormatDate(updated.Date))
}

func TestToggleImportant(t *testing.T) {
	svc, notifier, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.ToggleImportant(ctx, admin, 2)
	require.NoError(t, err)
	assert.True(t, a.Important)
	assert.Equal(t, []int64{2}, notifier.ids)

	a, err = svc.ToggleImportant(ctx, admin, 2)
	require.NoError(t, err)
	assert.False(t, a.Important)
	assert.Equal(t, []int64{2}, notifier.ids, "unmarking does not notify")
}

func TestMissingIDsReturnNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.ToggleImportant(ctx, admin, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin, 99), shared.ErrNotFound)
}

func TestSortByTitle(t *testing.T) {
	svc, _, _ := newTestService(t)
	list, err := svc.List(context.Background(), listquery.Query{Sort: listquery.Sort{Key: "title", Direction: listquery.Asc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Library Timings Extended", "Mid-Semester Exam Schedule", "Workshop on Machine Learning"}, titles(list))
}
