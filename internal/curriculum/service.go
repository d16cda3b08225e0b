package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// SearchFilters narrows the advanced search. Zero values match everything.
type SearchFilters struct {
	Department string
	Year       int
	Semester   string
	Faculty    string
	Keyword    string
}

// Service orchestrates curriculum operations.
type Service struct {
	repo    Repository
	auditor shared.Auditor
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs the service. A nil auditor discards audit records.
func NewService(repo Repository, auditor shared.Auditor, logger *slog.Logger) *Service {
	if auditor == nil {
		auditor = shared.NopAuditor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, auditor: auditor, logger: logger, now: time.Now}
}

// List returns entries selected by q.
func (s *Service) List(ctx context.Context, q listquery.Query) ([]Entry, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("curriculum: list: %w", err)
	}
	return listquery.Apply(all, Schema, q), nil
}

// ListFor is List restricted to what viewer may read. Students only see
// published entries; asking for any other status yields nothing.
func (s *Service) ListFor(ctx context.Context, viewer *rbac.Principal, q listquery.Query) ([]Entry, error) {
	scoped, ok := Scope(viewer, q)
	if !ok {
		return []Entry{}, nil
	}
	return s.List(ctx, scoped)
}

// Scope applies the viewer's status restriction to q. It reports false when
// q asks for a status the viewer may not read.
func Scope(viewer *rbac.Principal, q listquery.Query) (listquery.Query, bool) {
	if viewer != nil && viewer.Role != rbac.RoleStudent {
		return q, true
	}
	if want := q.Filter(FilterStatus); want != "" && want != string(StatusPublished) {
		return q, false
	}
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[FilterStatus] = string(StatusPublished)
	q.Filters = filters
	return q, true
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// GetFor returns an entry if viewer may read it; unpublished entries are
// reported as missing to students.
func (s *Service) GetFor(ctx context.Context, viewer *rbac.Principal, id int64) (Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if (viewer == nil || viewer.Role == rbac.RoleStudent) && !e.Published() {
		return Entry{}, shared.ErrNotFound
	}
	return e, nil
}

// AdvancedSearch matches department, year and semester exactly, faculty by
// case-insensitive substring and keyword against title or description.
// Results keep the default ordering.
func (s *Service) AdvancedSearch(ctx context.Context, viewer *rbac.Principal, f SearchFilters) ([]Entry, error) {
	q := Schema.Reset()
	q.Filters = map[string]string{}
	if f.Department != "" {
		q.Filters[FilterDepartment] = f.Department
	}
	if f.Year != 0 {
		q.Filters[FilterYear] = strconv.Itoa(f.Year)
	}
	if f.Semester != "" {
		q.Filters[FilterSemester] = f.Semester
	}
	items, err := s.ListFor(ctx, viewer, q)
	if err != nil {
		return nil, err
	}
	faculty := strings.ToLower(strings.TrimSpace(f.Faculty))
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	out := make([]Entry, 0, len(items))
	for _, e := range items {
		if faculty != "" && !strings.Contains(strings.ToLower(e.Faculty), faculty) {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(e.Title), keyword) &&
			!strings.Contains(strings.ToLower(e.Description), keyword) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ForFaculty returns every entry taught by name, drafts included.
func (s *Service) ForFaculty(ctx context.Context, name string) ([]Entry, error) {
	all, err := s.List(ctx, Schema.Reset())
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0)
	for _, e := range all {
		if strings.EqualFold(strings.TrimSpace(e.Faculty), strings.TrimSpace(name)) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ForDepartment returns the entries of one department.
func (s *Service) ForDepartment(ctx context.Context, code string) ([]Entry, error) {
	q := Schema.Reset()
	q.Filters = map[string]string{FilterDepartment: code}
	return s.List(ctx, q)
}

// Upload stores a new syllabus as published, or as a draft when asDraft is
// set. The faculty defaults to the uploader.
func (s *Service) Upload(ctx context.Context, actor *rbac.Principal, e Entry, asDraft bool) (Entry, error) {
	e = tidy(e)
	e.Status = StatusPublished
	if asDraft {
		e.Status = StatusDraft
	}
	e.LastUpdated = shared.DateOf(s.now())
	if e.Faculty == "" && actor != nil {
		e.Faculty = actor.DisplayName
	}
	if err := shared.ValidateStruct(e); err != nil {
		return Entry{}, err
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Entry{}, fmt.Errorf("curriculum: upload: %w", err)
	}
	action := "upload"
	if asDraft {
		action = "draft"
	}
	s.audit(ctx, actor, action, created.ID)
	return created, nil
}

// Update merges patch into the stored entry and bumps LastUpdated.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, patch Patch) (Entry, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	today := shared.DateOf(s.now())
	patch.LastUpdated = &today
	merged := clone(current)
	patch.Apply(&merged)
	if err := shared.ValidateStruct(merged); err != nil {
		return Entry{}, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Entry{}, err
	}
	s.audit(ctx, actor, "update", id)
	return updated, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "delete", id)
	return nil
}

// tidy trims text fields and drops blank list items.
func tidy(e Entry) Entry {
	e.Title = strings.TrimSpace(e.Title)
	e.Faculty = strings.TrimSpace(e.Faculty)
	e.Description = strings.TrimSpace(e.Description)
	e.Objectives = compact(e.Objectives)
	e.Outcomes = compact(e.Outcomes)
	e.Textbooks = compact(e.Textbooks)
	e.References = compact(e.References)
	units := make([]Unit, 0, len(e.Units))
	for _, u := range e.Units {
		u.Title = strings.TrimSpace(u.Title)
		u.Description = strings.TrimSpace(u.Description)
		u.Topics = compact(u.Topics)
		if u.Title == "" && u.Description == "" && len(u.Topics) == 0 {
			continue
		}
		units = append(units, u)
	}
	e.Units = units
	return e
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *Service) audit(ctx context.Context, actor *rbac.Principal, action string, id int64) {
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "curriculum_entry",
		EntityID: strconv.FormatInt(id, 10),
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("entity", "curriculum_entry"), slog.Any("error", err))
	}
}
