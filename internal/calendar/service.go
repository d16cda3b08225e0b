package calendar

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

// Service orchestrates calendar operations.
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

// List returns events selected by q.
func (s *Service) List(ctx context.Context, q listquery.Query) ([]Event, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar: list: %w", err)
	}
	return listquery.Apply(all, Schema, q), nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	return s.repo.Get(ctx, id)
}

// Upcoming returns at most limit events starting between today and
// today+days inclusive, earliest first.
func (s *Service) Upcoming(ctx context.Context, now time.Time, days, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}
	all, err := s.List(ctx, Schema.Reset())
	if err != nil {
		return nil, err
	}
	from := shared.DateOf(now)
	to := from.AddDate(0, 0, days)
	out := make([]Event, 0, limit)
	for _, e := range all {
		if len(out) == limit {
			break
		}
		if !e.Start.Before(from) && !e.Start.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ByType returns events of one type, earliest first.
func (s *Service) ByType(ctx context.Context, t EventType) ([]Event, error) {
	q := Schema.Reset()
	q.Filters = map[string]string{FilterType: string(t)}
	return s.List(ctx, q)
}

// ByDateRange returns events that start in, end in, or span [from, to].
func (s *Service) ByDateRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	if to.Before(from) {
		return nil, shared.NewFieldError("to", "to must not be before from")
	}
	all, err := s.List(ctx, Schema.Reset())
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(all))
	for _, e := range all {
		if overlaps(e, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func overlaps(e Event, from, to time.Time) bool {
	within := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }
	spans := !e.Start.After(from) && !e.End.Before(to)
	return within(e.Start) || within(e.End) || spans
}

// Create adds an event.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, e Event) (Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	if e.End.IsZero() {
		e.End = e.Start
	}
	if err := shared.ValidateStruct(e); err != nil {
		return Event{}, err
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: create: %w", err)
	}
	s.audit(ctx, actor, "create", created.ID)
	return created, nil
}

// Update merges patch into the stored event.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, patch Patch) (Event, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	merged := clone(current)
	patch.Apply(&merged)
	if err := shared.ValidateStruct(merged); err != nil {
		return Event{}, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Event{}, err
	}
	s.audit(ctx, actor, "update", id)
	return updated, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "delete", id)
	return nil
}

func (s *Service) audit(ctx context.Context, actor *rbac.Principal, action string, id int64) {
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "calendar_event",
		EntityID: strconv.FormatInt(id, 10),
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("entity", "calendar_event"), slog.Any("error", err))
	}
}
