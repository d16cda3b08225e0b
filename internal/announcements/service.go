package announcements

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

// Service orchestrates announcement operations.
type Service struct {
	repo     Repository
	notifier Notifier
	auditor  shared.Auditor
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithNotifier enqueues notifications for important announcements.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithAuditor records every mutation.
func WithAuditor(a shared.Auditor) Option { return func(s *Service) { s.auditor = a } }

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService constructs the service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, auditor: shared.NopAuditor{}, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns announcements selected by q.
func (s *Service) List(ctx context.Context, q listquery.Query) ([]Announcement, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("announcements: list: %w", err)
	}
	return listquery.Apply(all, Schema, q), nil
}

// Get returns a single announcement.
func (s *Service) Get(ctx context.Context, id int64) (Announcement, error) {
	return s.repo.Get(ctx, id)
}

// Recent returns the n newest announcements.
func (s *Service) Recent(ctx context.Context, n int) ([]Announcement, error) {
	list, err := s.List(ctx, Schema.Reset())
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list, nil
}

// Important returns important announcements, newest first.
func (s *Service) Important(ctx context.Context) ([]Announcement, error) {
	q := Schema.Reset()
	q.Flags = []string{FlagImportant}
	return s.List(ctx, q)
}

// Create publishes an announcement. The date defaults to today and the
// author to the acting principal.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, a Announcement) (Announcement, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	a.Author = strings.TrimSpace(a.Author)
	if a.Date.IsZero() {
		a.Date = shared.DateOf(s.now())
	}
	if a.Author == "" && actor != nil {
		a.Author = actor.DisplayName
	}
	if err := shared.ValidateStruct(a); err != nil {
		return Announcement{}, err
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Announcement{}, fmt.Errorf("announcements: create: %w", err)
	}
	s.audit(ctx, actor, "create", created.ID, map[string]any{"title": created.Title})
	if created.Important {
		s.notify(ctx, created)
	}
	return created, nil
}

// Update merges patch into the stored announcement.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, patch Patch) (Announcement, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	merged := clone(current)
	patch.Apply(&merged)
	if err := shared.ValidateStruct(merged); err != nil {
		return Announcement{}, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Announcement{}, err
	}
	s.audit(ctx, actor, "update", id, nil)
	if updated.Important && !current.Important {
		s.notify(ctx, updated)
	}
	return updated, nil
}

// ToggleImportant flips the important flag.
func (s *Service) ToggleImportant(ctx context.Context, actor *rbac.Principal, id int64) (Announcement, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	important := !current.Important
	return s.Update(ctx, actor, id, Patch{Important: &important})
}

// Delete removes an announcement.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "delete", id, nil)
	return nil
}

func (s *Service) notify(ctx context.Context, a Announcement) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyImportant(ctx, a.ID, a.Title); err != nil {
		s.logger.Warn("announcement notification not queued", slog.Int64("id", a.ID), slog.Any("error", err))
	}
}

func (s *Service) audit(ctx context.Context, actor *rbac.Principal, action string, id int64, meta map[string]any) {
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "announcement",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("entity", "announcement"), slog.Any("error", err))
	}
}
