package resources

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

// Service orchestrates resource link operations.
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

// List returns resources selected by q. q.VisibilityRole scopes the result
// to one audience; leave it empty for the management view.
func (s *Service) List(ctx context.Context, q listquery.Query) ([]Resource, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("resources: list: %w", err)
	}
	return listquery.Apply(all, Schema, q), nil
}

// Get returns a single resource.
func (s *Service) Get(ctx context.Context, id int64) (Resource, error) {
	return s.repo.Get(ctx, id)
}

// ForRole returns the resources visible to role, ordered by title.
func (s *Service) ForRole(ctx context.Context, role rbac.Role) ([]Resource, error) {
	q := Schema.Reset()
	q.VisibilityRole = role
	return s.List(ctx, q)
}

// ByCategory returns the resources of one category visible to role.
func (s *Service) ByCategory(ctx context.Context, role rbac.Role, category Category) ([]Resource, error) {
	q := Schema.Reset()
	q.VisibilityRole = role
	q.Filters = map[string]string{FilterCategory: string(category)}
	return s.List(ctx, q)
}

// Create adds a resource stamped with today's date and the actor's name.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, r Resource) (Resource, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	r.Description = strings.TrimSpace(r.Description)
	r.AddedOn = shared.DateOf(s.now())
	if actor != nil {
		r.AddedBy = actor.DisplayName
	}
	if err := shared.ValidateStruct(r); err != nil {
		return Resource{}, err
	}
	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return Resource{}, fmt.Errorf("resources: create: %w", err)
	}
	s.audit(ctx, actor, "create", created.ID)
	return created, nil
}

// Update merges patch into the stored resource.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, patch Patch) (Resource, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	merged := clone(current)
	patch.Apply(&merged)
	if err := shared.ValidateStruct(merged); err != nil {
		return Resource{}, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Resource{}, err
	}
	s.audit(ctx, actor, "update", id)
	return updated, nil
}

// Delete removes a resource.
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
		Entity:   "resource",
		EntityID: strconv.FormatInt(id, 10),
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("entity", "resource"), slog.Any("error", err))
	}
}
