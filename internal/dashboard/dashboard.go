// Package dashboard renders the per-role landing pages.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/listquery"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/resources"
)

const (
	recentAnnouncements = 5
	upcomingEvents      = 5
	loadTimeout         = 3 * time.Second
)

// AnnouncementSource supplies the announcement panels.
type AnnouncementSource interface {
	List(ctx context.Context, q listquery.Query) ([]announcements.Announcement, error)
	Recent(ctx context.Context, n int) ([]announcements.Announcement, error)
	Important(ctx context.Context) ([]announcements.Announcement, error)
}

// EventSource supplies the upcoming events panel.
type EventSource interface {
	List(ctx context.Context, q listquery.Query) ([]calendar.Event, error)
	Upcoming(ctx context.Context, now time.Time, days, limit int) ([]calendar.Event, error)
}

// ResourceSource supplies quick links.
type ResourceSource interface {
	List(ctx context.Context, q listquery.Query) ([]resources.Resource, error)
	ForRole(ctx context.Context, role rbac.Role) ([]resources.Resource, error)
}

// CurriculumSource supplies syllabus panels.
type CurriculumSource interface {
	List(ctx context.Context, q listquery.Query) ([]curriculum.Entry, error)
	ForFaculty(ctx context.Context, name string) ([]curriculum.Entry, error)
}

// Sources groups the collaborators a dashboard reads from.
type Sources struct {
	Announcements AnnouncementSource
	Events        EventSource
	Resources     ResourceSource
	Curriculum    CurriculumSource
}

// Counts summarises collection sizes for administrators.
type Counts struct {
	Announcements int
	Events        int
	Resources     int
	Curriculum    int
	Drafts        int
}

// Data is everything a dashboard page shows.
type Data struct {
	Recent       []announcements.Announcement
	Important    []announcements.Announcement
	Upcoming     []calendar.Event
	Resources    []resources.Resource
	MyCurriculum []curriculum.Entry
	Counts       *Counts
	UpcomingDays int
	LoadedAt     time.Time
}

// Loader fetches dashboard panels concurrently.
type Loader struct {
	sources      Sources
	upcomingDays int
	now          func() time.Time
}

// NewLoader constructs a Loader.
func NewLoader(sources Sources, upcomingDays int) *Loader {
	return &Loader{sources: sources, upcomingDays: upcomingDays, now: time.Now}
}

// Load gathers the panels for p. The first failing panel cancels the rest
// and its error is returned.
func (l *Loader) Load(ctx context.Context, p *rbac.Principal) (Data, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	now := l.now()
	data := Data{UpcomingDays: l.upcomingDays, LoadedAt: now}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := l.sources.Announcements.Recent(ctx, recentAnnouncements)
		data.Recent = items
		return err
	})
	g.Go(func() error {
		items, err := l.sources.Announcements.Important(ctx)
		data.Important = items
		return err
	})
	g.Go(func() error {
		items, err := l.sources.Events.Upcoming(ctx, now, l.upcomingDays, upcomingEvents)
		data.Upcoming = items
		return err
	})
	g.Go(func() error {
		items, err := l.sources.Resources.ForRole(ctx, p.Role)
		data.Resources = items
		return err
	})

	switch p.Role {
	case rbac.RoleFaculty:
		g.Go(func() error {
			items, err := l.sources.Curriculum.ForFaculty(ctx, p.DisplayName)
			data.MyCurriculum = items
			return err
		})
	case rbac.RoleAdmin:
		counts := &Counts{}
		data.Counts = counts
		g.Go(func() error {
			items, err := l.sources.Announcements.List(ctx, announcements.Schema.Reset())
			counts.Announcements = len(items)
			return err
		})
		g.Go(func() error {
			items, err := l.sources.Events.List(ctx, calendar.Schema.Reset())
			counts.Events = len(items)
			return err
		})
		g.Go(func() error {
			items, err := l.sources.Resources.List(ctx, resources.Schema.Reset())
			counts.Resources = len(items)
			return err
		})
		g.Go(func() error {
			items, err := l.sources.Curriculum.List(ctx, curriculum.Schema.Reset())
			counts.Curriculum = len(items)
			for _, e := range items {
				if e.Status == curriculum.StatusDraft {
					counts.Drafts++
				}
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	return data, nil
}
