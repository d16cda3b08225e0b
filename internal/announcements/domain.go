package announcements

import (
	"context"
	"slices"
	"time"
)

// Link is an external reference attached to an announcement.
type Link struct {
	Title string `json:"title" form:"link_title" validate:"required,max=200"`
	URL   string `json:"url" form:"link_url" validate:"required,http_url"`
}

// Announcement is a notice published to the portal.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title" form:"title" validate:"required,max=200"`
	Content   string    `json:"content" form:"content" validate:"required"`
	Date      time.Time `json:"date" form:"date" validate:"required"`
	Author    string    `json:"author" form:"author" validate:"required,max=120"`
	Important bool      `json:"important" form:"important"`
	Links     []Link    `json:"links" form:"links" validate:"dive"`
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title     *string
	Content   *string
	Date      *time.Time
	Author    *string
	Important *bool
	Links     *[]Link
}

// Apply merges the patch into a.
func (p Patch) Apply(a *Announcement) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Author != nil {
		a.Author = *p.Author
	}
	if p.Important != nil {
		a.Important = *p.Important
	}
	if p.Links != nil {
		a.Links = slices.Clone(*p.Links)
	}
}

// Repository persists announcements.
type Repository interface {
	List(ctx context.Context) ([]Announcement, error)
	Get(ctx context.Context, id int64) (Announcement, error)
	Create(ctx context.Context, a Announcement) (Announcement, error)
	Update(ctx context.Context, id int64, patch Patch) (Announcement, error)
	Delete(ctx context.Context, id int64) error
}

// Notifier is told when an important announcement is published.
type Notifier interface {
	NotifyImportant(ctx context.Context, id int64, title string) error
}

func clone(a Announcement) Announcement {
	a.Links = slices.Clone(a.Links)
	return a
}
