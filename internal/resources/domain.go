package resources

import (
	"context"
	"slices"
	"time"

	"github.com/svit-college/curriculum-portal/internal/rbac"
)

// Category groups resources on the links screen.
type Category string

const (
	CategoryOfficial   Category = "official"
	CategoryAcademic   Category = "academic"
	CategoryPlacement  Category = "placement"
	CategoryDepartment Category = "department"
	CategoryOther      Category = "other"
)

// Categories lists the recognised categories in display order.
var Categories = []Category{CategoryOfficial, CategoryAcademic, CategoryPlacement, CategoryDepartment, CategoryOther}

// Resource is an external link shown to the roles in Visibility.
type Resource struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title" form:"title" validate:"required,max=200"`
	URL         string      `json:"url" form:"url" validate:"required,http_url"`
	Description string      `json:"description" form:"description"`
	Category    Category    `json:"category" form:"category" validate:"required,oneof=official academic placement department other"`
	AddedBy     string      `json:"added_by" form:"added_by" validate:"required"`
	AddedOn     time.Time   `json:"added_on" form:"added_on" validate:"required"`
	Visibility  []rbac.Role `json:"visibility" form:"visibility" validate:"min=1,dive,oneof=student faculty admin"`
}

// VisibleTo reports whether role may see the resource.
func (r Resource) VisibleTo(role rbac.Role) bool {
	return slices.Contains(r.Visibility, role)
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string
	URL         *string
	Description *string
	Category    *Category
	Visibility  *[]rbac.Role
}

// Apply merges the patch into r.
func (p Patch) Apply(r *Resource) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Visibility != nil {
		r.Visibility = slices.Clone(*p.Visibility)
	}
}

// Repository persists resources.
type Repository interface {
	List(ctx context.Context) ([]Resource, error)
	Get(ctx context.Context, id int64) (Resource, error)
	Create(ctx context.Context, r Resource) (Resource, error)
	Update(ctx context.Context, id int64, patch Patch) (Resource, error)
	Delete(ctx context.Context, id int64) error
}

func clone(r Resource) Resource {
	r.Visibility = slices.Clone(r.Visibility)
	return r
}
