package auth

import (
	"context"
	"time"

	"github.com/svit-college/curriculum-portal/internal/rbac"
)

// User represents a portal account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         rbac.Role `json:"role"`
	Department   string    `json:"department,omitempty"`
	Year         int       `json:"year,omitempty"`
	StudentID    string    `json:"student_id,omitempty"`
	Designation  string    `json:"designation,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal returns the identity stored in the session for u.
func (u User) Principal() *rbac.Principal {
	return &rbac.Principal{ID: u.ID, DisplayName: u.Name, Email: u.Email, Role: u.Role}
}

// RegistrationBase holds the fields every sign-up form shares.
type RegistrationBase struct {
	Name            string `form:"name" validate:"required,max=120"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// Registration is one of StudentRegistration, FacultyRegistration or
// AdminRegistration.
type Registration interface {
	Base() RegistrationBase
	Role() rbac.Role
	apply(u *User)
}

// StudentRegistration signs up a student.
type StudentRegistration struct {
	RegistrationBase
	StudentID  string `form:"student_id" validate:"required,max=32"`
	Department string `form:"department" validate:"required,oneof=CSE ECE EEE MECH CIVIL"`
	Year       int    `form:"year" validate:"required,min=1,max=4"`
}

func (r StudentRegistration) Base() RegistrationBase { return r.RegistrationBase }
func (StudentRegistration) Role() rbac.Role          { return rbac.RoleStudent }
func (r StudentRegistration) apply(u *User) {
	u.StudentID = r.StudentID
	u.Department = r.Department
	u.Year = r.Year
}

// FacultyRegistration signs up a faculty member.
type FacultyRegistration struct {
	RegistrationBase
	Department  string `form:"department" validate:"required,oneof=CSE ECE EEE MECH CIVIL"`
	Designation string `form:"designation" validate:"max=80"`
}

func (r FacultyRegistration) Base() RegistrationBase { return r.RegistrationBase }
func (FacultyRegistration) Role() rbac.Role          { return rbac.RoleFaculty }
func (r FacultyRegistration) apply(u *User) {
	u.Department = r.Department
	u.Designation = r.Designation
}

// AdminRegistration signs up an administrator.
type AdminRegistration struct {
	RegistrationBase
}

func (r AdminRegistration) Base() RegistrationBase { return r.RegistrationBase }
func (AdminRegistration) Role() rbac.Role          { return rbac.RoleAdmin }
func (AdminRegistration) apply(*User)              {}

// ProfilePatch carries editable profile fields; nil fields are unchanged.
type ProfilePatch struct {
	Name        *string
	Email       *string
	Department  *string
	Year        *int
	StudentID   *string
	Designation *string
}

// profileForm validates the merged profile.
type profileForm struct {
	Name       string `form:"name" validate:"required,max=120"`
	Email      string `form:"email" validate:"required,email"`
	Department string `form:"department" validate:"omitempty,oneof=CSE ECE EEE MECH CIVIL"`
	Year       int    `form:"year" validate:"min=0,max=4"`
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	Current string `form:"current_password" validate:"required"`
	New     string `form:"new_password" validate:"required,min=6"`
	Confirm string `form:"confirm_password" validate:"required,eqfield=New"`
}

// Repository persists user accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Save(ctx context.Context, u User) (User, error)
}

// Mailer queues outgoing email.
type Mailer interface {
	EnqueueMail(ctx context.Context, to, subject, body string) error
}
