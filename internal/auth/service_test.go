package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

type mail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []mail
}

func (m *recordingMailer) EnqueueMail(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, mail{to: to, subject: subject, body: body})
	return nil
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	seed, err := SeedWithCost(bcrypt.MinCost)
	require.NoError(t, err)
	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	return NewService(NewMemoryRepository(seed, 0), opts...)
}

func base(email string) RegistrationBase {
	return RegistrationBase{Name: "Priya Nair", Email: email, Password: "secret1", ConfirmPassword: "secret1"}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Authenticate(ctx, "  STUDENT@svit.edu ", DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, rbac.RoleStudent, u.Role)

	_, err = svc.Authenticate(ctx, "student@svit.edu", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@svit.edu", DefaultPassword)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterVariants(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	student, err := svc.Register(ctx, StudentRegistration{RegistrationBase: base("priya@svit.edu"), StudentID: "ECE2101", Department: "ECE", Year: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), student.ID)
	assert.Equal(t, rbac.RoleStudent, student.Role)
	assert.Equal(t, "ECE2101", student.StudentID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("secret1")))

	faculty, err := svc.Register(ctx, FacultyRegistration{RegistrationBase: base("ravi@svit.edu"), Department: "EEE", Designation: "Associate Professor"})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleFaculty, faculty.Role)
	assert.Equal(t, "Associate Professor", faculty.Designation)

	admin, err := svc.Register(ctx, AdminRegistration{RegistrationBase: base("office@svit.edu")})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, admin.Role)

	u, err := svc.Authenticate(ctx, "priya@svit.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, student.ID, u.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg := StudentRegistration{RegistrationBase: RegistrationBase{Name: "X", Email: "bad", Password: "123", ConfirmPassword: "456"}}
	_, err := svc.Register(ctx, reg)
	require.ErrorIs(t, err, shared.ErrValidation)
	fields := shared.FieldErrors(err)
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "password must be at least 6 characters", fields["password"])
	assert.Equal(t, "confirm password does not match", fields["confirm_password"])
	assert.Equal(t, "student id is required", fields["student_id"])
	assert.Contains(t, fields, "department")
	assert.Contains(t, fields, "year")

	_, err = svc.Register(ctx, FacultyRegistration{RegistrationBase: base("new@svit.edu")})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, shared.FieldErrors(err), "department")

	_, err = svc.Register(ctx, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(context.Background(), AdminRegistration{RegistrationBase: base("Faculty@SVIT.edu")})
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	name := "John A. Doe"
	year := 4
	u, err := svc.UpdateProfile(ctx, 1, ProfilePatch{Name: &name, Year: &year})
	require.NoError(t, err)
	assert.Equal(t, "John A. Doe", u.Name)
	assert.Equal(t, 4, u.Year)
	assert.Equal(t, rbac.RoleStudent, u.Role)

	taken := "admin@svit.edu"
	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{Email: &taken})
	assert.ErrorIs(t, err, shared.ErrEmailTaken)

	same := "STUDENT@svit.edu"
	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{Email: &same})
	assert.NoError(t, err, "own address with different case")

	blank := " "
	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{Name: &blank})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateProfile(ctx, 99, ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, 2, PasswordChange{Current: "nope", New: "newpass1", Confirm: "newpass1"})
	assert.ErrorIs(t, err, shared.ErrWrongPassword)

	err = svc.ChangePassword(ctx, 2, PasswordChange{Current: DefaultPassword, New: "newpass1", Confirm: "other"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, 2, PasswordChange{Current: DefaultPassword, New: "newpass1", Confirm: "newpass1"}))
	_, err = svc.Authenticate(ctx, "faculty@svit.edu", DefaultPassword)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "faculty@svit.edu", "newpass1")
	assert.NoError(t, err)
}

func TestForgotPassword(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newTestService(t, WithMailer(mailer))
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, "Admin@svit.edu"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@svit.edu", mailer.sent[0].to)
	assert.Equal(t, "Password reset instructions", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "Admin User")

	assert.ErrorIs(t, svc.ForgotPassword(ctx, "ghost@svit.edu"), shared.ErrNotFound)
	assert.Len(t, mailer.sent, 1)
}
