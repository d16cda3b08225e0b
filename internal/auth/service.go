package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/svit-college/curriculum-portal/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	mailer Mailer
	logger *slog.Logger
	cost   int
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithMailer queues account emails such as reset instructions.
func WithMailer(m Mailer) Option { return func(s *Service) { s.mailer = m } }

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option { return func(s *Service) { s.cost = cost } }

// NewService constructs a new Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.Default(), cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate validates email/password credentials. Email matching ignores case.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("auth: find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates an account for one of the registration variants.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if reg == nil {
		return User{}, shared.NewFieldError("role", "role is required")
	}
	if err := shared.ValidateStruct(reg); err != nil {
		return User{}, err
	}
	base := reg.Base()
	hash, err := bcrypt.GenerateFromPassword([]byte(base.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	u := User{
		Name:         strings.TrimSpace(base.Name),
		Email:        strings.TrimSpace(base.Email),
		PasswordHash: string(hash),
		Role:         reg.Role(),
		CreatedAt:    s.now().UTC(),
	}
	reg.apply(&u)
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, shared.ErrEmailTaken) {
			return User{}, err
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}
	return created, nil
}

// Profile returns the account with id.
func (s *Service) Profile(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfile merges patch into the stored account. Role and password are
// never changed here.
func (s *Service) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Department != nil {
		u.Department = strings.TrimSpace(*patch.Department)
	}
	if patch.Year != nil {
		u.Year = *patch.Year
	}
	if patch.StudentID != nil {
		u.StudentID = strings.TrimSpace(*patch.StudentID)
	}
	if patch.Designation != nil {
		u.Designation = strings.TrimSpace(*patch.Designation)
	}
	form := profileForm{Name: u.Name, Email: u.Email, Department: u.Department, Year: u.Year}
	if err := shared.ValidateStruct(form); err != nil {
		return User{}, err
	}
	return s.repo.Save(ctx, u)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id int64, change PasswordChange) error {
	if err := shared.ValidateStruct(change); err != nil {
		return err
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(change.Current)); err != nil {
		return shared.ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(change.New), s.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	_, err = s.repo.Save(ctx, u)
	return err
}

// ForgotPassword queues reset instructions for the account owning email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if s.mailer == nil {
		s.logger.Warn("password reset requested without mailer", slog.Int64("user_id", u.ID))
		return nil
	}
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset the password of your SVIT portal account. "+
		"Contact the administrator office or sign in and change it from your profile.\n", u.Name)
	if err := s.mailer.EnqueueMail(ctx, u.Email, "Password reset instructions", body); err != nil {
		return fmt.Errorf("auth: enqueue reset mail: %w", err)
	}
	return nil
}
