package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/svit-college/curriculum-portal/internal/platform/memstore"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// MemoryRepository keeps accounts in process memory. Email uniqueness is
// checked under its own lock so concurrent sign-ups cannot collide.
type MemoryRepository struct {
	mu    sync.Mutex
	store *memstore.Store[User]
}

// NewMemoryRepository returns a repository seeded with seed.
func NewMemoryRepository(seed []User, latency time.Duration) *MemoryRepository {
	return &MemoryRepository{store: memstore.New(
		func(u User) int64 { return u.ID },
		func(u *User, id int64) { u.ID = id },
		seed,
		memstore.Options[User]{Latency: latency},
	)}
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *MemoryRepository) Get(ctx context.Context, id int64) (User, error) {
	return m.store.Get(ctx, id)
}

func (m *MemoryRepository) Create(ctx context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureFree(ctx, u.Email, 0); err != nil {
		return User{}, err
	}
	return m.store.Create(ctx, u)
}

func (m *MemoryRepository) Save(ctx context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureFree(ctx, u.Email, u.ID); err != nil {
		return User{}, err
	}
	return m.store.Update(ctx, u.ID, func(stored *User) error {
		*stored = u
		return nil
	})
}

func (m *MemoryRepository) ensureFree(ctx context.Context, email string, owner int64) error {
	existing, err := m.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != owner:
		return shared.ErrEmailTaken
	case err == nil, errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Seed returns the demo accounts, hashed with bcrypt.DefaultCost.
func Seed() ([]User, error) {
	return SeedWithCost(bcrypt.DefaultCost)
}

// SeedWithCost returns the demo accounts hashed at cost.
func SeedWithCost(cost int) ([]User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, err
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []User{
		{ID: 1, Name: "John Doe", Email: "student@svit.edu", PasswordHash: string(hash), Role: rbac.RoleStudent, Department: "CSE", Year: 3, StudentID: "CSE1901", CreatedAt: created},
		{ID: 2, Name: "Dr. Jane Smith", Email: "faculty@svit.edu", PasswordHash: string(hash), Role: rbac.RoleFaculty, Department: "CSE", CreatedAt: created},
		{ID: 3, Name: "Admin User", Email: "admin@svit.edu", PasswordHash: string(hash), Role: rbac.RoleAdmin, CreatedAt: created},
	}, nil
}
