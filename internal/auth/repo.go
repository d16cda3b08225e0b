package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

const uniqueViolation = "23505"

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, department, year, student_id, designation, created_at`

// FindByEmail fetches a user by email, ignoring case.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// Get fetches a user by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// Create inserts a new account.
func (r *PGRepository) Create(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, department, year, student_id, designation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department, u.Year, u.StudentID, u.Designation)
	created, err := scanUser(row)
	return created, mapError(err)
}

// Save overwrites the stored account with u.
func (r *PGRepository) Save(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users
		SET name = $2, email = $3, password_hash = $4, department = $5, year = $6, student_id = $7, designation = $8
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Department, u.Year, u.StudentID, u.Designation)
	saved, err := scanUser(row)
	return saved, mapError(err)
}

func (r *PGRepository) one(ctx context.Context, sql string, arg any) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sql, arg))
	return u, mapError(err)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Department, &u.Year, &u.StudentID, &u.Designation, &u.CreatedAt)
	u.Role = rbac.Role(role)
	return u, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shared.ErrEmailTaken
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
