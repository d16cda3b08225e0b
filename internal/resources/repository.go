package resources

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/platform/db"
	"github.com/svit-college/curriculum-portal/internal/rbac"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// PGRepository stores resources in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectResource = `SELECT id, title, url, description, category, added_by, added_on, visibility FROM resources`

func (r *PGRepository) List(ctx context.Context) ([]Resource, error) {
	rows, err := r.pool.Query(ctx, selectResource+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Resource, error) {
		return scanResource(row)
	})
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Resource, error) {
	return getResource(ctx, r.pool, id)
}

func (r *PGRepository) Create(ctx context.Context, res Resource) (Resource, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO resources (title, url, description, category, added_by, added_on, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, url, description, category, added_by, added_on, visibility`,
		res.Title, res.URL, res.Description, string(res.Category), res.AddedBy, res.AddedOn, roleStrings(res.Visibility))
	return scanResource(row)
}

func (r *PGRepository) Update(ctx context.Context, id int64, patch Patch) (Resource, error) {
	var out Resource
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := getResource(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		_, err = tx.Exec(ctx, `UPDATE resources
			SET title = $2, url = $3, description = $4, category = $5, visibility = $6
			WHERE id = $1`,
			id, current.Title, current.URL, current.Description, string(current.Category), roleStrings(current.Visibility))
		out = current
		return err
	})
	return out, err
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getResource(ctx context.Context, q querier, id int64) (Resource, error) {
	res, err := scanResource(q.QueryRow(ctx, selectResource+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, shared.ErrNotFound
	}
	return res, err
}

func scanResource(row pgx.Row) (Resource, error) {
	var (
		res        Resource
		category   string
		visibility []string
	)
	err := row.Scan(&res.ID, &res.Title, &res.URL, &res.Description, &category, &res.AddedBy, &res.AddedOn, &visibility)
	res.Category = Category(category)
	res.Visibility = make([]rbac.Role, 0, len(visibility))
	for _, v := range visibility {
		res.Visibility = append(res.Visibility, rbac.Role(v))
	}
	return res, err
}

func roleStrings(roles []rbac.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
