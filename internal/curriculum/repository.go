package curriculum

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/platform/db"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// PGRepository stores curriculum entries in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, title, department, year, semester, faculty, last_updated, status,
	description, objectives, outcomes, units, textbooks, reference_list`

const selectEntry = `SELECT ` + entryColumns + ` FROM curriculum_entries`

func (r *PGRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, selectEntry+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		return scanEntry(row)
	})
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Entry, error) {
	return getEntry(ctx, r.pool, id)
}

func (r *PGRepository) Create(ctx context.Context, e Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO curriculum_entries
		(title, department, year, semester, faculty, last_updated, status,
		 description, objectives, outcomes, units, textbooks, reference_list)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+entryColumns,
		e.Title, e.Department, e.Year, e.Semester, e.Faculty, e.LastUpdated, string(e.Status),
		e.Description, strs(e.Objectives), strs(e.Outcomes), units(e.Units), strs(e.Textbooks), strs(e.References))
	return scanEntry(row)
}

func (r *PGRepository) Update(ctx context.Context, id int64, patch Patch) (Entry, error) {
	var out Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := getEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		_, err = tx.Exec(ctx, `UPDATE curriculum_entries
			SET title = $2, department = $3, year = $4, semester = $5, faculty = $6, last_updated = $7,
			    status = $8, description = $9, objectives = $10, outcomes = $11, units = $12,
			    textbooks = $13, reference_list = $14
			WHERE id = $1`,
			id, current.Title, current.Department, current.Year, current.Semester, current.Faculty,
			current.LastUpdated, string(current.Status), current.Description, strs(current.Objectives),
			strs(current.Outcomes), units(current.Units), strs(current.Textbooks), strs(current.References))
		out = current
		return err
	})
	return out, err
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM curriculum_entries WHERE id = $1`, id)
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

func getEntry(ctx context.Context, q querier, id int64) (Entry, error) {
	e, err := scanEntry(q.QueryRow(ctx, selectEntry+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.ErrNotFound
	}
	return e, err
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e      Entry
		status string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Department, &e.Year, &e.Semester, &e.Faculty, &e.LastUpdated, &status,
		&e.Description, &e.Objectives, &e.Outcomes, &e.Units, &e.Textbooks, &e.References)
	e.Status = Status(status)
	return e, err
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func units(v []Unit) []Unit {
	if v == nil {
		return []Unit{}
	}
	return v
}
