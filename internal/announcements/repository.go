package announcements

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/platform/db"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// PGRepository stores announcements in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectAnnouncement = `SELECT id, title, content, date, author, important, links FROM announcements`

func (r *PGRepository) List(ctx context.Context) ([]Announcement, error) {
	rows, err := r.pool.Query(ctx, selectAnnouncement+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Announcement, error) {
		return scanAnnouncement(row)
	})
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Announcement, error) {
	return getAnnouncement(ctx, r.pool, id)
}

func (r *PGRepository) Create(ctx context.Context, a Announcement) (Announcement, error) {
	links := a.Links
	if links == nil {
		links = []Link{}
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO announcements (title, content, date, author, important, links)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, content, date, author, important, links`,
		a.Title, a.Content, a.Date, a.Author, a.Important, links)
	return scanAnnouncement(row)
}

// Update reads, merges and writes the row inside one transaction.
func (r *PGRepository) Update(ctx context.Context, id int64, patch Patch) (Announcement, error) {
	var out Announcement
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := getAnnouncement(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		if current.Links == nil {
			current.Links = []Link{}
		}
		_, err = tx.Exec(ctx, `UPDATE announcements
			SET title = $2, content = $3, date = $4, author = $5, important = $6, links = $7
			WHERE id = $1`,
			id, current.Title, current.Content, current.Date, current.Author, current.Important, current.Links)
		out = current
		return err
	})
	return out, err
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
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

func getAnnouncement(ctx context.Context, q querier, id int64) (Announcement, error) {
	a, err := scanAnnouncement(q.QueryRow(ctx, selectAnnouncement+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Announcement{}, shared.ErrNotFound
	}
	return a, err
}

func scanAnnouncement(row pgx.Row) (Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Date, &a.Author, &a.Important, &a.Links)
	return a, err
}
