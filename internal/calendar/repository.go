package calendar

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/platform/db"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// PGRepository stores events in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const selectEvent = `SELECT id, title, start_date, end_date, description, type, links FROM calendar_events`

func (r *PGRepository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, selectEvent+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		return scanEvent(row)
	})
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Event, error) {
	return getEvent(ctx, r.pool, id)
}

func (r *PGRepository) Create(ctx context.Context, e Event) (Event, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO calendar_events (title, start_date, end_date, description, type, links)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, start_date, end_date, description, type, links`,
		e.Title, e.Start, e.End, e.Description, string(e.Type), nonNilLinks(e.Links))
	return scanEvent(row)
}

func (r *PGRepository) Update(ctx context.Context, id int64, patch Patch) (Event, error) {
	var out Event
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := getEvent(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		_, err = tx.Exec(ctx, `UPDATE calendar_events
			SET title = $2, start_date = $3, end_date = $4, description = $5, type = $6, links = $7
			WHERE id = $1`,
			id, current.Title, current.Start, current.End, current.Description, string(current.Type), nonNilLinks(current.Links))
		out = current
		return err
	})
	return out, err
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
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

func getEvent(ctx context.Context, q querier, id int64) (Event, error) {
	e, err := scanEvent(q.QueryRow(ctx, selectEvent+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, shared.ErrNotFound
	}
	return e, err
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		e       Event
		eventTy string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.Description, &eventTy, &e.Links)
	e.Type = EventType(eventTy)
	return e, err
}

func nonNilLinks(links []Link) []Link {
	if links == nil {
		return []Link{}
	}
	return links
}
