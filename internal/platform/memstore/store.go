// Package memstore holds seeded in-memory record collections behind the
// repository interfaces, for development and tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/svit-college/curriculum-portal/internal/shared"
)

// Options tunes a Store.
type Options[T any] struct {
	// Latency delays every call, simulating a remote backend. Waits end
	// early when the context is cancelled.
	Latency time.Duration
	// Clone copies a record on the way in and out so callers never share
	// slices with the store.
	Clone func(T) T
}

// Store is a mutex-guarded record slice keyed by int64 ids.
type Store[T any] struct {
	mu      sync.RWMutex
	records []T
	id      func(T) int64
	setID   func(*T, int64)
	opts    Options[T]
}

// New returns a Store seeded with a copy of seed.
func New[T any](id func(T) int64, setID func(*T, int64), seed []T, opts Options[T]) *Store[T] {
	s := &Store[T]{id: id, setID: setID, opts: opts}
	s.records = make([]T, 0, len(seed))
	for _, rec := range seed {
		s.records = append(s.records, s.clone(rec))
	}
	return s
}

// List returns every record in insertion order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.records))
	for i, rec := range s.records {
		out[i] = s.clone(rec)
	}
	return out, nil
}

// Get returns the record with id or shared.ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return zero, shared.ErrNotFound
	}
	return s.clone(s.records[idx]), nil
}

// Create assigns the next id (max+1) and appends rec.
func (s *Store[T]) Create(ctx context.Context, rec T) (T, error) {
	if err := s.wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next int64
	for _, existing := range s.records {
		next = max(next, s.id(existing))
	}
	rec = s.clone(rec)
	s.setID(&rec, next+1)
	s.records = append(s.records, rec)
	return s.clone(rec), nil
}

// Update applies fn to a copy of the record and stores the result if fn
// succeeds. The record keeps its id.
func (s *Store[T]) Update(ctx context.Context, id int64, fn func(*T) error) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return zero, shared.ErrNotFound
	}
	rec := s.clone(s.records[idx])
	if err := fn(&rec); err != nil {
		return zero, err
	}
	s.setID(&rec, id)
	s.records[idx] = rec
	return s.clone(rec), nil
}

// Delete removes the record with id or returns shared.ErrNotFound.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return shared.ErrNotFound
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	return nil
}

// Len reports the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store[T]) indexOf(id int64) int {
	for i, rec := range s.records {
		if s.id(rec) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) clone(rec T) T {
	if s.opts.Clone == nil {
		return rec
	}
	return s.opts.Clone(rec)
}

func (s *Store[T]) wait(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
