package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svit-college/curriculum-portal/internal/shared"
)

type note struct {
	ID   int64
	Text string
	Tags []string
}

func newNotes(opts Options[note]) *Store[note] {
	return New(
		func(n note) int64 { return n.ID },
		func(n *note, id int64) { n.ID = id },
		[]note{{ID: 1, Text: "a"}, {ID: 4, Text: "b"}},
		opts,
	)
}

func TestCreateUsesMaxPlusOne(t *testing.T) {
	s := newNotes(Options[note]{})
	created, err := s.Create(context.Background(), note{ID: 99, Text: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, 3, s.Len())
}

func TestGetUpdateDeleteMissing(t *testing.T) {
	s := newNotes(Options[note]{})
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = s.Update(ctx, 42, func(*note) error { return nil })
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, 42), shared.ErrNotFound)
}

func TestUpdateMergesAndKeepsID(t *testing.T) {
	s := newNotes(Options[note]{})
	ctx := context.Background()
	updated, err := s.Update(ctx, 4, func(n *note) error {
		n.ID = 100
		n.Text = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.ID)

	got, err := s.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Text)

	boom := errors.New("boom")
	_, err = s.Update(ctx, 4, func(n *note) error {
		n.Text = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, _ = s.Get(ctx, 4)
	assert.Equal(t, "changed", got.Text, "failed updates are not stored")
}

func TestDelete(t *testing.T) {
	s := newNotes(Options[note]{})
	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, 1))
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(4), list[0].ID)
}

func TestCloneIsolatesCallers(t *testing.T) {
	s := newNotes(Options[note]{Clone: func(n note) note {
		n.Tags = append([]string(nil), n.Tags...)
		return n
	}})
	ctx := context.Background()
	_, err := s.Update(ctx, 1, func(n *note) error {
		n.Tags = []string{"x"}
		return nil
	})
	require.NoError(t, err)

	got, _ := s.Get(ctx, 1)
	got.Tags[0] = "mutated"
	again, _ := s.Get(ctx, 1)
	assert.Equal(t, "x", again.Tags[0])
}

func TestLatencyHonoursCancellation(t *testing.T) {
	s := newNotes(Options[note]{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	s := newNotes(Options[note]{})
	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.Create(context.Background(), note{Text: "n"})
			if err == nil {
				ids <- n.ID
			}
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}
