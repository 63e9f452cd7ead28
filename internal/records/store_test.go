package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage/storagetest"
)

func rec(id, title string, hours int) model.Record {
	return model.Record{ID: id, Title: title, Time: hours, CreatedAt: time.Unix(0, 0).UTC()}
}

func TestNew(t *testing.T) {
	s := New(storagetest.New())
	assert.True(t, s.Loading())
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Records())
	assert.True(t, s.RefreshedAt().IsZero())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces list in repository order", func(t *testing.T) {
		repo := storagetest.New(rec("r2", "SQL", 2), rec("r1", "Go", 1))
		s := New(repo)

		require.NoError(t, s.Refresh(ctx))
		assert.False(t, s.Loading())
		assert.False(t, s.RefreshedAt().IsZero())
		got := s.Records()
		require.Len(t, got, 2)
		assert.Equal(t, "r2", got[0].ID)
		assert.Equal(t, "r1", got[1].ID)
		assert.Equal(t, []string{errors.OpList}, repo.Ops())
	})

	t.Run("empty list clears loading", func(t *testing.T) {
		s := New(storagetest.New())
		require.NoError(t, s.Refresh(ctx))
		assert.False(t, s.Loading())
		assert.Equal(t, 0, s.Len())
	})

	t.Run("failure leaves state untouched", func(t *testing.T) {
		repo := storagetest.New(rec("r1", "Go", 1))
		s := New(repo)
		require.NoError(t, s.Refresh(ctx))
		before := s.Records()
		at := s.RefreshedAt()

		repo.FailNext(errors.OpList, "connection refused")
		err := s.Refresh(ctx)
		require.Error(t, err)
		re, ok := errors.AsRepositoryError(err)
		require.True(t, ok)
		assert.Equal(t, "connection refused", re.Message)
		assert.Equal(t, before, s.Records())
		assert.Equal(t, at, s.RefreshedAt())
		assert.False(t, s.Loading())
	})

	t.Run("initial failure keeps loading", func(t *testing.T) {
		repo := storagetest.New()
		repo.FailNext(errors.OpList, "down")
		s := New(repo)
		require.Error(t, s.Refresh(ctx))
		assert.True(t, s.Loading())

		require.NoError(t, s.Refresh(ctx))
		assert.False(t, s.Loading())
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		repo := storagetest.New(rec("r1", "Go", 1))
		s := New(repo)
		require.NoError(t, s.Refresh(ctx))

		repo.ReturnOnNextList([]model.Record{rec("x", "a", 1), rec("x", "b", 2)})
		err := s.Refresh(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateID)
		assert.True(t, errors.IsRepositoryError(err))
		require.Len(t, s.Records(), 1)
		assert.Equal(t, "r1", s.Records()[0].ID)
	})

	t.Run("records removed from the repository disappear", func(t *testing.T) {
		repo := storagetest.New(rec("r1", "Go", 1), rec("r2", "SQL", 2))
		s := New(repo)
		require.NoError(t, s.Refresh(ctx))
		require.NoError(t, repo.Delete(ctx, "r1"))

		require.NoError(t, s.Refresh(ctx))
		_, ok := s.Find("r1")
		assert.False(t, ok)
		assert.Equal(t, 1, s.Len())
	})
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New(storagetest.New(rec("r1", "Go", 1)))
	require.NoError(t, s.Refresh(context.Background()))

	got := s.Records()
	got[0].Title = "mutated"
	assert.Equal(t, "Go", s.Records()[0].Title)

	found, ok := s.Find("r1")
	require.True(t, ok)
	found.Title = "mutated"
	again, _ := s.Find("r1")
	assert.Equal(t, "Go", again.Title)
}

func TestFind(t *testing.T) {
	s := New(storagetest.New(rec("r1", "Go", 1), rec("r2", "SQL", 2)))
	require.NoError(t, s.Refresh(context.Background()))

	r, ok := s.Find("r2")
	require.True(t, ok)
	assert.Equal(t, "SQL", r.Title)

	_, ok = s.Find("nope")
	assert.False(t, ok)
}

func TestConcurrentReadersDuringRefresh(t *testing.T) {
	s := New(storagetest.New(rec("r1", "Go", 1), rec("r2", "SQL", 2)))
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.Refresh(ctx)
		}
	}()
	for i := 0; i < 100; i++ {
		n := len(s.Records())
		assert.True(t, n == 0 || n == 2, "partial snapshot of %d records", n)
		_ = s.Loading()
	}
	<-done
}
