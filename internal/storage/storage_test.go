package storage_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/studylog/internal/api"
	"github.com/manav03panchal/studylog/internal/config"
	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage"
)

// =============================================================================
// Test Helpers
// =============================================================================

type backendFactory func(t *testing.T) storage.Repository

func newBadger(t *testing.T) storage.Repository {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err, "failed to open in-memory database")
	repo := storage.NewBadgerRepo(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newSQLite(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newPostgres(t *testing.T) storage.Repository {
	t.Helper()
	dsn := os.Getenv("STUDYLOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STUDYLOG_TEST_POSTGRES_DSN not set")
	}
	repo, err := storage.OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	// Start from an empty table.
	recs, err := repo.List(context.Background())
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, repo.Delete(context.Background(), r.ID))
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newRemote(t *testing.T) storage.Repository {
	t.Helper()
	srv := httptest.NewServer(api.NewRouter(newBadger(t), nil))
	t.Cleanup(srv.Close)
	repo, err := storage.NewRemoteRepo(srv.URL, 0)
	require.NoError(t, err)
	return repo
}

var backends = map[string]backendFactory{
	"badger":   newBadger,
	"sqlite":   newSQLite,
	"postgres": newPostgres,
	"remote":   newRemote,
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo storage.Repository)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func requireNotFound(t *testing.T, err error, op string) {
	t.Helper()
	require.Error(t, err)
	re, ok := errors.AsRepositoryError(err)
	require.True(t, ok, "expected RepositoryError, got %T", err)
	assert.Equal(t, op, re.Op)
	assert.True(t, errors.Is(err, errors.ErrRecordNotFound), "expected ErrRecordNotFound in %v", err)
}

// =============================================================================
// Repository Contract Tests
// =============================================================================

func TestRepository_ListEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		recs, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})
}

func TestRepository_CreateAssignsIdentity(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, model.RecordFields{Title: "Test Title", Time: 60}))

		recs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.NotEmpty(t, recs[0].ID)
		assert.Equal(t, "Test Title", recs[0].Title)
		assert.Equal(t, 60, recs[0].Time)
		assert.False(t, recs[0].CreatedAt.IsZero())
	})
}

func TestRepository_ListInCreationOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		for _, title := range []string{"Go", "SQL", "React"} {
			require.NoError(t, repo.Create(ctx, model.RecordFields{Title: title, Time: 1}))
		}

		recs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "Go", recs[0].Title)
		assert.Equal(t, "SQL", recs[1].Title)
		assert.Equal(t, "React", recs[2].Title)
	})
}

func TestRepository_Update(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, model.RecordFields{Title: "Go", Time: 2}))
		before, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, before, 1)

		t.Run("replaces title and time", func(t *testing.T) {
			require.NoError(t, repo.Update(ctx, before[0].ID, model.RecordFields{Title: "Go generics", Time: 3}))
			after, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, after, 1)
			assert.Equal(t, before[0].ID, after[0].ID)
			assert.Equal(t, "Go generics", after[0].Title)
			assert.Equal(t, 3, after[0].Time)
			assert.True(t, before[0].CreatedAt.Equal(after[0].CreatedAt), "created_at must not change")
		})

		t.Run("unchanged values still succeed", func(t *testing.T) {
			require.NoError(t, repo.Update(ctx, before[0].ID, model.RecordFields{Title: "Go generics", Time: 3}))
		})

		t.Run("unknown id", func(t *testing.T) {
			err := repo.Update(ctx, "missing", model.RecordFields{Title: "x", Time: 1})
			requireNotFound(t, err, errors.OpUpdate)
		})
	})
}

func TestRepository_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, model.RecordFields{Title: "keep", Time: 1}))
		require.NoError(t, repo.Create(ctx, model.RecordFields{Title: "drop", Time: 2}))
		recs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 2)

		require.NoError(t, repo.Delete(ctx, recs[1].ID))

		left, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "keep", left[0].Title)

		t.Run("already deleted", func(t *testing.T) {
			requireNotFound(t, repo.Delete(ctx, recs[1].ID), errors.OpDelete)
		})
	})
}

func TestRepository_Ping(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo storage.Repository) {
		p, ok := repo.(storage.Pinger)
		require.True(t, ok)
		assert.NoError(t, p.Ping(context.Background()))
	})
}

// =============================================================================
// Backend-specific Tests
// =============================================================================

func TestBadgerRepo_CanceledContext(t *testing.T) {
	repo := newBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, model.RecordFields{Title: "x", Time: 1})
	require.Error(t, err)
	assert.True(t, errors.IsRepositoryError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerRepo_PingClosed(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	repo := storage.NewBadgerRepo(db)
	require.NoError(t, repo.Close())

	err = repo.Ping(context.Background())
	assert.ErrorIs(t, err, errors.ErrBackendUnhealthy)
}

func TestOpenSQLite_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := storage.OpenSQLite(context.Background(), filepath.Join(blocker, "records.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create db directory: ")
}

func TestSQLRepo_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.db")

	repo, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", repo.Dialect())
	require.NoError(t, repo.Create(ctx, model.RecordFields{Title: "Go", Time: 4}))
	require.NoError(t, repo.Close())

	repo, err = storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer repo.Close()
	recs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Go", recs[0].Title)
}

func TestRemoteRepo(t *testing.T) {
	t.Run("rejects non-http url", func(t *testing.T) {
		_, err := storage.NewRemoteRepo("ftp://example.com", 0)
		assert.Error(t, err)
	})

	t.Run("unreachable server is a repository error", func(t *testing.T) {
		srv := httptest.NewServer(api.NewRouter(newBadger(t), nil))
		url := srv.URL
		srv.Close()

		repo, err := storage.NewRemoteRepo(url, 0)
		require.NoError(t, err)
		_, err = repo.List(context.Background())
		require.Error(t, err)
		re, ok := errors.AsRepositoryError(err)
		require.True(t, ok)
		assert.Equal(t, errors.OpList, re.Op)
		assert.NotEmpty(t, re.Message)
	})

	t.Run("server error message is preserved", func(t *testing.T) {
		db, err := storage.Open(storage.Options{InMemory: true})
		require.NoError(t, err)
		backing := storage.NewBadgerRepo(db)
		srv := httptest.NewServer(api.NewRouter(backing, nil))
		defer srv.Close()
		require.NoError(t, backing.Close())

		repo, err := storage.NewRemoteRepo(srv.URL, 0)
		require.NoError(t, err)
		err = repo.Create(context.Background(), model.RecordFields{Title: "x", Time: 1})
		require.Error(t, err)
		re, ok := errors.AsRepositoryError(err)
		require.True(t, ok)
		assert.Equal(t, errors.OpCreate, re.Op)
		assert.NotEmpty(t, re.Message)
		assert.False(t, errors.Is(err, errors.ErrRecordNotFound))
	})
}

// =============================================================================
// Factory Tests
// =============================================================================

func TestOpenRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("badger", func(t *testing.T) {
		repo, err := storage.OpenRepository(ctx, config.StorageConfig{
			Backend:    config.BackendBadger,
			BadgerPath: filepath.Join(t.TempDir(), "db"),
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.BadgerRepo{}, repo)
		assert.NoError(t, storage.CloseRepository(repo))
	})

	t.Run("sqlite", func(t *testing.T) {
		repo, err := storage.OpenRepository(ctx, config.StorageConfig{
			Backend:    config.BackendSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "studylog.db"),
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.SQLRepo{}, repo)
		assert.NoError(t, storage.CloseRepository(repo))
	})

	t.Run("remote", func(t *testing.T) {
		repo, err := storage.OpenRepository(ctx, config.StorageConfig{
			Backend:   config.BackendRemote,
			RemoteURL: "http://127.0.0.1:8741",
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.RemoteRepo{}, repo)
		assert.NoError(t, storage.CloseRepository(repo))
	})

	t.Run("bad remote url is a user error", func(t *testing.T) {
		_, err := storage.OpenRepository(ctx, config.StorageConfig{
			Backend:   config.BackendRemote,
			RemoteURL: "not a url",
		})
		require.Error(t, err)
		assert.True(t, errors.IsUserError(err))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := storage.OpenRepository(ctx, config.StorageConfig{Backend: "mongo"})
		assert.ErrorIs(t, err, errors.ErrUnknownBackend)
	})
}
