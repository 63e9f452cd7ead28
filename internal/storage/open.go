package storage

import (
	"context"
	"fmt"

	"github.com/manav03panchal/studylog/internal/config"
	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/logging"
)

// OpenRepository opens the repository selected by cfg.Backend.
// The caller owns the result and should Close it when it implements Closer.
func OpenRepository(ctx context.Context, cfg config.StorageConfig) (Repository, error) {
	logging.DebugContext(ctx, "opening repository", logging.KeyBackend, cfg.Backend)

	switch cfg.Backend {
	case config.BackendBadger, "":
		db, err := Open(Options{Path: cfg.BadgerPath})
		if err != nil {
			return nil, errors.NewSystemErrorWithOp("open", "failed to open badger database", err)
		}
		return NewBadgerRepo(db), nil
	case config.BackendSQLite:
		repo, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.NewSystemErrorWithOp("open", "failed to open sqlite database", err)
		}
		logging.DebugContext(ctx, "sql repository ready", "dialect", repo.Dialect())
		return repo, nil
	case config.BackendPostgres:
		repo, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, errors.NewSystemErrorWithOp("open",
				"failed to connect to postgres at "+logging.MaskDSN(cfg.PostgresDSN), err)
		}
		logging.DebugContext(ctx, "sql repository ready", "dialect", repo.Dialect())
		return repo, nil
	case config.BackendRemote:
		repo, err := NewRemoteRepo(cfg.RemoteURL, cfg.RequestTimeout)
		if err != nil {
			return nil, errors.NewUserErrorWithField("remote_url", cfg.RemoteURL,
				err.Error(), "Set remote_url to the address of a 'studylog serve' instance.")
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownBackend, cfg.Backend)
	}
}

// CloseRepository closes repo if it holds resources.
func CloseRepository(repo Repository) error {
	if c, ok := repo.(Closer); ok {
		return c.Close()
	}
	return nil
}
