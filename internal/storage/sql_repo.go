package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
)

// TableName is the records table, shaped like the hosted study-record table:
// id, title, time, created_at.
const TableName = "study_record"

// dialect captures the differences between the SQL backends.
type dialect struct {
	name   string
	driver string
	ddl    string
	// placeholder returns the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// encodeTime and decodeTime convert created_at for the column type.
	encodeTime func(t time.Time) any
	decodeTime func(src any) (time.Time, error)
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	ddl: `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
		"id" TEXT PRIMARY KEY,
		"title" TEXT NOT NULL,
		"time" INTEGER NOT NULL,
		"created_at" INTEGER NOT NULL
	)`,
	placeholder: func(int) string { return "?" },
	// Unix microseconds keep ordering exact without relying on the
	// driver's datetime text format.
	encodeTime: func(t time.Time) any { return t.UTC().UnixMicro() },
	decodeTime: func(src any) (time.Time, error) {
		switch v := src.(type) {
		case int64:
			return time.UnixMicro(v).UTC(), nil
		default:
			return time.Time{}, fmt.Errorf("unexpected created_at type %T", src)
		}
	},
}

var postgresDialect = dialect{
	name:   "postgres",
	driver: "pgx",
	ddl: `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
		"id" TEXT PRIMARY KEY,
		"title" TEXT NOT NULL,
		"time" INTEGER NOT NULL,
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	encodeTime:  func(t time.Time) any { return t.UTC() },
	decodeTime: func(src any) (time.Time, error) {
		switch v := src.(type) {
		case time.Time:
			return v.UTC(), nil
		default:
			return time.Time{}, fmt.Errorf("unexpected created_at type %T", src)
		}
	},
}

// sqlOpen is swapped in tests.
var sqlOpen = sql.Open

// SQLRepo stores records in a SQL table through database/sql.
type SQLRepo struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

var _ Repository = (*SQLRepo)(nil)

// OpenSQLite opens (creating if needed) the SQLite database file at path and
// ensures the records table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
	}
	db, err := sqlOpen(sqliteDialect.driver, path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)
	return newSQLRepo(ctx, db, sqliteDialect)
}

// OpenPostgres connects to Postgres using dsn and ensures the records table
// exists.
func OpenPostgres(ctx context.Context, dsn string) (*SQLRepo, error) {
	db, err := sqlOpen(postgresDialect.driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return newSQLRepo(ctx, db, postgresDialect)
}

func newSQLRepo(ctx context.Context, db *sql.DB, d dialect) (*SQLRepo, error) {
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "init %s schema", d.name)
	}
	return &SQLRepo{db: db, dialect: d, now: time.Now}, nil
}

// Dialect returns the SQL dialect name (sqlite or postgres).
func (r *SQLRepo) Dialect() string {
	return r.dialect.name
}

// List returns all records ordered by creation time.
func (r *SQLRepo) List(ctx context.Context) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT "id", "title", "time", "created_at" FROM `+TableName+` ORDER BY "created_at", "id"`)
	if err != nil {
		return nil, errors.NewRepositoryError(errors.OpList, err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.Record{}
	for rows.Next() {
		var (
			rec     model.Record
			created any
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Time, &created); err != nil {
			return nil, errors.NewRepositoryError(errors.OpList, err)
		}
		if rec.CreatedAt, err = r.dialect.decodeTime(created); err != nil {
			return nil, errors.NewRepositoryError(errors.OpList, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewRepositoryError(errors.OpList, err)
	}
	return records, nil
}

// Create inserts a new record with a generated UUIDv7 ID.
func (r *SQLRepo) Create(ctx context.Context, fields model.RecordFields) error {
	id, err := uuid.NewV7()
	if err != nil {
		return errors.NewRepositoryError(errors.OpCreate, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s ("id", "title", "time", "created_at") VALUES (%s)`,
		TableName, r.placeholders(4))
	_, err = r.db.ExecContext(ctx, query,
		id.String(), fields.Title, fields.Time, r.dialect.encodeTime(r.now()))
	if err != nil {
		return errors.NewRepositoryError(errors.OpCreate, err)
	}
	return nil
}

// Update replaces title and time of the record with the given ID.
func (r *SQLRepo) Update(ctx context.Context, id string, fields model.RecordFields) error {
	p := r.dialect.placeholder
	query := fmt.Sprintf(`UPDATE %s SET "title" = %s, "time" = %s WHERE "id" = %s`,
		TableName, p(1), p(2), p(3))
	res, err := r.db.ExecContext(ctx, query, fields.Title, fields.Time, id)
	return r.checkAffected(errors.OpUpdate, res, err)
}

// Delete removes the record with the given ID.
func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE "id" = %s`, TableName, r.dialect.placeholder(1))
	res, err := r.db.ExecContext(ctx, query, id)
	return r.checkAffected(errors.OpDelete, res, err)
}

// Ping checks the database connection.
func (r *SQLRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.NewRepositoryError(errors.OpList, err)
	}
	return nil
}

// Close closes the database handle.
func (r *SQLRepo) Close() error {
	return r.db.Close()
}

func (r *SQLRepo) checkAffected(op string, res sql.Result, err error) error {
	if err != nil {
		return errors.NewRepositoryError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewRepositoryError(op, err)
	}
	if n == 0 {
		return errors.NewRepositoryError(op, errors.ErrRecordNotFound)
	}
	return nil
}

func (r *SQLRepo) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = r.dialect.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}
