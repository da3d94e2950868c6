// Package sqlite backs the loader with an embedded SQLite database, the
// default target when no server DSN is configured.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"normalizer/internal/storage"
)

// maxBindArgs stays under the historical SQLITE_MAX_VARIABLE_NUMBER so the
// loader works against stock builds too.
const maxBindArgs = 999

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	// REFERENCES clauses are inert until the pragma is enabled.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		if _, err := r.db.ExecContext(ctx, storage.CreateTableSQL(dialect{}, t)); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// InsertRows bulk-inserts in batches. OR IGNORE makes reloading the same
// plan output idempotent: rows that collide on the primary key are skipped.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var written int64
	for _, batch := range storage.BatchRows(rows, len(columns), maxBindArgs) {
		q, args := storage.InsertSQL(dialect{}, table, columns, batch)
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			return written, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// dialect implements storage.Dialect for SQLite's affinity-based typing.
type dialect struct{}

func (dialect) Ident(name string) string { return storage.QuoteIdent(name) }

func (dialect) ColumnType(col storage.ColumnSpec) string {
	switch col.Type {
	case "integer", "boolean":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		// Dates round-trip as ISO text.
		return "TEXT"
	}
}

func (dialect) Placeholder(int) string { return "?" }

func (dialect) CreateClause(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + storage.QuoteIdent(table)
}

func (dialect) InsertClause(table string) string {
	return "INSERT OR IGNORE INTO " + storage.QuoteIdent(table)
}

func (dialect) InsertSuffix() string { return "" }
