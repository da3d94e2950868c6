// Package postgres backs the loader with Postgres via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"normalizer/internal/storage"
)

// maxBindArgs stays under the wire protocol's uint16 parameter count.
const maxBindArgs = 60000

type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		if _, err := r.pool.Exec(ctx, storage.CreateTableSQL(dialect{}, t)); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// InsertRows bulk-inserts in batches. ON CONFLICT DO NOTHING makes
// reloading the same plan output idempotent.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var written int64
	for _, batch := range storage.BatchRows(rows, len(columns), maxBindArgs) {
		q, args := storage.InsertSQL(dialect{}, table, columns, batch)
		tag, err := r.pool.Exec(ctx, q, args...)
		if err != nil {
			return written, err
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

type dialect struct{}

func (dialect) Ident(name string) string { return storage.QuoteIdent(name) }

func (dialect) ColumnType(col storage.ColumnSpec) string {
	switch col.Type {
	case "integer":
		return "BIGINT"
	case "float":
		return "DOUBLE PRECISION"
	case "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	default:
		return fmt.Sprintf("VARCHAR(%d)", col.Length)
	}
}

func (dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (dialect) CreateClause(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + storage.QuoteIdent(table)
}

func (dialect) InsertClause(table string) string {
	return "INSERT INTO " + storage.QuoteIdent(table)
}

func (dialect) InsertSuffix() string { return " ON CONFLICT DO NOTHING" }
