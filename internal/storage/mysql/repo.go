// Package mysql backs the loader with MySQL/MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"normalizer/internal/storage"
)

const maxBindArgs = 60000

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mysql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
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

// InsertRows bulk-inserts in batches. INSERT IGNORE makes reloading the
// same plan output idempotent.
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

type dialect struct{}

func (dialect) Ident(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d dialect) ColumnType(col storage.ColumnSpec) string {
	switch col.Type {
	case "integer":
		return "BIGINT"
	case "float":
		return "DOUBLE"
	case "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	default:
		return fmt.Sprintf("VARCHAR(%d)", col.Length)
	}
}

func (dialect) Placeholder(int) string { return "?" }

func (d dialect) CreateClause(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + d.Ident(table)
}

func (d dialect) InsertClause(table string) string {
	return "INSERT IGNORE INTO " + d.Ident(table)
}

func (dialect) InsertSuffix() string { return "" }
