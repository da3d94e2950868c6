// Package mssql backs the loader with SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"normalizer/internal/storage"
)

// maxBindArgs stays under SQL Server's 2100 parameter limit per statement.
const maxBindArgs = 2000

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// InsertRows bulk-inserts in batches. T-SQL has no insert-or-ignore form,
// so reloading into a populated table surfaces as a PK violation; callers
// that need idempotency load into a fresh database.
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
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (dialect) ColumnType(col storage.ColumnSpec) string {
	switch col.Type {
	case "integer":
		return "BIGINT"
	case "float":
		return "FLOAT"
	case "boolean":
		return "BIT"
	case "date":
		return "DATE"
	default:
		return fmt.Sprintf("NVARCHAR(%d)", col.Length)
	}
}

func (dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (d dialect) CreateClause(table string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s",
		strings.ReplaceAll(table, "'", "''"), d.Ident(table))
}

func (d dialect) InsertClause(table string) string {
	return "INSERT INTO " + d.Ident(table)
}

func (dialect) InsertSuffix() string { return "" }
