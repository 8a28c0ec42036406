// Package duckdb implements the read-only DuckDB backend adapter.
package duckdb

import (
	"context"
	dbsql "database/sql"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// Adapter holds a per-call DuckDB connection. File-backed databases open
// with access_mode=read_only; the in-memory database is necessarily
// writable but starts empty.
type Adapter struct {
	db *dbsql.DB
}

// NewAdapter opens the database for one operation. path is either the
// resolved file path or MemoryPath.
func NewAdapter(ctx context.Context, path string) (*Adapter, error) {
	dsn := ""
	if path != MemoryPath {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.NotFound("database file not found")
			}
			return nil, fmt.Errorf("stat database file: %w", err)
		}
		dsn = path + "?access_mode=read_only"
	}

	db, err := dbsql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to duckdb: %w", err)
	}
	// Keep queries from reaching out to remote filesystems over HTTP.
	if _, err := db.ExecContext(ctx, "SET enable_http_filesystem = false"); err != nil {
		db.Close()
		return nil, fmt.Errorf("disable http filesystem: %w", err)
	}
	return &Adapter{db: db}, nil
}

// DB exposes the handle for test seeding against the in-memory database.
func (a *Adapter) DB() *dbsql.DB {
	return a.db
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (a *Adapter) GetRows(ctx context.Context, table string, limit int) (*datasource.TableRows, error) {
	ref, err := enginesql.ParseTableRef(table, "main")
	if err != nil {
		return nil, err
	}

	var exists bool
	err = a.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, ref.Schema, ref.Table).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check table existence: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFoundf("table not found: %s", ref.Table)
	}

	limit = datasource.ClampLimit(limit)
	query := fmt.Sprintf("SELECT * FROM %s LIMIT $1", ref.Qualified())
	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("read table rows: %w", err)
	}
	defer rows.Close()

	result, err := datasource.CollectRows(rows)
	if err != nil {
		return nil, err
	}
	return &datasource.TableRows{
		Table:    table,
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: result.RowCount,
	}, nil
}

func (a *Adapter) RunQuery(ctx context.Context, queryText string, params map[string]any, limit int) (*models.QueryExecutionResult, error) {
	compiled, err := enginesql.CompileNamed(enginesql.StripTypeCasts(queryText), params, enginesql.DialectDuckDB)
	if err != nil {
		return nil, err
	}

	limit = datasource.ClampLimit(limit)
	wrapped := fmt.Sprintf(
		"SELECT * FROM (%s) AS _openbase_query LIMIT $%d",
		compiled.Text, len(compiled.Args)+1,
	)
	args := append(compiled.Args, limit)

	rows, err := a.db.QueryContext(ctx, wrapped, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return datasource.CollectRows(rows)
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ConnectionTestResult, error) {
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	tables, err := a.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return &datasource.ConnectionTestResult{OK: true, Tables: tables}, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

var _ datasource.Adapter = (*Adapter)(nil)
