// Package sqlite implements the read-only SQLite backend adapter. Databases
// are opened with mode=ro so even a guard miss cannot mutate the file.
package sqlite

import (
	"context"
	dbsql "database/sql"
	"fmt"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// Adapter holds a per-call read-only SQLite connection.
type Adapter struct {
	db *dbsql.DB
}

// NewAdapter opens the database file read-only. The path must already be
// resolved and confined by the caller; a missing file is NotFound, not a
// driver error.
func NewAdapter(ctx context.Context, path string) (*Adapter, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("database file not found")
		}
		return nil, fmt.Errorf("stat database file: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", url.PathEscape(path))
	db, err := dbsql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	return &Adapter{db: db}, nil
}

// NewMemoryAdapter opens a private in-memory database. Used by tests that
// need a seeded writable handle before reading through the adapter.
func NewMemoryAdapter(ctx context.Context) (*Adapter, error) {
	db, err := dbsql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Each pooled connection would otherwise get its own empty memory
	// database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	return &Adapter{db: db}, nil
}

// DB exposes the handle for test seeding.
func (a *Adapter) DB() *dbsql.DB {
	return a.db
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
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
	ref, err := enginesql.ParseTableRef(table, "")
	if err != nil {
		return nil, err
	}
	if ref.Schema != "" {
		return nil, apperrors.BadRequest("invalid table name")
	}

	var exists bool
	err = a.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`,
		ref.Table).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check table existence: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFoundf("table not found: %s", ref.Table)
	}

	limit = datasource.ClampLimit(limit)
	query := fmt.Sprintf("SELECT * FROM %s LIMIT ?", enginesql.QuoteIdent(ref.Table))
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
	// SQLite has no ::type cast syntax; queries authored against PostgreSQL
	// degrade gracefully with the casts removed.
	compiled, err := enginesql.CompileNamed(enginesql.StripTypeCasts(queryText), params, enginesql.DialectSQLite)
	if err != nil {
		return nil, err
	}

	limit = datasource.ClampLimit(limit)
	limitName := limitParamName(params)
	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS _openbase_query LIMIT :%s", compiled.Text, limitName)
	args := append(compiled.Args, dbsql.Named(limitName, limit))

	rows, err := a.db.QueryContext(ctx, wrapped, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return datasource.CollectRows(rows)
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ConnectionTestResult, error) {
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
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

// limitParamName picks a binding name for the wrap's limit that cannot
// collide with a user parameter.
func limitParamName(params map[string]any) string {
	name := "openbase_limit"
	for {
		if _, taken := params[name]; !taken {
			return name
		}
		name += "_"
	}
}

var _ datasource.Adapter = (*Adapter)(nil)
