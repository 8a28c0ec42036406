// Package mysql implements the read-only MySQL backend adapter.
package mysql

import (
	"context"
	dbsql "database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// Adapter holds a per-call MySQL connection. The session is forced read-only
// right after connecting; database permissions are the real guarantee, this
// is belt-and-braces on top of the query guard.
type Adapter struct {
	db *dbsql.DB
}

// NewAdapter opens a dedicated connection for one operation.
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	db, err := dbsql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// A single connection keeps the session read-only setting effective for
	// every statement this adapter runs.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, "SET SESSION TRANSACTION READ ONLY"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set read-only session: %w", err)
	}

	return &Adapter{db: db}, nil
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
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
	// MySQL has no schema level below the database; a bare name only.
	ref, err := enginesql.ParseTableRef(table, "")
	if err != nil {
		return nil, err
	}
	if ref.Schema != "" {
		return nil, apperrors.BadRequest("invalid table name")
	}

	var exists bool
	err = a.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?
		)`, ref.Table).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check table existence: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFoundf("table not found: %s", ref.Table)
	}

	limit = datasource.ClampLimit(limit)
	query := fmt.Sprintf("SELECT * FROM %s LIMIT ?", enginesql.QuoteIdentMySQL(ref.Table))
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
	compiled, err := enginesql.CompileNamed(queryText, params, enginesql.DialectMySQL)
	if err != nil {
		return nil, err
	}

	limit = datasource.ClampLimit(limit)
	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS _openbase_query LIMIT ?", compiled.Text)
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
		return nil, fmt.Errorf("ping mysql: %w", err)
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
