// Package postgres implements the PostgreSQL backend adapter. It is the only
// backend that also supports the write path.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// Adapter holds a per-call pgx pool against one PostgreSQL data source.
type Adapter struct {
	pool *pgxpool.Pool
}

// NewAdapter opens a dedicated pool for one operation.
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Adapter{pool: pool}, nil
}

// Pool exposes the underlying pool for the write execution path.
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if schema == "public" {
			tables = append(tables, name)
		} else {
			tables = append(tables, schema+"."+name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (a *Adapter) GetRows(ctx context.Context, table string, limit int) (*datasource.TableRows, error) {
	ref, err := enginesql.ParseTableRef(table, "public")
	if err != nil {
		return nil, err
	}
	if err := a.checkTableExists(ctx, ref); err != nil {
		return nil, err
	}

	limit = datasource.ClampLimit(limit)
	query := fmt.Sprintf("SELECT * FROM %s LIMIT $1", ref.Qualified())
	result, err := a.runQuery(ctx, query, []any{limit})
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
	compiled, err := enginesql.CompileNamed(queryText, params, enginesql.DialectPostgres)
	if err != nil {
		return nil, err
	}

	limit = datasource.ClampLimit(limit)

	// The wrap bounds the result and doubles as a syntax fence: a smuggled
	// second statement will not parse inside the subquery.
	wrapped := fmt.Sprintf(
		"SELECT * FROM (%s) AS _openbase_query LIMIT $%d",
		compiled.Text, len(compiled.Args)+1,
	)
	args := append(compiled.Args, limit)

	return a.runQuery(ctx, wrapped, args)
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ConnectionTestResult, error) {
	if err := a.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	tables, err := a.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return &datasource.ConnectionTestResult{OK: true, Tables: tables}, nil
}

func (a *Adapter) Close() error {
	a.pool.Close()
	return nil
}

func (a *Adapter) checkTableExists(ctx context.Context, ref enginesql.TableRef) error {
	var exists bool
	err := a.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, ref.Schema, ref.Table).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check table existence: %w", err)
	}
	if !exists {
		return apperrors.NotFoundf("table not found: %s", ref.Table)
	}
	return nil
}

func (a *Adapter) runQuery(ctx context.Context, query string, args []any) (*models.QueryExecutionResult, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &models.QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

var _ datasource.Adapter = (*Adapter)(nil)
