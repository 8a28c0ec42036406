package postgres

import (
	"context"
	"fmt"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// GetTableSchema introspects a table's columns from information_schema in
// ordinal order. Schemas are read live on every call; a stale cache here
// would let writes validate against columns that no longer exist.
func (a *Adapter) GetTableSchema(ctx context.Context, ref enginesql.TableRef) ([]models.ColumnSchema, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT
			column_name,
			data_type,
			is_nullable,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			udt_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, ref.Schema, ref.Table)
	if err != nil {
		return nil, fmt.Errorf("introspect table schema: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnSchema
	for rows.Next() {
		var (
			column   models.ColumnSchema
			nullable string
		)
		if err := rows.Scan(
			&column.ColumnName,
			&column.DataType,
			&nullable,
			&column.MaxLength,
			&column.NumericPrecision,
			&column.NumericScale,
			&column.UDTName,
		); err != nil {
			return nil, fmt.Errorf("scan column schema: %w", err)
		}
		column.IsNullable = nullable == "YES"
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect table schema: %w", err)
	}

	// Zero columns means the table does not exist; information_schema does
	// not distinguish the two.
	if len(columns) == 0 {
		return nil, apperrors.NotFoundf("table not found: %s", ref.Table)
	}
	return columns, nil
}
