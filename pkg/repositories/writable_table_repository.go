package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/database"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// WritableTableRepository defines writable table persistence.
type WritableTableRepository interface {
	Create(ctx context.Context, table *models.WritableTable) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WritableTable, error)
	List(ctx context.Context) ([]*models.WritableTable, error)
	Update(ctx context.Context, table *models.WritableTable) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type writableTableRepository struct {
	db *database.DB
}

// NewWritableTableRepository creates a WritableTableRepository backed by the
// metadata store.
func NewWritableTableRepository(db *database.DB) WritableTableRepository {
	return &writableTableRepository{db: db}
}

func (r *writableTableRepository) Create(ctx context.Context, table *models.WritableTable) error {
	allowed, err := marshalAllowedColumns(table.AllowedColumns)
	if err != nil {
		return err
	}

	now := time.Now()
	table.CreatedAt = now
	table.UpdatedAt = now

	err = r.db.QueryRow(ctx, `
		INSERT INTO writable_tables
			(data_source_id, table_name, allowed_columns, allow_insert, allow_update, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		table.DataSourceID, table.TableName, allowed,
		table.AllowInsert, table.AllowUpdate, table.Description,
		table.CreatedAt, table.UpdatedAt,
	).Scan(&table.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return apperrors.Conflict(fmt.Sprintf("table already exposed: %s", table.TableName))
		}
		return fmt.Errorf("failed to create writable table: %w", err)
	}
	return nil
}

func (r *writableTableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WritableTable, error) {
	var (
		table   models.WritableTable
		allowed []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, data_source_id, table_name, allowed_columns, allow_insert, allow_update, description, created_at, updated_at
		FROM writable_tables WHERE id = $1`, id,
	).Scan(&table.ID, &table.DataSourceID, &table.TableName, &allowed,
		&table.AllowInsert, &table.AllowUpdate, &table.Description,
		&table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("writable table not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get writable table: %w", err)
	}
	if err := unmarshalAllowedColumns(allowed, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *writableTableRepository) List(ctx context.Context) ([]*models.WritableTable, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, data_source_id, table_name, allowed_columns, allow_insert, allow_update, description, created_at, updated_at
		FROM writable_tables ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list writable tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.WritableTable
	for rows.Next() {
		var (
			table   models.WritableTable
			allowed []byte
		)
		if err := rows.Scan(&table.ID, &table.DataSourceID, &table.TableName, &allowed,
			&table.AllowInsert, &table.AllowUpdate, &table.Description,
			&table.CreatedAt, &table.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan writable table: %w", err)
		}
		if err := unmarshalAllowedColumns(allowed, &table); err != nil {
			return nil, err
		}
		tables = append(tables, &table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list writable tables: %w", err)
	}
	return tables, nil
}

func (r *writableTableRepository) Update(ctx context.Context, table *models.WritableTable) error {
	allowed, err := marshalAllowedColumns(table.AllowedColumns)
	if err != nil {
		return err
	}
	table.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE writable_tables
		SET table_name = $2, allowed_columns = $3, allow_insert = $4, allow_update = $5, description = $6, updated_at = $7
		WHERE id = $1`,
		table.ID, table.TableName, allowed,
		table.AllowInsert, table.AllowUpdate, table.Description, table.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update writable table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("writable table not found: %s", table.ID)
	}
	return nil
}

func (r *writableTableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM writable_tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete writable table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("writable table not found: %s", id)
	}
	return nil
}

// marshalAllowedColumns keeps the nil/empty distinction across storage: nil
// (all columns writable) becomes SQL NULL, an explicit empty list stays [].
func marshalAllowedColumns(columns []string) (any, error) {
	if columns == nil {
		return nil, nil
	}
	raw, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode allowed columns: %w", err)
	}
	return raw, nil
}

func unmarshalAllowedColumns(raw []byte, table *models.WritableTable) error {
	if raw == nil {
		table.AllowedColumns = nil
		return nil
	}
	if err := json.Unmarshal(raw, &table.AllowedColumns); err != nil {
		return fmt.Errorf("failed to decode allowed columns: %w", err)
	}
	if table.AllowedColumns == nil {
		table.AllowedColumns = []string{}
	}
	return nil
}

var _ WritableTableRepository = (*writableTableRepository)(nil)
