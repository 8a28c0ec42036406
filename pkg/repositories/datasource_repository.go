// Package repositories implements metadata store access. Encryption of
// connection details happens in the service layer; repositories only see
// opaque encrypted strings.
package repositories

import (
	"context"
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

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// DataSourceRepository defines data source persistence.
type DataSourceRepository interface {
	// Create inserts a new data source with its encrypted connection.
	Create(ctx context.Context, ds *models.DataSource, encryptedConnection string) error

	// GetByID returns the data source and its encrypted connection.
	GetByID(ctx context.Context, id uuid.UUID) (*models.DataSource, string, error)

	// List returns all data sources without their connections.
	List(ctx context.Context) ([]*models.DataSource, error)

	// Update modifies name, type, connection and active flag.
	Update(ctx context.Context, id uuid.UUID, name, dsType, encryptedConnection string, isActive bool) error

	// TouchLastSync records a successful connection test.
	TouchLastSync(ctx context.Context, id uuid.UUID) error

	// Delete removes a data source. Referencing saved queries or writable
	// tables make the delete a Conflict.
	Delete(ctx context.Context, id uuid.UUID) error
}

type dataSourceRepository struct {
	db *database.DB
}

// NewDataSourceRepository creates a DataSourceRepository backed by the
// metadata store.
func NewDataSourceRepository(db *database.DB) DataSourceRepository {
	return &dataSourceRepository{db: db}
}

func (r *dataSourceRepository) Create(ctx context.Context, ds *models.DataSource, encryptedConnection string) error {
	ds.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, `
		INSERT INTO data_sources (name, type, connection_encrypted, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ds.Name, ds.Type, encryptedConnection, ds.IsActive, ds.CreatedAt,
	).Scan(&ds.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return apperrors.Conflict(fmt.Sprintf("data source name already exists: %s", ds.Name))
		}
		return fmt.Errorf("failed to create data source: %w", err)
	}
	return nil
}

func (r *dataSourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DataSource, string, error) {
	var (
		ds        models.DataSource
		encrypted string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, type, connection_encrypted, is_active, created_at, last_sync_at
		FROM data_sources WHERE id = $1`, id,
	).Scan(&ds.ID, &ds.Name, &ds.Type, &encrypted, &ds.IsActive, &ds.CreatedAt, &ds.LastSyncAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NotFoundf("data source not found: %s", id)
		}
		return nil, "", fmt.Errorf("failed to get data source: %w", err)
	}
	return &ds, encrypted, nil
}

func (r *dataSourceRepository) List(ctx context.Context) ([]*models.DataSource, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, type, is_active, created_at, last_sync_at
		FROM data_sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.DataSource
	for rows.Next() {
		var ds models.DataSource
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Type, &ds.IsActive, &ds.CreatedAt, &ds.LastSyncAt); err != nil {
			return nil, fmt.Errorf("failed to scan data source: %w", err)
		}
		sources = append(sources, &ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	return sources, nil
}

func (r *dataSourceRepository) Update(ctx context.Context, id uuid.UUID, name, dsType, encryptedConnection string, isActive bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE data_sources
		SET name = $2, type = $3, connection_encrypted = $4, is_active = $5
		WHERE id = $1`,
		id, name, dsType, encryptedConnection, isActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return apperrors.Conflict(fmt.Sprintf("data source name already exists: %s", name))
		}
		return fmt.Errorf("failed to update data source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("data source not found: %s", id)
	}
	return nil
}

func (r *dataSourceRepository) TouchLastSync(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE data_sources SET last_sync_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch last_sync_at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("data source not found: %s", id)
	}
	return nil
}

func (r *dataSourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			return apperrors.Conflict("data source is referenced by saved queries or writable tables")
		}
		return fmt.Errorf("failed to delete data source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("data source not found: %s", id)
	}
	return nil
}

var _ DataSourceRepository = (*dataSourceRepository)(nil)
