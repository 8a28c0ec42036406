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

// SavedQueryRepository defines saved query persistence.
type SavedQueryRepository interface {
	Create(ctx context.Context, query *models.SavedQuery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SavedQuery, error)
	List(ctx context.Context) ([]*models.SavedQuery, error)
	ListByDataSource(ctx context.Context, dataSourceID uuid.UUID) ([]*models.SavedQuery, error)
	Update(ctx context.Context, query *models.SavedQuery) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type savedQueryRepository struct {
	db *database.DB
}

// NewSavedQueryRepository creates a SavedQueryRepository backed by the
// metadata store.
func NewSavedQueryRepository(db *database.DB) SavedQueryRepository {
	return &savedQueryRepository{db: db}
}

func (r *savedQueryRepository) Create(ctx context.Context, query *models.SavedQuery) error {
	variables, err := marshalVariables(query.Variables)
	if err != nil {
		return err
	}

	now := time.Now()
	query.CreatedAt = now
	query.UpdatedAt = now

	err = r.db.QueryRow(ctx, `
		INSERT INTO saved_queries (data_source_id, name, query_text, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		query.DataSourceID, query.Name, query.QueryText, variables, query.CreatedAt, query.UpdatedAt,
	).Scan(&query.ID)
	if err != nil {
		return fmt.Errorf("failed to create saved query: %w", err)
	}
	return nil
}

func (r *savedQueryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedQuery, error) {
	var (
		query     models.SavedQuery
		variables []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, data_source_id, name, query_text, variables, created_at, updated_at
		FROM saved_queries WHERE id = $1`, id,
	).Scan(&query.ID, &query.DataSourceID, &query.Name, &query.QueryText, &variables, &query.CreatedAt, &query.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("saved query not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get saved query: %w", err)
	}
	if err := json.Unmarshal(variables, &query.Variables); err != nil {
		return nil, fmt.Errorf("failed to decode query variables: %w", err)
	}
	return &query, nil
}

func (r *savedQueryRepository) List(ctx context.Context) ([]*models.SavedQuery, error) {
	return r.list(ctx, `
		SELECT id, data_source_id, name, query_text, variables, created_at, updated_at
		FROM saved_queries ORDER BY name`)
}

func (r *savedQueryRepository) ListByDataSource(ctx context.Context, dataSourceID uuid.UUID) ([]*models.SavedQuery, error) {
	return r.list(ctx, `
		SELECT id, data_source_id, name, query_text, variables, created_at, updated_at
		FROM saved_queries WHERE data_source_id = $1 ORDER BY name`, dataSourceID)
}

func (r *savedQueryRepository) list(ctx context.Context, sql string, args ...any) ([]*models.SavedQuery, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	defer rows.Close()

	var queries []*models.SavedQuery
	for rows.Next() {
		var (
			query     models.SavedQuery
			variables []byte
		)
		if err := rows.Scan(&query.ID, &query.DataSourceID, &query.Name, &query.QueryText, &variables, &query.CreatedAt, &query.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved query: %w", err)
		}
		if err := json.Unmarshal(variables, &query.Variables); err != nil {
			return nil, fmt.Errorf("failed to decode query variables: %w", err)
		}
		queries = append(queries, &query)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	return queries, nil
}

func (r *savedQueryRepository) Update(ctx context.Context, query *models.SavedQuery) error {
	variables, err := marshalVariables(query.Variables)
	if err != nil {
		return err
	}
	query.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		UPDATE saved_queries
		SET name = $2, query_text = $3, variables = $4, updated_at = $5
		WHERE id = $1`,
		query.ID, query.Name, query.QueryText, variables, query.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update saved query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("saved query not found: %s", query.ID)
	}
	return nil
}

func (r *savedQueryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_queries WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			return apperrors.Conflict("saved query is referenced by dashboard modules")
		}
		return fmt.Errorf("failed to delete saved query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("saved query not found: %s", id)
	}
	return nil
}

// marshalVariables keeps the stored JSONB an array even when no variables
// are defined.
func marshalVariables(variables []models.QueryVariable) ([]byte, error) {
	if variables == nil {
		variables = []models.QueryVariable{}
	}
	raw, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query variables: %w", err)
	}
	return raw, nil
}

var _ SavedQueryRepository = (*savedQueryRepository)(nil)
