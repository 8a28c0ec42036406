package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// PostgreSQL error codes surfaced to callers as typed failures.
const (
	pgErrForeignKeyViolation = "23503"
	pgErrUniqueViolation     = "23505"
)

// ExecuteWrite runs a built INSERT/UPDATE statement with RETURNING and
// returns the affected rows. Constraint violations come back as Conflict so
// the transport layer can answer 409 instead of 500.
func (a *Adapter) ExecuteWrite(ctx context.Context, query string, args []any) (*models.QueryExecutionResult, error) {
	result, err := a.runQuery(ctx, query, args)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrForeignKeyViolation:
				return nil, apperrors.Conflict(fmt.Sprintf("foreign key violation on %s", pgErr.ConstraintName))
			case pgErrUniqueViolation:
				return nil, apperrors.Conflict(fmt.Sprintf("unique constraint violation on %s", pgErr.ConstraintName))
			}
		}
		return nil, err
	}
	return result, nil
}
