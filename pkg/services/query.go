package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/audit"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// Default row limits by call site. Dispatch clamps to [1, MaxQueryLimit]
// either way.
const (
	// DefaultModuleLimit applies to module-style data fetches.
	DefaultModuleLimit = 200
	// DefaultPreviewLimit applies to ad hoc previews of a saved query.
	DefaultPreviewLimit = 100
)

// QueryService manages saved queries and dispatches their execution.
type QueryService interface {
	Create(ctx context.Context, query *models.SavedQuery) error
	Get(ctx context.Context, id uuid.UUID) (*models.SavedQuery, error)
	List(ctx context.Context) ([]*models.SavedQuery, error)
	ListByDataSource(ctx context.Context, dataSourceID uuid.UUID) ([]*models.SavedQuery, error)
	Update(ctx context.Context, query *models.SavedQuery) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RunSavedQuery executes a saved query with the given parameters,
	// bounded by limit (defaulted and clamped by the caller's call site).
	RunSavedQuery(ctx context.Context, id uuid.UUID, params map[string]any, limit int, actorID string) (*models.QueryExecutionResult, error)
}

type queryService struct {
	queries     repositories.SavedQueryRepository
	dataSources DataSourceService
	factory     datasource.Factory
	security    *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewQueryService creates a QueryService. A nil logger disables logging.
func NewQueryService(
	queries repositories.SavedQueryRepository,
	dataSources DataSourceService,
	factory datasource.Factory,
	security *audit.SecurityAuditor,
	logger *zap.Logger,
) QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if security == nil {
		security = audit.NewSecurityAuditor(nil)
	}
	return &queryService{queries: queries, dataSources: dataSources, factory: factory, security: security, logger: logger}
}

func (s *queryService) Create(ctx context.Context, query *models.SavedQuery) error {
	if err := s.validate(ctx, query); err != nil {
		return err
	}
	return s.queries.Create(ctx, query)
}

func (s *queryService) Get(ctx context.Context, id uuid.UUID) (*models.SavedQuery, error) {
	return s.queries.GetByID(ctx, id)
}

func (s *queryService) List(ctx context.Context) ([]*models.SavedQuery, error) {
	return s.queries.List(ctx)
}

func (s *queryService) ListByDataSource(ctx context.Context, dataSourceID uuid.UUID) ([]*models.SavedQuery, error) {
	return s.queries.ListByDataSource(ctx, dataSourceID)
}

func (s *queryService) Update(ctx context.Context, query *models.SavedQuery) error {
	if err := s.validate(ctx, query); err != nil {
		return err
	}
	return s.queries.Update(ctx, query)
}

func (s *queryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.queries.Delete(ctx, id)
}

func (s *queryService) RunSavedQuery(ctx context.Context, id uuid.UUID, params map[string]any, limit int, actorID string) (*models.QueryExecutionResult, error) {
	query, err := s.queries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Resolves, checks is_active and decrypts before any connection.
	ds, err := s.dataSources.Get(ctx, query.DataSourceID)
	if err != nil {
		return nil, err
	}
	if !ds.IsActive {
		return nil, apperrors.BadRequestf("data source is inactive: %s", ds.Name)
	}

	merged, err := mergeVariableDefaults(query.Variables, params)
	if err != nil {
		return nil, err
	}

	queryText := query.QueryText
	if ds.Type != models.DataSourceTypeMongoDB {
		// The guard re-runs at execution time: stored text could predate a
		// guard fix or have been edited directly in the store.
		queryText, err = enginesql.ValidateReadOnly(queryText)
		if err != nil {
			s.security.LogGuardReject(query.ID, actorID, err.Error())
			return nil, err
		}

		// Flagged parameters are logged, never blocked; values always bind
		// through placeholders.
		for _, finding := range enginesql.ScanParameters(merged) {
			s.security.LogInjectionAttempt(query.ID, actorID, audit.SQLInjectionDetails{
				ParamName:   finding.ParamName,
				ParamValue:  finding.Value,
				Fingerprint: finding.Fingerprint,
			})
		}
	}

	adapter, err := s.factory.Open(ctx, ds.Type, ds.Connection)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	result, err := adapter.RunQuery(ctx, queryText, merged, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("saved query executed",
		zap.String("saved_query_id", query.ID.String()),
		zap.String("data_source_id", ds.ID.String()),
		zap.Int("row_count", result.RowCount))
	return result, nil
}

// validate rejects malformed saved queries at save time. MongoDB queries are
// bare collection names; everything else must pass the read-only guard.
func (s *queryService) validate(ctx context.Context, query *models.SavedQuery) error {
	if query.Name == "" {
		return apperrors.BadRequest("name is required")
	}
	if query.QueryText == "" {
		return apperrors.BadRequest("query text is required")
	}

	ds, err := s.dataSources.Get(ctx, query.DataSourceID)
	if err != nil {
		return err
	}
	if ds.Type == models.DataSourceTypeMongoDB {
		return nil
	}

	normalized, err := enginesql.ValidateReadOnly(query.QueryText)
	if err != nil {
		return err
	}
	query.QueryText = normalized
	return nil
}

// mergeVariableDefaults fills missing parameters from variable defaults and
// enforces required variables.
func mergeVariableDefaults(variables []models.QueryVariable, params map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(params))
	for name, value := range params {
		merged[name] = value
	}
	for _, variable := range variables {
		if _, present := merged[variable.Name]; present {
			continue
		}
		if variable.Default != nil {
			merged[variable.Name] = variable.Default
			continue
		}
		if variable.Required {
			return nil, apperrors.BadRequestf("missing query parameter: %s", variable.Name)
		}
	}
	return merged, nil
}

var _ QueryService = (*queryService)(nil)
