// Package services holds the engine's orchestration layer: data source
// management, saved-query dispatch, the write path and the RBAC gate.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/crypto"
	"github.com/openbase-hq/openbase-engine/pkg/logging"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
)

// DataSourceService manages registered data sources. Connection maps are
// encrypted before they reach the repository and decrypted on the way out.
type DataSourceService interface {
	Create(ctx context.Context, name, dsType string, connection map[string]any, isActive bool) (*models.DataSource, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error)
	List(ctx context.Context) ([]*models.DataSource, error)
	Update(ctx context.Context, id uuid.UUID, name, dsType string, connection map[string]any, isActive bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// TestConnection opens the data source and verifies reachability,
	// recording the attempt on success.
	TestConnection(ctx context.Context, id uuid.UUID) (*datasource.ConnectionTestResult, error)

	// ListTables lists the data source's tables or collections.
	ListTables(ctx context.Context, id uuid.UUID) ([]string, error)

	// GetTableRows reads a bounded page of rows from one table.
	GetTableRows(ctx context.Context, id uuid.UUID, table string, limit int) (*datasource.TableRows, error)
}

type dataSourceService struct {
	repo      repositories.DataSourceRepository
	encryptor *crypto.ConnectionEncryptor
	factory   datasource.Factory
	logger    *zap.Logger
}

// NewDataSourceService creates a DataSourceService. A nil logger disables
// logging.
func NewDataSourceService(
	repo repositories.DataSourceRepository,
	encryptor *crypto.ConnectionEncryptor,
	factory datasource.Factory,
	logger *zap.Logger,
) DataSourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dataSourceService{repo: repo, encryptor: encryptor, factory: factory, logger: logger}
}

func (s *dataSourceService) Create(ctx context.Context, name, dsType string, connection map[string]any, isActive bool) (*models.DataSource, error) {
	if name == "" {
		return nil, apperrors.BadRequest("name is required")
	}
	if !datasource.IsRegistered(normalizeType(dsType)) {
		return nil, apperrors.BadRequestf("unsupported data source type: %s", dsType)
	}
	if connection == nil {
		return nil, apperrors.BadRequest("connection is required")
	}

	encrypted, err := s.encryptor.EncryptConnection(connection)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection: %w", err)
	}

	ds := &models.DataSource{
		Name:       name,
		Type:       normalizeType(dsType),
		Connection: connection,
		IsActive:   isActive,
	}
	if err := s.repo.Create(ctx, ds, encrypted); err != nil {
		return nil, err
	}

	s.logger.Info("data source created",
		zap.String("id", ds.ID.String()),
		zap.String("name", ds.Name),
		zap.String("type", ds.Type))
	return ds, nil
}

func (s *dataSourceService) Get(ctx context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, encrypted, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	connection, err := s.encryptor.DecryptConnection(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt connection: %w", err)
	}
	ds.Connection = connection
	return ds, nil
}

func (s *dataSourceService) List(ctx context.Context) ([]*models.DataSource, error) {
	// Connections stay encrypted at rest; listings never need them.
	return s.repo.List(ctx)
}

func (s *dataSourceService) Update(ctx context.Context, id uuid.UUID, name, dsType string, connection map[string]any, isActive bool) error {
	if name == "" {
		return apperrors.BadRequest("name is required")
	}
	if !datasource.IsRegistered(normalizeType(dsType)) {
		return apperrors.BadRequestf("unsupported data source type: %s", dsType)
	}

	encrypted, err := s.encryptor.EncryptConnection(connection)
	if err != nil {
		return fmt.Errorf("encrypt connection: %w", err)
	}
	return s.repo.Update(ctx, id, name, normalizeType(dsType), encrypted, isActive)
}

func (s *dataSourceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *dataSourceService) TestConnection(ctx context.Context, id uuid.UUID) (*datasource.ConnectionTestResult, error) {
	ds, adapter, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	result, err := adapter.TestConnection(ctx)
	if err != nil {
		s.logger.Warn("connection test failed",
			zap.String("id", ds.ID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	if err := s.repo.TouchLastSync(ctx, id); err != nil {
		s.logger.Warn("failed to record connection test", zap.Error(err))
	}
	return result, nil
}

func (s *dataSourceService) ListTables(ctx context.Context, id uuid.UUID) ([]string, error) {
	_, adapter, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()
	return adapter.ListTables(ctx)
}

func (s *dataSourceService) GetTableRows(ctx context.Context, id uuid.UUID, table string, limit int) (*datasource.TableRows, error) {
	_, adapter, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()
	return adapter.GetRows(ctx, table, limit)
}

// open resolves, decrypts and connects a data source for one operation.
// Inactive sources are rejected before any connection is attempted.
func (s *dataSourceService) open(ctx context.Context, id uuid.UUID) (*models.DataSource, datasource.Adapter, error) {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !ds.IsActive {
		return nil, nil, apperrors.BadRequestf("data source is inactive: %s", ds.Name)
	}

	adapter, err := s.factory.Open(ctx, ds.Type, ds.Connection)
	if err != nil {
		return nil, nil, err
	}
	return ds, adapter, nil
}

// normalizeType folds the legacy "postgres" spelling into the canonical one.
func normalizeType(dsType string) string {
	if models.IsPostgresType(dsType) {
		return models.DataSourceTypePostgres
	}
	return dsType
}

var _ DataSourceService = (*dataSourceService)(nil)
