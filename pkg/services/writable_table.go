package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// WritableTableService manages the curated set of tables exposed for editor
// writes. Only PostgreSQL data sources may own a writable table.
type WritableTableService interface {
	Create(ctx context.Context, table *models.WritableTable) (*models.WritableTable, error)
	Get(ctx context.Context, id uuid.UUID) (*models.WritableTable, error)
	List(ctx context.Context) ([]*models.WritableTable, error)
	Update(ctx context.Context, table *models.WritableTable) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type writableTableService struct {
	tables      repositories.WritableTableRepository
	dataSources DataSourceService
}

// NewWritableTableService creates a WritableTableService.
func NewWritableTableService(
	tables repositories.WritableTableRepository,
	dataSources DataSourceService,
) WritableTableService {
	return &writableTableService{tables: tables, dataSources: dataSources}
}

func (s *writableTableService) Create(ctx context.Context, table *models.WritableTable) (*models.WritableTable, error) {
	if err := s.validate(ctx, table); err != nil {
		return nil, err
	}
	table.ID = uuid.New()
	if err := s.tables.Create(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *writableTableService) Get(ctx context.Context, id uuid.UUID) (*models.WritableTable, error) {
	return s.tables.GetByID(ctx, id)
}

func (s *writableTableService) List(ctx context.Context) ([]*models.WritableTable, error) {
	return s.tables.List(ctx)
}

func (s *writableTableService) Update(ctx context.Context, table *models.WritableTable) error {
	if err := s.validate(ctx, table); err != nil {
		return err
	}
	return s.tables.Update(ctx, table)
}

func (s *writableTableService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tables.Delete(ctx, id)
}

func (s *writableTableService) validate(ctx context.Context, table *models.WritableTable) error {
	table.TableName = strings.TrimSpace(table.TableName)
	if _, err := enginesql.ParseTableRef(table.TableName, "public"); err != nil {
		return err
	}
	for _, column := range table.AllowedColumns {
		if !enginesql.ValidIdentifier(column) {
			return apperrors.BadRequestf("invalid column name in allow list: %s", column)
		}
	}

	ds, err := s.dataSources.Get(ctx, table.DataSourceID)
	if err != nil {
		return err
	}
	if !models.IsPostgresType(ds.Type) {
		return apperrors.BadRequestf("writable tables require a postgresql data source, got %s", ds.Type)
	}
	return nil
}

var _ WritableTableService = (*writableTableService)(nil)
