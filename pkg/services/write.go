package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource/postgres"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
	enginesql "github.com/openbase-hq/openbase-engine/pkg/sql"
)

// WriteActor identifies the editor performing a write, for permission checks
// and the audit trail.
type WriteActor struct {
	ID uuid.UUID
	IP string
}

// WriteService is the validated write path for editor-facing tables. Every
// call re-checks permissions and the live schema; nothing is cached between
// writes.
type WriteService interface {
	// InsertRow inserts one row into a writable table and returns the
	// inserted row as the database reports it.
	InsertRow(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, values map[string]any) (*models.QueryExecutionResult, error)

	// UpdateRows updates rows matching the where predicates and returns the
	// affected rows.
	UpdateRows(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, values, where map[string]any) (*models.QueryExecutionResult, error)

	// GetTableSchema returns the live column schema of a writable table. The
	// actor must hold a grant on the table.
	GetTableSchema(ctx context.Context, actor WriteActor, writableTableID uuid.UUID) ([]models.ColumnSchema, error)

	// GetTableRows reads a bounded page of rows from a writable table. The
	// actor must hold a grant on the table.
	GetTableRows(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, limit int) (*models.QueryExecutionResult, error)
}

type writeService struct {
	permissions PermissionService
	tables      repositories.WritableTableRepository
	dataSources DataSourceService
	audit       repositories.AuditRepository
	logger      *zap.Logger
}

// NewWriteService creates a WriteService. A nil logger disables logging.
func NewWriteService(
	permissions PermissionService,
	tables repositories.WritableTableRepository,
	dataSources DataSourceService,
	audit repositories.AuditRepository,
	logger *zap.Logger,
) WriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &writeService{
		permissions: permissions,
		tables:      tables,
		dataSources: dataSources,
		audit:       audit,
		logger:      logger,
	}
}

func (s *writeService) InsertRow(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, values map[string]any) (*models.QueryExecutionResult, error) {
	table, err := s.authorizeWrite(ctx, actor, writableTableID)
	if err != nil {
		return nil, err
	}
	if !table.AllowInsert {
		return nil, apperrors.Forbidden("inserts are not enabled for this table")
	}

	ds, adapter, ref, err := s.openTable(ctx, table)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	schema, err := adapter.GetTableSchema(ctx, ref)
	if err != nil {
		return nil, err
	}

	set, err := enginesql.ValidateWriteValues(values, schema, table.AllowedColumns)
	if err != nil {
		return nil, err
	}

	query, args, err := enginesql.BuildInsertQuery(ref, set)
	if err != nil {
		return nil, err
	}

	result, err := adapter.ExecuteWrite(ctx, query, args)
	if err != nil {
		return nil, err
	}

	s.recordWrite(ctx, actor, table, models.AuditActionWriteInsert, map[string]any{
		"dataSourceId": ds.ID.String(),
		"tableName":    table.TableName,
		"columns":      set.Columns,
	})

	s.logger.Info("row inserted",
		zap.String("writable_table_id", writableTableID.String()),
		zap.String("table", table.TableName),
		zap.Int("columns", len(set.Columns)))
	return result, nil
}

func (s *writeService) UpdateRows(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, values, where map[string]any) (*models.QueryExecutionResult, error) {
	table, err := s.authorizeWrite(ctx, actor, writableTableID)
	if err != nil {
		return nil, err
	}
	if !table.AllowUpdate {
		return nil, apperrors.Forbidden("updates are not enabled for this table")
	}

	ds, adapter, ref, err := s.openTable(ctx, table)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	schema, err := adapter.GetTableSchema(ctx, ref)
	if err != nil {
		return nil, err
	}

	set, err := enginesql.ValidateWriteValues(values, schema, table.AllowedColumns)
	if err != nil {
		return nil, err
	}

	// Where predicates may use any schema column, including ones outside the
	// allow-list; the allow-list restricts what changes, not what matches.
	whereSet, err := enginesql.ValidateWhereValues(where, schema)
	if err != nil {
		return nil, err
	}

	query, args, err := enginesql.BuildUpdateQuery(ref, set, whereSet)
	if err != nil {
		return nil, err
	}

	result, err := adapter.ExecuteWrite(ctx, query, args)
	if err != nil {
		return nil, err
	}

	s.recordWrite(ctx, actor, table, models.AuditActionWriteUpdate, map[string]any{
		"dataSourceId": ds.ID.String(),
		"tableName":    table.TableName,
		"columns":      set.Columns,
		"whereColumns": whereSet.Columns,
	})

	s.logger.Info("rows updated",
		zap.String("writable_table_id", writableTableID.String()),
		zap.String("table", table.TableName),
		zap.Int("affected", result.RowCount))
	return result, nil
}

func (s *writeService) GetTableSchema(ctx context.Context, actor WriteActor, writableTableID uuid.UUID) ([]models.ColumnSchema, error) {
	table, err := s.authorizeWrite(ctx, actor, writableTableID)
	if err != nil {
		return nil, err
	}

	_, adapter, ref, err := s.openTable(ctx, table)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	return adapter.GetTableSchema(ctx, ref)
}

func (s *writeService) GetTableRows(ctx context.Context, actor WriteActor, writableTableID uuid.UUID, limit int) (*models.QueryExecutionResult, error) {
	table, err := s.authorizeWrite(ctx, actor, writableTableID)
	if err != nil {
		return nil, err
	}

	_, adapter, _, err := s.openTable(ctx, table)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	rows, err := adapter.GetRows(ctx, table.TableName, limit)
	if err != nil {
		return nil, err
	}
	return &models.QueryExecutionResult{
		Columns:  rows.Columns,
		Rows:     rows.Rows,
		RowCount: rows.RowCount,
	}, nil
}

// authorizeWrite resolves the writable table and enforces the permission
// grant. A missing grant is a deny.
func (s *writeService) authorizeWrite(ctx context.Context, actor WriteActor, writableTableID uuid.UUID) (*models.WritableTable, error) {
	allowed, table, err := s.permissions.CanEditorWriteToTable(ctx, actor.ID, writableTableID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Forbidden("you do not have permission to write to this table")
	}
	return table, nil
}

// openTable resolves the owning data source and opens a dedicated PostgreSQL
// connection for this write. Writes are PostgreSQL-only.
func (s *writeService) openTable(ctx context.Context, table *models.WritableTable) (*models.DataSource, *postgres.Adapter, enginesql.TableRef, error) {
	var ref enginesql.TableRef

	ds, err := s.dataSources.Get(ctx, table.DataSourceID)
	if err != nil {
		return nil, nil, ref, err
	}
	if !ds.IsActive {
		return nil, nil, ref, apperrors.BadRequestf("data source is inactive: %s", ds.Name)
	}
	if !models.IsPostgresType(ds.Type) {
		return nil, nil, ref, apperrors.BadRequestf("writes are only supported for postgresql data sources, got %s", ds.Type)
	}

	ref, err = enginesql.ParseTableRef(table.TableName, "public")
	if err != nil {
		return nil, nil, ref, err
	}

	cfg, err := postgres.FromMap(ds.Connection)
	if err != nil {
		return nil, nil, ref, err
	}
	adapter, err := postgres.NewAdapter(ctx, cfg)
	if err != nil {
		return nil, nil, ref, err
	}
	return ds, adapter, ref, nil
}

// recordWrite appends the audit entry. Audit failures are logged but do not
// fail the write, which has already committed.
func (s *writeService) recordWrite(ctx context.Context, actor WriteActor, table *models.WritableTable, action string, details map[string]any) {
	entry := &models.AuditEntry{
		ActorID:   actor.ID.String(),
		ActorType: models.AuditActorEditor,
		Action:    action,
		Resource:  "writable_table:" + table.ID.String(),
		Details:   details,
		IPAddress: actor.IP,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

var _ WriteService = (*writeService)(nil)
