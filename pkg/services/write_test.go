package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

type writeFixture struct {
	perms   *fakePermissionRepo
	tables  *fakeWritableTableRepo
	sources *fakeDataSourceService
	audit   *fakeAuditRepo
	svc     WriteService
}

func newWriteFixture(table *models.WritableTable, ds *models.DataSource) *writeFixture {
	perms := newFakePermissionRepo()
	tables := newFakeWritableTableRepo(table)
	sources := newFakeDataSourceService(ds)
	auditRepo := &fakeAuditRepo{}
	permSvc := NewPermissionService(perms, tables)
	return &writeFixture{
		perms:   perms,
		tables:  tables,
		sources: sources,
		audit:   auditRepo,
		svc:     NewWriteService(permSvc, tables, sources, auditRepo, nil),
	}
}

func TestInsertRowDeniedWithoutGrant(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypePostgres, IsActive: true}
	table := &models.WritableTable{
		ID:           uuid.New(),
		DataSourceID: ds.ID,
		TableName:    "contacts",
		AllowInsert:  true,
	}
	f := newWriteFixture(table, ds)
	actor := WriteActor{ID: uuid.New()}

	_, err := f.svc.InsertRow(context.Background(), actor, table.ID, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, f.audit.entries, "denied writes must not be audited as writes")
}

func TestInsertRowDeniedWhenInsertDisabled(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypePostgres, IsActive: true}
	table := &models.WritableTable{
		ID:           uuid.New(),
		DataSourceID: ds.ID,
		TableName:    "contacts",
		AllowInsert:  false,
		AllowUpdate:  true,
	}
	f := newWriteFixture(table, ds)
	actor := WriteActor{ID: uuid.New()}
	f.perms.grantTable(actor.ID, table.ID)

	_, err := f.svc.InsertRow(context.Background(), actor, table.ID, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateRowsDeniedWhenUpdateDisabled(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypePostgres, IsActive: true}
	table := &models.WritableTable{
		ID:           uuid.New(),
		DataSourceID: ds.ID,
		TableName:    "contacts",
		AllowInsert:  true,
		AllowUpdate:  false,
	}
	f := newWriteFixture(table, ds)
	actor := WriteActor{ID: uuid.New()}
	f.perms.grantTable(actor.ID, table.ID)

	_, err := f.svc.UpdateRows(context.Background(), actor, table.ID, map[string]any{"name": "x"}, map[string]any{"id": 1})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestInsertRowRejectsInactiveSource(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Name: "crm", Type: models.DataSourceTypePostgres, IsActive: false}
	table := &models.WritableTable{
		ID:           uuid.New(),
		DataSourceID: ds.ID,
		TableName:    "contacts",
		AllowInsert:  true,
	}
	f := newWriteFixture(table, ds)
	actor := WriteActor{ID: uuid.New()}
	f.perms.grantTable(actor.ID, table.ID)

	_, err := f.svc.InsertRow(context.Background(), actor, table.ID, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestInsertRowRejectsNonPostgresSource(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Name: "files", Type: models.DataSourceTypeSQLite, IsActive: true}
	table := &models.WritableTable{
		ID:           uuid.New(),
		DataSourceID: ds.ID,
		TableName:    "contacts",
		AllowInsert:  true,
	}
	f := newWriteFixture(table, ds)
	actor := WriteActor{ID: uuid.New()}
	f.perms.grantTable(actor.ID, table.ID)

	_, err := f.svc.InsertRow(context.Background(), actor, table.ID, map[string]any{"name": "x"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Contains(t, err.Error(), "postgresql")
}

func TestInsertRowUnknownTable(t *testing.T) {
	ds := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypePostgres, IsActive: true}
	table := &models.WritableTable{ID: uuid.New(), DataSourceID: ds.ID, TableName: "contacts", AllowInsert: true}
	f := newWriteFixture(table, ds)

	_, err := f.svc.InsertRow(context.Background(), WriteActor{ID: uuid.New()}, uuid.New(), map[string]any{"name": "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPermissionServiceAbsenceIsDeny(t *testing.T) {
	table := &models.WritableTable{ID: uuid.New(), DataSourceID: uuid.New(), TableName: "contacts"}
	perms := newFakePermissionRepo()
	svc := NewPermissionService(perms, newFakeWritableTableRepo(table))

	editorID := uuid.New()
	allowed, got, err := svc.CanEditorWriteToTable(context.Background(), editorID, table.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, table.ID, got.ID)

	perms.grantTable(editorID, table.ID)
	allowed, _, err = svc.CanEditorWriteToTable(context.Background(), editorID, table.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	viewable, err := svc.CanEditorViewDashboard(context.Background(), editorID, uuid.New())
	require.NoError(t, err)
	assert.False(t, viewable)
}

func TestWritableTableServiceValidation(t *testing.T) {
	pg := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypePostgres, IsActive: true}
	lite := &models.DataSource{ID: uuid.New(), Type: models.DataSourceTypeSQLite, IsActive: true}
	sources := newFakeDataSourceService(pg, lite)
	svc := NewWritableTableService(newFakeWritableTableRepo(), sources)

	tests := []struct {
		name    string
		table   *models.WritableTable
		wantErr bool
	}{
		{
			name:  "valid",
			table: &models.WritableTable{DataSourceID: pg.ID, TableName: "contacts", AllowInsert: true},
		},
		{
			name:  "schema qualified",
			table: &models.WritableTable{DataSourceID: pg.ID, TableName: "crm.contacts"},
		},
		{
			name:    "invalid table name",
			table:   &models.WritableTable{DataSourceID: pg.ID, TableName: "contacts; drop"},
			wantErr: true,
		},
		{
			name:    "invalid allowed column",
			table:   &models.WritableTable{DataSourceID: pg.ID, TableName: "contacts", AllowedColumns: []string{"name", "a b"}},
			wantErr: true,
		},
		{
			name:    "non-postgres owner",
			table:   &models.WritableTable{DataSourceID: lite.ID, TableName: "contacts"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.table)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tt.table.ID)
		})
	}
}
