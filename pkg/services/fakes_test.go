package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// In-memory stand-ins for the repository and adapter layers.

type fakeSavedQueryRepo struct {
	queries map[uuid.UUID]*models.SavedQuery
}

func newFakeSavedQueryRepo(queries ...*models.SavedQuery) *fakeSavedQueryRepo {
	repo := &fakeSavedQueryRepo{queries: make(map[uuid.UUID]*models.SavedQuery)}
	for _, q := range queries {
		repo.queries[q.ID] = q
	}
	return repo
}

func (r *fakeSavedQueryRepo) Create(_ context.Context, query *models.SavedQuery) error {
	if query.ID == uuid.Nil {
		query.ID = uuid.New()
	}
	r.queries[query.ID] = query
	return nil
}

func (r *fakeSavedQueryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.SavedQuery, error) {
	query, ok := r.queries[id]
	if !ok {
		return nil, apperrors.NotFoundf("saved query not found: %s", id)
	}
	return query, nil
}

func (r *fakeSavedQueryRepo) List(_ context.Context) ([]*models.SavedQuery, error) {
	out := make([]*models.SavedQuery, 0, len(r.queries))
	for _, q := range r.queries {
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeSavedQueryRepo) ListByDataSource(_ context.Context, dataSourceID uuid.UUID) ([]*models.SavedQuery, error) {
	var out []*models.SavedQuery
	for _, q := range r.queries {
		if q.DataSourceID == dataSourceID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeSavedQueryRepo) Update(_ context.Context, query *models.SavedQuery) error {
	if _, ok := r.queries[query.ID]; !ok {
		return apperrors.NotFoundf("saved query not found: %s", query.ID)
	}
	r.queries[query.ID] = query
	return nil
}

func (r *fakeSavedQueryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.queries[id]; !ok {
		return apperrors.NotFoundf("saved query not found: %s", id)
	}
	delete(r.queries, id)
	return nil
}

type fakeDataSourceService struct {
	DataSourceService

	sources map[uuid.UUID]*models.DataSource
}

func newFakeDataSourceService(sources ...*models.DataSource) *fakeDataSourceService {
	svc := &fakeDataSourceService{sources: make(map[uuid.UUID]*models.DataSource)}
	for _, ds := range sources {
		svc.sources[ds.ID] = ds
	}
	return svc
}

func (s *fakeDataSourceService) Get(_ context.Context, id uuid.UUID) (*models.DataSource, error) {
	ds, ok := s.sources[id]
	if !ok {
		return nil, apperrors.NotFoundf("data source not found: %s", id)
	}
	return ds, nil
}

type fakeAdapter struct {
	datasource.Adapter

	lastQuery  string
	lastParams map[string]any
	lastLimit  int
	result     *models.QueryExecutionResult
	closed     bool
}

func (a *fakeAdapter) RunQuery(_ context.Context, queryText string, params map[string]any, limit int) (*models.QueryExecutionResult, error) {
	a.lastQuery = queryText
	a.lastParams = params
	a.lastLimit = limit
	if a.result != nil {
		return a.result, nil
	}
	return &models.QueryExecutionResult{Columns: []string{}, Rows: []map[string]any{}}, nil
}

func (a *fakeAdapter) Close() error {
	a.closed = true
	return nil
}

type fakeFactory struct {
	adapter *fakeAdapter
	opened  int
	openErr error
}

func (f *fakeFactory) Open(_ context.Context, _ string, _ map[string]any) (datasource.Adapter, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return f.adapter, nil
}

func (f *fakeFactory) ListTypes() []datasource.AdapterInfo { return nil }

type fakePermissionRepo struct {
	tableGrants     map[uuid.UUID]map[uuid.UUID]bool
	dashboardGrants map[uuid.UUID]map[uuid.UUID]bool
	replaced        *models.EditorPermissions
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{
		tableGrants:     make(map[uuid.UUID]map[uuid.UUID]bool),
		dashboardGrants: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *fakePermissionRepo) grantTable(editorID, tableID uuid.UUID) {
	if r.tableGrants[editorID] == nil {
		r.tableGrants[editorID] = make(map[uuid.UUID]bool)
	}
	r.tableGrants[editorID][tableID] = true
}

func (r *fakePermissionRepo) HasTablePermission(_ context.Context, editorID, writableTableID uuid.UUID) (bool, error) {
	return r.tableGrants[editorID][writableTableID], nil
}

func (r *fakePermissionRepo) HasDashboardAccess(_ context.Context, editorID, dashboardID uuid.UUID) (bool, error) {
	return r.dashboardGrants[editorID][dashboardID], nil
}

func (r *fakePermissionRepo) GetEditorPermissions(_ context.Context, editorID uuid.UUID) (*models.EditorPermissions, error) {
	perms := &models.EditorPermissions{EditorID: editorID}
	for tableID := range r.tableGrants[editorID] {
		perms.WritableTableIDs = append(perms.WritableTableIDs, tableID)
	}
	for dashboardID := range r.dashboardGrants[editorID] {
		perms.DashboardIDs = append(perms.DashboardIDs, dashboardID)
	}
	return perms, nil
}

func (r *fakePermissionRepo) ReplacePermissions(_ context.Context, perms *models.EditorPermissions) error {
	r.replaced = perms
	return nil
}

type fakeWritableTableRepo struct {
	tables map[uuid.UUID]*models.WritableTable
}

func newFakeWritableTableRepo(tables ...*models.WritableTable) *fakeWritableTableRepo {
	repo := &fakeWritableTableRepo{tables: make(map[uuid.UUID]*models.WritableTable)}
	for _, t := range tables {
		repo.tables[t.ID] = t
	}
	return repo
}

func (r *fakeWritableTableRepo) Create(_ context.Context, table *models.WritableTable) error {
	r.tables[table.ID] = table
	return nil
}

func (r *fakeWritableTableRepo) GetByID(_ context.Context, id uuid.UUID) (*models.WritableTable, error) {
	table, ok := r.tables[id]
	if !ok {
		return nil, apperrors.NotFoundf("writable table not found: %s", id)
	}
	return table, nil
}

func (r *fakeWritableTableRepo) List(_ context.Context) ([]*models.WritableTable, error) {
	out := make([]*models.WritableTable, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeWritableTableRepo) Update(_ context.Context, table *models.WritableTable) error {
	if _, ok := r.tables[table.ID]; !ok {
		return apperrors.NotFoundf("writable table not found: %s", table.ID)
	}
	r.tables[table.ID] = table
	return nil
}

func (r *fakeWritableTableRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tables[id]; !ok {
		return apperrors.NotFoundf("writable table not found: %s", id)
	}
	delete(r.tables, id)
	return nil
}

type fakeAuditRepo struct {
	entries []*models.AuditEntry
}

func (r *fakeAuditRepo) Insert(_ context.Context, entry *models.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}
