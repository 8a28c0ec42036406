package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/services"
)

// CreateDataSourceRequest for POST body.
type CreateDataSourceRequest struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Connection map[string]any `json:"connection"`
	IsActive   *bool          `json:"is_active,omitempty"`
}

// UpdateDataSourceRequest for PUT body.
type UpdateDataSourceRequest struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Connection map[string]any `json:"connection"`
	IsActive   bool           `json:"is_active"`
}

// TestConnectionResponse for connection test result.
type TestConnectionResponse struct {
	OK     bool     `json:"ok"`
	Tables []string `json:"tables,omitempty"`
}

// DataSourcesHandler handles data source management requests.
type DataSourcesHandler struct {
	dataSources services.DataSourceService
	factory     datasource.Factory
	logger      *zap.Logger
}

// NewDataSourcesHandler creates a new data sources handler.
func NewDataSourcesHandler(dataSources services.DataSourceService, factory datasource.Factory, logger *zap.Logger) *DataSourcesHandler {
	return &DataSourcesHandler{dataSources: dataSources, factory: factory, logger: logger}
}

// RegisterRoutes registers the data source routes on the given mux.
func (h *DataSourcesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasources", h.List)
	mux.HandleFunc("POST /api/datasources", h.Create)
	mux.HandleFunc("GET /api/datasources/types", h.ListTypes)
	mux.HandleFunc("GET /api/datasources/{id}", h.Get)
	mux.HandleFunc("PUT /api/datasources/{id}", h.Update)
	mux.HandleFunc("DELETE /api/datasources/{id}", h.Delete)
	mux.HandleFunc("POST /api/datasources/{id}/test", h.TestConnection)
	mux.HandleFunc("GET /api/datasources/{id}/tables", h.ListTables)
	mux.HandleFunc("GET /api/datasources/{id}/tables/{table}/rows", h.GetTableRows)
}

// List handles GET /api/datasources. Connections are never returned.
func (h *DataSourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.dataSources.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to list data sources")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: sources}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListTypes handles GET /api/datasources/types.
func (h *DataSourcesHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: h.factory.ListTypes()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/datasources.
func (h *DataSourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDataSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ds, err := h.dataSources.Create(r.Context(), req.Name, req.Type, req.Connection, isActive)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to create data source")
		return
	}

	h.logger.Info("data source created",
		zap.String("data_source_id", ds.ID.String()),
		zap.String("type", ds.Type))
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: sanitizeDataSource(ds)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/datasources/{id}. The connection map is omitted from
// the response even though the service decrypts it.
func (h *DataSourcesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	ds, err := h.dataSources.Get(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to get data source")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: sanitizeDataSource(ds)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/datasources/{id}.
func (h *DataSourcesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateDataSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.dataSources.Update(r.Context(), id, req.Name, req.Type, req.Connection, req.IsActive); err != nil {
		ServiceError(w, h.logger, err, "Failed to update data source")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/datasources/{id}. Sources still referenced by
// saved queries or writable tables come back as 409.
func (h *DataSourcesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.dataSources.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err, "Failed to delete data source")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// TestConnection handles POST /api/datasources/{id}/test.
func (h *DataSourcesHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	result, err := h.dataSources.TestConnection(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err, "Connection test failed")
		return
	}
	resp := TestConnectionResponse{OK: result.OK, Tables: result.Tables}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: resp}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListTables handles GET /api/datasources/{id}/tables.
func (h *DataSourcesHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	tables, err := h.dataSources.ListTables(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to list tables")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tables}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetTableRows handles GET /api/datasources/{id}/tables/{table}/rows.
func (h *DataSourcesHandler) GetTableRows(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	limit, ok := queryLimit(w, r, services.DefaultPreviewLimit, h.logger)
	if !ok {
		return
	}
	rows, err := h.dataSources.GetTableRows(r.Context(), id, r.PathValue("table"), limit)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to read table rows")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rows}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// sanitizeDataSource strips the connection map before a data source leaves
// the engine.
func sanitizeDataSource(ds *models.DataSource) *models.DataSource {
	clean := *ds
	clean.Connection = nil
	return &clean
}

// pathUUID parses a UUID path segment, answering 400 itself on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid "+name+" format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDParam parses a UUID from a request field, answering 400 itself on
// failure.
func parseUUIDParam(w http.ResponseWriter, raw string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads an optional ?limit= parameter, falling back to def when
// absent. Anything present but unparseable or below 1 is answered with 400
// here rather than letting it reach an adapter.
func queryLimit(w http.ResponseWriter, r *http.Request, def int, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return limit, true
}
