package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/services"
)

// SaveWritableTableRequest for POST/PUT bodies.
type SaveWritableTableRequest struct {
	DataSourceID   string   `json:"data_source_id"`
	TableName      string   `json:"table_name"`
	AllowedColumns []string `json:"allowed_columns,omitempty"`
	AllowInsert    bool     `json:"allow_insert"`
	AllowUpdate    bool     `json:"allow_update"`
	Description    string   `json:"description,omitempty"`
}

// InsertRowRequest for editor inserts.
type InsertRowRequest struct {
	Values map[string]any `json:"values"`
}

// UpdateRowsRequest for editor updates.
type UpdateRowsRequest struct {
	Values map[string]any `json:"values"`
	Where  map[string]any `json:"where"`
}

// WritableTablesHandler handles writable table configuration and the editor
// write path.
type WritableTablesHandler struct {
	tables services.WritableTableService
	writes services.WriteService
	logger *zap.Logger
}

// NewWritableTablesHandler creates a new writable tables handler.
func NewWritableTablesHandler(
	tables services.WritableTableService,
	writes services.WriteService,
	logger *zap.Logger,
) *WritableTablesHandler {
	return &WritableTablesHandler{tables: tables, writes: writes, logger: logger}
}

// RegisterRoutes registers writable table routes on the given mux. The
// /api/writable-tables surface is administrative; /api/editor/tables is the
// permission-gated editor surface.
func (h *WritableTablesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/writable-tables", h.List)
	mux.HandleFunc("POST /api/writable-tables", h.Create)
	mux.HandleFunc("GET /api/writable-tables/{id}", h.Get)
	mux.HandleFunc("PUT /api/writable-tables/{id}", h.Update)
	mux.HandleFunc("DELETE /api/writable-tables/{id}", h.Delete)

	mux.HandleFunc("GET /api/editor/tables/{id}/schema", h.GetSchema)
	mux.HandleFunc("GET /api/editor/tables/{id}/rows", h.GetRows)
	mux.HandleFunc("POST /api/editor/tables/{id}/rows", h.InsertRow)
	mux.HandleFunc("PATCH /api/editor/tables/{id}/rows", h.UpdateRows)
}

// List handles GET /api/writable-tables.
func (h *WritableTablesHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to list writable tables")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tables}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/writable-tables.
func (h *WritableTablesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWritableTableRequest(w, r, h.logger)
	if !ok {
		return
	}
	dataSourceID, ok := parseUUIDParam(w, req.DataSourceID, h.logger)
	if !ok {
		return
	}

	table, err := h.tables.Create(r.Context(), &models.WritableTable{
		DataSourceID:   dataSourceID,
		TableName:      req.TableName,
		AllowedColumns: req.AllowedColumns,
		AllowInsert:    req.AllowInsert,
		AllowUpdate:    req.AllowUpdate,
		Description:    req.Description,
	})
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to create writable table")
		return
	}
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: table}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/writable-tables/{id}.
func (h *WritableTablesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	table, err := h.tables.Get(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to get writable table")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: table}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/writable-tables/{id}.
func (h *WritableTablesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	req, ok := decodeWritableTableRequest(w, r, h.logger)
	if !ok {
		return
	}
	dataSourceID, ok := parseUUIDParam(w, req.DataSourceID, h.logger)
	if !ok {
		return
	}

	table := &models.WritableTable{
		ID:             id,
		DataSourceID:   dataSourceID,
		TableName:      req.TableName,
		AllowedColumns: req.AllowedColumns,
		AllowInsert:    req.AllowInsert,
		AllowUpdate:    req.AllowUpdate,
		Description:    req.Description,
	}
	if err := h.tables.Update(r.Context(), table); err != nil {
		ServiceError(w, h.logger, err, "Failed to update writable table")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: table}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/writable-tables/{id}.
func (h *WritableTablesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.tables.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err, "Failed to delete writable table")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetSchema handles GET /api/editor/tables/{id}/schema.
func (h *WritableTablesHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.editorRequest(w, r)
	if !ok {
		return
	}

	schema, err := h.writes.GetTableSchema(r.Context(), actor, id)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to read table schema")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: schema}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetRows handles GET /api/editor/tables/{id}/rows.
func (h *WritableTablesHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.editorRequest(w, r)
	if !ok {
		return
	}

	limit, ok := queryLimit(w, r, services.DefaultPreviewLimit, h.logger)
	if !ok {
		return
	}
	rows, err := h.writes.GetTableRows(r.Context(), actor, id, limit)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to read table rows")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rows}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// InsertRow handles POST /api/editor/tables/{id}/rows.
func (h *WritableTablesHandler) InsertRow(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.editorRequest(w, r)
	if !ok {
		return
	}

	var req InsertRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.writes.InsertRow(r.Context(), actor, id, req.Values)
	if err != nil {
		ServiceError(w, h.logger, err, "Insert failed")
		return
	}
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateRows handles PATCH /api/editor/tables/{id}/rows.
func (h *WritableTablesHandler) UpdateRows(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.editorRequest(w, r)
	if !ok {
		return
	}

	var req UpdateRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.writes.UpdateRows(r.Context(), actor, id, req.Values, req.Where)
	if err != nil {
		ServiceError(w, h.logger, err, "Update failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// editorRequest resolves the actor identity and table ID for an editor
// route. Requests without a valid actor header are rejected outright.
func (h *WritableTablesHandler) editorRequest(w http.ResponseWriter, r *http.Request) (services.WriteActor, uuid.UUID, bool) {
	actor := services.WriteActor{ID: actorID(r), IP: clientIP(r)}
	if actor.ID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusForbidden, "missing_actor", "Actor identity is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return actor, uuid.Nil, false
	}

	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return actor, uuid.Nil, false
	}
	return actor, id, true
}

func decodeWritableTableRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*SaveWritableTableRequest, bool) {
	var req SaveWritableTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return &req, true
}
