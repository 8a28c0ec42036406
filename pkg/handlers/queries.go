package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/services"
)

// SaveQueryRequest for POST/PUT bodies.
type SaveQueryRequest struct {
	DataSourceID string                 `json:"data_source_id"`
	Name         string                 `json:"name"`
	QueryText    string                 `json:"query_text"`
	Variables    []models.QueryVariable `json:"variables,omitempty"`
}

// PreviewQueryRequest for ad hoc execution of a saved query.
type PreviewQueryRequest struct {
	Params map[string]any `json:"params,omitempty"`
	Limit  int            `json:"limit,omitempty"`
}

// QueriesHandler handles saved query management and execution requests.
type QueriesHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(queries services.QueryService, logger *zap.Logger) *QueriesHandler {
	return &QueriesHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the saved query routes on the given mux.
func (h *QueriesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/queries", h.List)
	mux.HandleFunc("POST /api/queries", h.Create)
	mux.HandleFunc("GET /api/queries/{id}", h.Get)
	mux.HandleFunc("PUT /api/queries/{id}", h.Update)
	mux.HandleFunc("DELETE /api/queries/{id}", h.Delete)
	mux.HandleFunc("POST /api/queries/{id}/preview", h.Preview)
	mux.HandleFunc("GET /api/queries/{id}/data", h.FetchData)
}

// List handles GET /api/queries, optionally filtered by data source.
func (h *QueriesHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		queries []*models.SavedQuery
		err     error
	)
	if raw := r.URL.Query().Get("data_source_id"); raw != "" {
		dataSourceID, ok := parseUUIDParam(w, raw, h.logger)
		if !ok {
			return
		}
		queries, err = h.queries.ListByDataSource(r.Context(), dataSourceID)
	} else {
		queries, err = h.queries.List(r.Context())
	}
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to list saved queries")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: queries}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/queries. The query text must pass the read-only
// guard at save time.
func (h *QueriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSaveQueryRequest(w, r, h.logger)
	if !ok {
		return
	}
	dataSourceID, ok := parseUUIDParam(w, req.DataSourceID, h.logger)
	if !ok {
		return
	}

	query := &models.SavedQuery{
		DataSourceID: dataSourceID,
		Name:         req.Name,
		QueryText:    req.QueryText,
		Variables:    req.Variables,
	}
	if err := h.queries.Create(r.Context(), query); err != nil {
		ServiceError(w, h.logger, err, "Failed to create saved query")
		return
	}
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: query}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/queries/{id}.
func (h *QueriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	query, err := h.queries.Get(r.Context(), id)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to get saved query")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: query}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/queries/{id}.
func (h *QueriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	req, ok := decodeSaveQueryRequest(w, r, h.logger)
	if !ok {
		return
	}
	dataSourceID, ok := parseUUIDParam(w, req.DataSourceID, h.logger)
	if !ok {
		return
	}

	query := &models.SavedQuery{
		ID:           id,
		DataSourceID: dataSourceID,
		Name:         req.Name,
		QueryText:    req.QueryText,
		Variables:    req.Variables,
	}
	if err := h.queries.Update(r.Context(), query); err != nil {
		ServiceError(w, h.logger, err, "Failed to update saved query")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: query}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/queries/{id}.
func (h *QueriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.queries.Delete(r.Context(), id); err != nil {
		ServiceError(w, h.logger, err, "Failed to delete saved query")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Preview handles POST /api/queries/{id}/preview: an ad hoc run capped at
// the preview limit regardless of what the caller asks for.
func (h *QueriesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req PreviewQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > services.DefaultPreviewLimit {
		limit = services.DefaultPreviewLimit
	}

	result, err := h.queries.RunSavedQuery(r.Context(), id, req.Params, limit, actorID(r).String())
	if err != nil {
		ServiceError(w, h.logger, err, "Query preview failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// FetchData handles GET /api/queries/{id}/data, the module-style fetch.
// Parameters come from the query string; the reserved `filters` key may hold
// a JSON object whose entries are merged in (explicit query string wins).
func (h *QueriesHandler) FetchData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	params := make(map[string]any)
	if rawFilters := r.URL.Query().Get("filters"); rawFilters != "" {
		if err := json.Unmarshal([]byte(rawFilters), &params); err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_filters", "filters must be a JSON object"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}
	for name, values := range r.URL.Query() {
		if name == "filters" || name == "limit" || len(values) == 0 {
			continue
		}
		params[name] = values[0]
	}

	limit, ok := queryLimit(w, r, services.DefaultModuleLimit, h.logger)
	if !ok {
		return
	}
	result, err := h.queries.RunSavedQuery(r.Context(), id, params, limit, actorID(r).String())
	if err != nil {
		ServiceError(w, h.logger, err, "Query execution failed")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func decodeSaveQueryRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*SaveQueryRequest, bool) {
	var req SaveQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return &req, true
}
