package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/services"
)

// ReplacePermissionsRequest replaces both grant sets for one editor.
type ReplacePermissionsRequest struct {
	DashboardIDs     []string `json:"dashboard_ids"`
	WritableTableIDs []string `json:"writable_table_ids"`
}

// PermissionsHandler handles editor permission administration.
type PermissionsHandler struct {
	permissions services.PermissionService
	logger      *zap.Logger
}

// NewPermissionsHandler creates a new permissions handler.
func NewPermissionsHandler(permissions services.PermissionService, logger *zap.Logger) *PermissionsHandler {
	return &PermissionsHandler{permissions: permissions, logger: logger}
}

// RegisterRoutes registers the permission routes on the given mux.
func (h *PermissionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/editors/{id}/permissions", h.Get)
	mux.HandleFunc("PUT /api/editors/{id}/permissions", h.Replace)
}

// Get handles GET /api/editors/{id}/permissions.
func (h *PermissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	editorID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	perms, err := h.permissions.GetEditorPermissions(r.Context(), editorID)
	if err != nil {
		ServiceError(w, h.logger, err, "Failed to get permissions")
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: perms}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/editors/{id}/permissions. Both grant sets are
// swapped in one transaction.
func (h *PermissionsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	editorID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req ReplacePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	perms := &models.EditorPermissions{EditorID: editorID}
	var parseOK bool
	if perms.DashboardIDs, parseOK = parseUUIDList(w, req.DashboardIDs, h.logger); !parseOK {
		return
	}
	if perms.WritableTableIDs, parseOK = parseUUIDList(w, req.WritableTableIDs, h.logger); !parseOK {
		return
	}

	if err := h.permissions.ReplacePermissions(r.Context(), perms); err != nil {
		ServiceError(w, h.logger, err, "Failed to replace permissions")
		return
	}

	h.logger.Info("editor permissions replaced",
		zap.String("editor_id", editorID.String()),
		zap.Int("dashboards", len(perms.DashboardIDs)),
		zap.Int("writable_tables", len(perms.WritableTableIDs)))
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: perms}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func parseUUIDList(w http.ResponseWriter, raw []string, logger *zap.Logger) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid ID format: "+value); err != nil {
				logger.Error("Failed to write error response", zap.Error(err))
			}
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
