package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/openbase-hq/openbase-engine/pkg/models"
	"github.com/openbase-hq/openbase-engine/pkg/repositories"
)

// PermissionService is the RBAC gate. Grants are checked per request; the
// absence of a grant is a deny.
type PermissionService interface {
	// CanEditorWriteToTable reports whether the editor holds a grant on the
	// writable table. The table config is returned alongside so callers can
	// check allow_insert/allow_update without a second lookup.
	CanEditorWriteToTable(ctx context.Context, editorID, writableTableID uuid.UUID) (bool, *models.WritableTable, error)

	// CanEditorViewDashboard reports whether the editor may view a dashboard.
	CanEditorViewDashboard(ctx context.Context, editorID, dashboardID uuid.UUID) (bool, error)

	// GetEditorPermissions returns both grant sets for one editor.
	GetEditorPermissions(ctx context.Context, editorID uuid.UUID) (*models.EditorPermissions, error)

	// ReplacePermissions swaps an editor's grant sets atomically.
	ReplacePermissions(ctx context.Context, perms *models.EditorPermissions) error
}

type permissionService struct {
	perms  repositories.PermissionRepository
	tables repositories.WritableTableRepository
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(
	perms repositories.PermissionRepository,
	tables repositories.WritableTableRepository,
) PermissionService {
	return &permissionService{perms: perms, tables: tables}
}

func (s *permissionService) CanEditorWriteToTable(ctx context.Context, editorID, writableTableID uuid.UUID) (bool, *models.WritableTable, error) {
	table, err := s.tables.GetByID(ctx, writableTableID)
	if err != nil {
		return false, nil, err
	}

	allowed, err := s.perms.HasTablePermission(ctx, editorID, writableTableID)
	if err != nil {
		return false, nil, err
	}
	return allowed, table, nil
}

func (s *permissionService) CanEditorViewDashboard(ctx context.Context, editorID, dashboardID uuid.UUID) (bool, error) {
	return s.perms.HasDashboardAccess(ctx, editorID, dashboardID)
}

func (s *permissionService) GetEditorPermissions(ctx context.Context, editorID uuid.UUID) (*models.EditorPermissions, error) {
	return s.perms.GetEditorPermissions(ctx, editorID)
}

func (s *permissionService) ReplacePermissions(ctx context.Context, perms *models.EditorPermissions) error {
	return s.perms.ReplacePermissions(ctx, perms)
}

var _ PermissionService = (*permissionService)(nil)
