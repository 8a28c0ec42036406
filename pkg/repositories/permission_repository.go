package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openbase-hq/openbase-engine/pkg/database"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// PermissionRepository defines editor grant persistence. A missing row is a
// deny; there are no explicit deny rows.
type PermissionRepository interface {
	// HasTablePermission reports whether an editor holds a grant on a
	// writable table.
	HasTablePermission(ctx context.Context, editorID, writableTableID uuid.UUID) (bool, error)

	// HasDashboardAccess reports whether an editor may view a dashboard.
	HasDashboardAccess(ctx context.Context, editorID, dashboardID uuid.UUID) (bool, error)

	// GetEditorPermissions returns both grant sets for one editor.
	GetEditorPermissions(ctx context.Context, editorID uuid.UUID) (*models.EditorPermissions, error)

	// ReplacePermissions swaps an editor's grant sets atomically.
	ReplacePermissions(ctx context.Context, perms *models.EditorPermissions) error
}

type permissionRepository struct {
	db *database.DB
}

// NewPermissionRepository creates a PermissionRepository backed by the
// metadata store.
func NewPermissionRepository(db *database.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) HasTablePermission(ctx context.Context, editorID, writableTableID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM editor_table_permissions
			WHERE editor_id = $1 AND writable_table_id = $2
		)`, editorID, writableTableID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table permission: %w", err)
	}
	return exists, nil
}

func (r *permissionRepository) HasDashboardAccess(ctx context.Context, editorID, dashboardID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM editor_dashboard_access
			WHERE editor_id = $1 AND dashboard_id = $2
		)`, editorID, dashboardID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check dashboard access: %w", err)
	}
	return exists, nil
}

func (r *permissionRepository) GetEditorPermissions(ctx context.Context, editorID uuid.UUID) (*models.EditorPermissions, error) {
	perms := &models.EditorPermissions{EditorID: editorID}

	rows, err := r.db.Query(ctx,
		`SELECT writable_table_id FROM editor_table_permissions WHERE editor_id = $1`, editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read table permissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan table permission: %w", err)
		}
		perms.WritableTableIDs = append(perms.WritableTableIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table permissions: %w", err)
	}

	rows, err = r.db.Query(ctx,
		`SELECT dashboard_id FROM editor_dashboard_access WHERE editor_id = $1`, editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard access: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard access: %w", err)
		}
		perms.DashboardIDs = append(perms.DashboardIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dashboard access: %w", err)
	}

	return perms, nil
}

func (r *permissionRepository) ReplacePermissions(ctx context.Context, perms *models.EditorPermissions) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if _, err := tx.Exec(ctx,
		`DELETE FROM editor_table_permissions WHERE editor_id = $1`, perms.EditorID); err != nil {
		return fmt.Errorf("failed to clear table permissions: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM editor_dashboard_access WHERE editor_id = $1`, perms.EditorID); err != nil {
		return fmt.Errorf("failed to clear dashboard access: %w", err)
	}

	for _, tableID := range perms.WritableTableIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO editor_table_permissions (editor_id, writable_table_id)
			VALUES ($1, $2)`, perms.EditorID, tableID); err != nil {
			return fmt.Errorf("failed to grant table permission: %w", err)
		}
	}
	for _, dashboardID := range perms.DashboardIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO editor_dashboard_access (editor_id, dashboard_id)
			VALUES ($1, $2)`, perms.EditorID, dashboardID); err != nil {
			return fmt.Errorf("failed to grant dashboard access: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit permissions: %w", err)
	}
	return nil
}

var _ PermissionRepository = (*permissionRepository)(nil)
