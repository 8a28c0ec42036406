package models

import "github.com/google/uuid"

// EditorPermissions holds the two independent grant sets for one editor:
// dashboards the editor may view and writable tables the editor may write to.
// Absence of a grant is a deny; there is no explicit deny row.
type EditorPermissions struct {
	EditorID         uuid.UUID   `json:"editor_id"`
	DashboardIDs     []uuid.UUID `json:"dashboard_ids"`
	WritableTableIDs []uuid.UUID `json:"writable_table_ids"`
}
