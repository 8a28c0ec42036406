package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openbase-hq/openbase-engine/pkg/database"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates an AuditRepository backed by the metadata store.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_log (actor_id, actor_type, action, resource, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ActorID, entry.ActorType, entry.Action, entry.Resource, raw, entry.IPAddress, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

var _ AuditRepository = (*auditRepository)(nil)
