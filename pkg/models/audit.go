package models

import "time"

// AuditActorType identifies who performed an audited action.
type AuditActorType string

const (
	AuditActorAdmin  AuditActorType = "admin"
	AuditActorEditor AuditActorType = "editor"
	AuditActorSystem AuditActorType = "system"
)

// Audit actions emitted by the write path. The payload shape is a contract
// with downstream consumers and must not change.
const (
	AuditActionWriteInsert = "write.insert"
	AuditActionWriteUpdate = "write.update"
)

// AuditEntry is one row in the audit log.
type AuditEntry struct {
	ActorID   string         `json:"actor_id,omitempty"`
	ActorType AuditActorType `json:"actor_type"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
