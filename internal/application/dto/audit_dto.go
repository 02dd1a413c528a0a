package dto

import "time"

// AuditEntryResponse entrada del trail de auditoría. Before/After son JSON serializado.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	ActorEmail string    `json:"actor_email"`
	CompanyID  *string   `json:"company_id,omitempty"`
	Before     string    `json:"before,omitempty"`
	After      string    `json:"after,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
