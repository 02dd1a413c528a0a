package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// AuditRepository trail de auditoría: solo inserción y consulta, más reciente primero.
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	ListByEntity(ctx context.Context, kind entity.EntityKind, entityID, companyID string) ([]*entity.AuditEntry, error)
	// ListByCompany filtra por rango inclusivo de fechas; from/to nil = sin límite.
	ListByCompany(ctx context.Context, companyID string, from, to *time.Time) ([]*entity.AuditEntry, error)
}
