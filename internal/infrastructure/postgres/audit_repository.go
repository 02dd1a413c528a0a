package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

const auditColumns = `id, action, entity_kind, entity_id, actor_email, company_id::text,
	COALESCE(before::text, ''), COALESCE(after::text, ''), note, created_at`

// AuditRepo trail de auditoría en PostgreSQL. company_id no tiene FK: el trail sobrevive al borrado.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador del trail de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func scanAudit(row scanner) (*entity.AuditEntry, error) {
	var e entity.AuditEntry
	var action, kind string
	err := row.Scan(&e.ID, &action, &kind, &e.EntityID, &e.ActorEmail, &e.CompanyID,
		&e.Before, &e.After, &e.Note, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Action = entity.AuditAction(action)
	e.EntityKind = entity.EntityKind(kind)
	return &e, nil
}

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, action, entity_kind, entity_id, actor_email, company_id,
			before, after, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::jsonb, NULLIF($8, '')::jsonb, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(e.Action), string(e.EntityKind), e.EntityID, e.ActorEmail, e.CompanyID,
		e.Before, e.After, e.Note, e.CreatedAt,
	)
	return wrapWrite(err, "insert audit entry")
}

func (r *AuditRepo) ListByEntity(ctx context.Context, kind entity.EntityKind, entityID, companyID string) ([]*entity.AuditEntry, error) {
	return r.list(ctx, `
		SELECT `+auditColumns+` FROM audit_entries
		WHERE entity_kind = $1 AND entity_id = $2 AND company_id = $3
		ORDER BY created_at DESC, id DESC`, string(kind), entityID, companyID)
}

func (r *AuditRepo) ListByCompany(ctx context.Context, companyID string, from, to *time.Time) ([]*entity.AuditEntry, error) {
	return r.list(ctx, `
		SELECT `+auditColumns+` FROM audit_entries
		WHERE company_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, id DESC`, companyID, from, to)
}

func (r *AuditRepo) list(ctx context.Context, query string, args ...any) ([]*entity.AuditEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	out, err := collect(rows, scanAudit)
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}
	return out, nil
}
