package memory

import (
	"context"
	"slices"
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo trail de auditoría en memoria (solo inserción).
type AuditRepo struct{ v view }

func (r *AuditRepo) Append(_ context.Context, e *entity.AuditEntry) error {
	cp := *e
	return r.v.write(func(st *state) error {
		st.audit = append(st.audit, &cp)
		return nil
	})
}

func (r *AuditRepo) ListByEntity(_ context.Context, kind entity.EntityKind, entityID, companyID string) ([]*entity.AuditEntry, error) {
	return r.list(func(e *entity.AuditEntry) bool {
		return e.EntityKind == kind && e.EntityID == entityID && e.CompanyID != nil && *e.CompanyID == companyID
	})
}

func (r *AuditRepo) ListByCompany(_ context.Context, companyID string, from, to *time.Time) ([]*entity.AuditEntry, error) {
	return r.list(func(e *entity.AuditEntry) bool {
		if e.CompanyID == nil || *e.CompanyID != companyID {
			return false
		}
		if from != nil && e.CreatedAt.Before(*from) {
			return false
		}
		return to == nil || !e.CreatedAt.After(*to)
	})
}

// list más reciente primero; a igual instante, el último insertado primero.
func (r *AuditRepo) list(keep func(*entity.AuditEntry) bool) ([]*entity.AuditEntry, error) {
	out := []*entity.AuditEntry{}
	err := r.v.read(func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			if e := st.audit[i]; keep(e) {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b *entity.AuditEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, err
}
