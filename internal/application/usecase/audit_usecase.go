package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// AuditUseCase consultas del trail de auditoría, siempre acotadas a la empresa resuelta.
type AuditUseCase struct {
	repo     repository.AuditRepository
	resolver *access.Resolver
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository, resolver *access.Resolver) *AuditUseCase {
	return &AuditUseCase{repo: repo, resolver: resolver}
}

// ByEntity historial de una entidad, más reciente primero.
func (uc *AuditUseCase) ByEntity(ctx context.Context, email, companySel, kind, entityID string) ([]dto.AuditEntryResponse, error) {
	k, ok := entity.ParseEntityKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: tipo de entidad desconocido %q", domain.ErrValidation, kind)
	}
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByEntity(ctx, k, entityID, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	return toAuditResponses(list), nil
}

// ByCompany entradas de la empresa resuelta en un rango opcional de fechas (inclusivo).
func (uc *AuditUseCase) ByCompany(ctx context.Context, email, companySel string, from, to *time.Time) ([]dto.AuditEntryResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, from, to)
	if err != nil {
		return nil, err
	}
	return toAuditResponses(list), nil
}

func toAuditResponses(list []*entity.AuditEntry) []dto.AuditEntryResponse {
	out := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.AuditEntryResponse{
			ID:         e.ID,
			Action:     string(e.Action),
			EntityKind: string(e.EntityKind),
			EntityID:   e.EntityID,
			ActorEmail: e.ActorEmail,
			CompanyID:  e.CompanyID,
			Before:     e.Before,
			After:      e.After,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
