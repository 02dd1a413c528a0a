package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// ReportUseCase resumen de flota de la empresa resuelta (JSON y PDF).
type ReportUseCase struct {
	vehicles  repository.VehicleRepository
	companies repository.CompanyRepository
	resolver  *access.Resolver
	pdf       ports.FleetReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(vehicles repository.VehicleRepository, companies repository.CompanyRepository, resolver *access.Resolver, pdf ports.FleetReportGenerator) *ReportUseCase {
	return &ReportUseCase{vehicles: vehicles, companies: companies, resolver: resolver, pdf: pdf}
}

func (uc *ReportUseCase) load(ctx context.Context, email, companySel string) (*entity.Company, *entity.FleetStats, error) {
	actor, err := uc.resolver.Resolve(ctx, email, companySel)
	if err != nil {
		return nil, nil, err
	}
	company, err := uc.companies.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, fmt.Errorf("%w: empresa %s", domain.ErrNotFound, actor.CompanyID)
	}
	stats, err := uc.vehicles.Stats(ctx, company.ID)
	if err != nil {
		return nil, nil, err
	}
	return company, stats, nil
}

// FleetSummary total de vehículos, kilometraje acumulado, cantidad por marca y por mes de registro.
func (uc *ReportUseCase) FleetSummary(ctx context.Context, email, companySel string) (*dto.FleetReportResponse, error) {
	company, stats, err := uc.load(ctx, email, companySel)
	if err != nil {
		return nil, err
	}
	out := &dto.FleetReportResponse{
		CompanyID:    company.ID,
		CompanyName:  company.Name,
		Total:        stats.Total,
		TotalMileage: stats.TotalMileage,
		ByBrand:      make([]dto.BrandCountDTO, 0, len(stats.ByBrand)),
		ByMonth:      make([]dto.MonthCountDTO, 0, len(stats.ByMonth)),
		GeneratedAt:  entity.Now(),
	}
	for _, b := range stats.ByBrand {
		out.ByBrand = append(out.ByBrand, dto.BrandCountDTO{Brand: b.Brand, Count: b.Count})
	}
	for _, m := range stats.ByMonth {
		out.ByMonth = append(out.ByMonth, dto.MonthCountDTO{Month: m.Month, Count: m.Count})
	}
	return out, nil
}

// FleetPDF genera el reporte imprimible. Devuelve el PDF y un nombre de archivo sugerido.
func (uc *ReportUseCase) FleetPDF(ctx context.Context, email, companySel string) ([]byte, string, error) {
	company, stats, err := uc.load(ctx, email, companySel)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	pdf, err := uc.pdf.GenerateFleetReport(company, stats, now)
	if err != nil {
		return nil, "", fmt.Errorf("generar reporte: %w", err)
	}
	return pdf, fmt.Sprintf("flota-%s.pdf", now.Format("20060102")), nil
}
