package dto

import "time"

// FleetReportResponse resumen de la flota de una empresa.
type FleetReportResponse struct {
	CompanyID    string          `json:"company_id"`
	CompanyName  string          `json:"company_name"`
	Total        int             `json:"total"`
	TotalMileage int64           `json:"total_mileage"`
	ByBrand      []BrandCountDTO `json:"by_brand"`
	ByMonth      []MonthCountDTO `json:"by_month"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// BrandCountDTO vehículos por marca.
type BrandCountDTO struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// MonthCountDTO vehículos registrados por mes (YYYY-MM).
type MonthCountDTO struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
