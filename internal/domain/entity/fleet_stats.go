package entity

// FleetStats resumen de la flota de una empresa (reportes).
type FleetStats struct {
	CompanyID    string
	Total        int
	TotalMileage int64
	ByBrand      []BrandCount // orden: cantidad desc, marca asc
	ByMonth      []MonthCount // orden: mes asc
}

// BrandCount vehículos por marca (marca normalizada a mayúsculas).
type BrandCount struct {
	Brand string
	Count int
}

// MonthCount vehículos registrados por mes ("2006-01").
type MonthCount struct {
	Month string
	Count int
}
