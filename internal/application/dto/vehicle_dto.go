package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleRequest entrada para crear o actualizar un vehículo.
type VehicleRequest struct {
	Plate   string           `json:"plate" validate:"required,max=20"`
	Mileage int              `json:"mileage" validate:"min=0,max=2147483647"`
	Model   string           `json:"model" validate:"required,max=100"`
	Brand   string           `json:"brand" validate:"required,max=100"`
	Price   *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	Notes   string           `json:"notes" validate:"max=2000"`
}

// VehicleResponse salida de un vehículo.
type VehicleResponse struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	Plate     string           `json:"plate"`
	Mileage   int              `json:"mileage"`
	Model     string           `json:"model"`
	Brand     string           `json:"brand"`
	Price     *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	Notes     string           `json:"notes"`
	Photos    []string         `json:"photos"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// VehicleListResponse lista paginada de vehículos.
type VehicleListResponse struct {
	Items []VehicleResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
