package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// VehicleRepository puerto de persistencia de vehículos. La placa se guarda normalizada.
type VehicleRepository interface {
	// Create/Update devuelven domain.ErrConflict si la placa ya existe en la empresa.
	Create(ctx context.Context, v *entity.Vehicle) error
	Update(ctx context.Context, v *entity.Vehicle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	GetByPlate(ctx context.Context, companyID, plate string) (*entity.Vehicle, error)
	// FindByPlate busca la placa en cualquier empresa (consulta pública); devuelve el más reciente.
	FindByPlate(ctx context.Context, plate string) (*entity.Vehicle, error)
	Search(ctx context.Context, companyID string, q search.Query[*entity.Vehicle]) (search.Result[*entity.Vehicle], error)
	Stats(ctx context.Context, companyID string) (*entity.FleetStats, error)
}
