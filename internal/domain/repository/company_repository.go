package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure. Los Get devuelven (nil, nil) si no existe.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	Update(ctx context.Context, company *entity.Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Company, error)
	// GetByName compara sin distinguir mayúsculas.
	GetByName(ctx context.Context, name string) (*entity.Company, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Company, error)
	ListActive(ctx context.Context) ([]*entity.Company, error)
	Search(ctx context.Context, q search.Query[*entity.Company]) (search.Result[*entity.Company], error)
	CountDependents(ctx context.Context, id string) (entity.CompanyDependents, error)
}
