package repository

import (
	"context"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// UserRepository puerto de persistencia de usuarios. El email se compara sin distinguir mayúsculas.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	// Delete borra también los vínculos con empresas secundarias.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Search busca entre los usuarios cuya empresa principal es companyID.
	Search(ctx context.Context, companyID string, q search.Query[*entity.User]) (search.Result[*entity.User], error)
	// SearchAll busca entre los usuarios de todas las empresas.
	SearchAll(ctx context.Context, q search.Query[*entity.User]) (search.Result[*entity.User], error)
	// CountActiveAdmins cuenta los ADMIN activos de todo el sistema bloqueando sus filas.
	CountActiveAdmins(ctx context.Context) (int, error)
}
