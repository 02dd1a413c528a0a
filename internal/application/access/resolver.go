package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Actor usuario autenticado junto con la empresa que delimita la operación en curso.
type Actor struct {
	User      *entity.User
	CompanyID string
	Caps      entity.Capabilities
}

// Email identidad del actor (se registra en la auditoría).
func (a *Actor) Email() string { return a.User.Email }

// IsAdmin indica si el actor tiene rol ADMIN.
func (a *Actor) IsAdmin() bool { return a.User.Role == entity.RoleAdmin }

// Capability permiso requerido por una operación.
type Capability struct {
	name    string
	allowed func(entity.Capabilities) bool
}

var (
	Create          = Capability{"crear", func(c entity.Capabilities) bool { return c.CanCreate }}
	Edit            = Capability{"editar", func(c entity.Capabilities) bool { return c.CanEdit }}
	Delete          = Capability{"eliminar", func(c entity.Capabilities) bool { return c.CanDelete }}
	ManageUsers     = Capability{"administrar usuarios", func(c entity.Capabilities) bool { return c.CanManageUsers }}
	ManageCompanies = Capability{"administrar empresas", func(c entity.Capabilities) bool { return c.CanManageCompanies }}
)

// Require devuelve domain.ErrForbidden si el rol del actor no concede todos los permisos.
func (a *Actor) Require(caps ...Capability) error {
	for _, c := range caps {
		if !c.allowed(a.Caps) {
			return fmt.Errorf("%w: el rol %s no permite %s", domain.ErrForbidden, a.User.Role, c.name)
		}
	}
	return nil
}

// EnsureSameTenant falla con domain.ErrTenantMismatch si la entidad pertenece a otra empresa.
func (a *Actor) EnsureSameTenant(ownerCompanyID string) error {
	if ownerCompanyID != a.CompanyID {
		return domain.ErrTenantMismatch
	}
	return nil
}

// Resolver determina la empresa que delimita cada operación. Es el único punto donde se
// decide el alcance de tenant; toda lectura o escritura acotada pasa por aquí.
type Resolver struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
}

// NewResolver construye el resolver con los repositorios de lectura.
func NewResolver(users repository.UserRepository, companies repository.CompanyRepository) *Resolver {
	return &Resolver{users: users, companies: companies}
}

// Resolve carga al usuario por email y calcula el alcance. Igual que en el login y en la
// validación de API keys, un usuario inactivo o de una empresa principal inactiva no opera.
//   - ADMIN con empresa explícita: esa empresa (administración entre tenants);
//   - cualquier otro caso: la empresa principal del usuario (la selección de un no-ADMIN se ignora).
func (r *Resolver) Resolve(ctx context.Context, email, explicitCompanyID string) (*Actor, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, email)
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	home, err := r.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	if home == nil || !home.Active {
		return nil, fmt.Errorf("%w: la empresa principal del usuario está inactiva", domain.ErrForbidden)
	}

	scope := user.CompanyID
	explicitCompanyID = strings.TrimSpace(explicitCompanyID)
	if user.Role == entity.RoleAdmin && explicitCompanyID != "" {
		company, err := r.companies.GetByID(ctx, explicitCompanyID)
		if err != nil {
			return nil, err
		}
		if company == nil {
			return nil, fmt.Errorf("%w: empresa %s", domain.ErrNotFound, explicitCompanyID)
		}
		scope = company.ID
	}
	return &Actor{User: user, CompanyID: scope, Caps: user.Role.Capabilities()}, nil
}
