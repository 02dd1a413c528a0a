package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// CompanyUseCase administración de empresas. Crear, editar, desactivar y eliminar
// requiere canManageCompanies; un ADMIN opera sobre cualquier empresa.
type CompanyUseCase struct {
	tx        repository.TxRunner
	companies repository.CompanyRepository
	resolver  *access.Resolver
	audit     *audit.Recorder
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(tx repository.TxRunner, companies repository.CompanyRepository, resolver *access.Resolver, recorder *audit.Recorder) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, companies: companies, resolver: resolver, audit: recorder}
}

func normalizeCompany(in *dto.CompanyRequest) error {
	in.Name = CleanText(in.Name)
	in.TaxID = CleanText(in.TaxID)
	in.Address = CleanText(in.Address)
	in.Email = CleanText(in.Email)
	return required("name", in.Name)
}

func nameConflict(name string) error {
	return fmt.Errorf("%w: ya existe una empresa con el nombre %s", domain.ErrConflict, name)
}

// Create crea una empresa y la agrega a las empresas secundarias del creador.
func (uc *CompanyUseCase) Create(ctx context.Context, email string, in dto.CompanyRequest) (*dto.CompanyResponse, error) {
	if err := normalizeCompany(&in); err != nil {
		return nil, err
	}
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageCompanies); err != nil {
		return nil, err
	}
	now := entity.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Companies.GetByName(ctx, company.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return nameConflict(company.Name)
		}
		if err := repos.Companies.Create(ctx, company); err != nil {
			return err
		}
		creator, err := repos.Users.GetByID(ctx, actor.User.ID)
		if err != nil {
			return err
		}
		if creator == nil {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, actor.Email())
		}
		creator.AddSecondaryCompany(company.ID)
		return repos.Users.Update(ctx, creator)
	})
	if err != nil {
		return nil, err
	}
	out := CompanyToResponse(company)
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditCreate,
		Kind:       entity.KindCompany,
		EntityID:   company.ID,
		ActorEmail: actor.Email(),
		CompanyID:  company.ID,
		After:      out,
		Note:       "empresa creada",
	})
	return out, nil
}

// Update edita los datos de una empresa.
func (uc *CompanyUseCase) Update(ctx context.Context, email, id string, in dto.CompanyRequest) (*dto.CompanyResponse, error) {
	if err := normalizeCompany(&in); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, email, id, "empresa actualizada", func(repos repository.Repositories, c *entity.Company) error {
		if !strings.EqualFold(c.Name, in.Name) {
			other, err := repos.Companies.GetByName(ctx, in.Name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != c.ID {
				return nameConflict(in.Name)
			}
		}
		c.Name = in.Name
		c.TaxID = in.TaxID
		c.Address = in.Address
		c.Phone = in.Phone
		c.Email = in.Email
		return nil
	})
}

// Deactivate baja lógica: siempre permitida, aunque tenga vehículos o usuarios.
func (uc *CompanyUseCase) Deactivate(ctx context.Context, email, id string) (*dto.CompanyResponse, error) {
	return uc.mutate(ctx, email, id, "empresa desactivada", func(_ repository.Repositories, c *entity.Company) error {
		c.Active = false
		return nil
	})
}

// Activate reactiva una empresa desactivada.
func (uc *CompanyUseCase) Activate(ctx context.Context, email, id string) (*dto.CompanyResponse, error) {
	return uc.mutate(ctx, email, id, "empresa activada", func(_ repository.Repositories, c *entity.Company) error {
		c.Active = true
		return nil
	})
}

func (uc *CompanyUseCase) mutate(ctx context.Context, email, id, note string, apply func(repository.Repositories, *entity.Company) error) (*dto.CompanyResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageCompanies); err != nil {
		return nil, err
	}
	var before, after *dto.CompanyResponse
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Companies.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, id)
		}
		before = CompanyToResponse(c)
		if err := apply(repos, c); err != nil {
			return err
		}
		c.UpdatedAt = entity.Now()
		if err := repos.Companies.Update(ctx, c); err != nil {
			return err
		}
		after = CompanyToResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditUpdate,
		Kind:       entity.KindCompany,
		EntityID:   after.ID,
		ActorEmail: actor.Email(),
		CompanyID:  after.ID,
		Before:     before,
		After:      after,
		Note:       note,
	})
	return after, nil
}

// Delete borrado físico: solo sin vehículos ni usuarios cuya empresa principal sea ésta.
// El conteo y el borrado ocurren con la fila de la empresa bloqueada.
func (uc *CompanyUseCase) Delete(ctx context.Context, email, id string) error {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return err
	}
	if err := actor.Require(access.ManageCompanies, access.Delete); err != nil {
		return err
	}
	var removed *entity.Company
	err = uc.tx.Run(ctx, func(repos repository.Repositories) error {
		c, err := repos.Companies.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, id)
		}
		deps, err := repos.Companies.CountDependents(ctx, c.ID)
		if err != nil {
			return err
		}
		if deps.Blocking() {
			return fmt.Errorf("%w: la empresa tiene %d vehículo(s) y %d usuario(s) asociados; desactívela en su lugar",
				domain.ErrConflict, deps.Vehicles, deps.PrimaryUsers)
		}
		removed = c
		return repos.Companies.Delete(ctx, c.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry{
		Action:     entity.AuditDelete,
		Kind:       entity.KindCompany,
		EntityID:   removed.ID,
		ActorEmail: actor.Email(),
		CompanyID:  removed.ID,
		Before:     CompanyToResponse(removed),
		Note:       "empresa eliminada",
	})
	return nil
}

// GetByID un ADMIN ve cualquier empresa; los demás solo las suyas (principal o secundarias).
func (uc *CompanyUseCase) GetByID(ctx context.Context, email, id string) (*dto.CompanyResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	c, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: empresa %s", domain.ErrNotFound, id)
	}
	if !actor.IsAdmin() && !actor.User.BelongsTo(c.ID) {
		return nil, domain.ErrTenantMismatch
	}
	return CompanyToResponse(c), nil
}

// Search búsqueda global de empresas (solo administradores de empresas).
func (uc *CompanyUseCase) Search(ctx context.Context, email string, criteria search.CompanyCriteria) (*dto.CompanyListResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageCompanies); err != nil {
		return nil, err
	}
	res, err := uc.companies.Search(ctx, criteria.Query())
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(res.Items))
	for _, c := range res.Items {
		items = append(items, *CompanyToResponse(c))
	}
	return &dto.CompanyListResponse{Items: items, Page: pageOf(res)}, nil
}

// ListMine empresa principal y secundarias del usuario.
func (uc *CompanyUseCase) ListMine(ctx context.Context, email string) ([]dto.CompanyResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	list, err := uc.companies.ListByIDs(ctx, actor.User.CompanyIDs())
	if err != nil {
		return nil, err
	}
	return toCompanyResponses(list), nil
}

// ListActive empresas activas (solo administradores de empresas).
func (uc *CompanyUseCase) ListActive(ctx context.Context, email string) ([]dto.CompanyResponse, error) {
	actor, err := uc.resolver.Resolve(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if err := actor.Require(access.ManageCompanies); err != nil {
		return nil, err
	}
	list, err := uc.companies.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toCompanyResponses(list), nil
}

func toCompanyResponses(list []*entity.Company) []dto.CompanyResponse {
	out := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *CompanyToResponse(c))
	}
	return out
}

// CompanyToResponse mapea la entidad a su DTO.
func CompanyToResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
