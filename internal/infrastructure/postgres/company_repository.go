package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

const companyColumns = `id, name, tax_id, address, phone, email, active, created_at, updated_at`

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

func scanCompany(row scanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return wrapWrite(err, "insert company")
}

// Update actualiza los datos de la empresa.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, tax_id = $3, address = $4, phone = $5, email = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email, c.Active, c.UpdatedAt)
	return expectRow(tag, err, "update company", c.ID)
}

// Delete borra la empresa; user_companies cae en cascada.
func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return wrapWrite(err, "delete company")
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *CompanyRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Company, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1 FOR UPDATE`, id)
}

// GetByName obtiene una empresa por nombre sin distinguir mayúsculas.
func (r *CompanyRepo) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower(btrim($1))`, name)
}

func (r *CompanyRepo) getOne(ctx context.Context, query string, arg any) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func (r *CompanyRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Company, error) {
	if len(ids) == 0 {
		return []*entity.Company{}, nil
	}
	return r.list(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ANY($1::uuid[]) ORDER BY lower(name) COLLATE "C", id`, ids)
}

func (r *CompanyRepo) ListActive(ctx context.Context) ([]*entity.Company, error) {
	return r.list(ctx, `SELECT `+companyColumns+` FROM companies WHERE active ORDER BY lower(name) COLLATE "C", id`)
}

func (r *CompanyRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out, err := collect(rows, scanCompany)
	if err != nil {
		return nil, fmt.Errorf("scan companies: %w", err)
	}
	return out, nil
}

// Search filtra, ordena y pagina en la base con la misma semántica que en memoria.
func (r *CompanyRepo) Search(ctx context.Context, q search.Query[*entity.Company]) (search.Result[*entity.Company], error) {
	return paginate(ctx, r.q, "companies", companyColumns, nil, q, scanCompany)
}

func (r *CompanyRepo) CountDependents(ctx context.Context, id string) (entity.CompanyDependents, error) {
	var d entity.CompanyDependents
	query := `
		SELECT
			(SELECT count(*) FROM vehicles WHERE company_id = $1),
			(SELECT count(*) FROM users WHERE company_id = $1)`
	if err := r.q.QueryRow(ctx, query, id).Scan(&d.Vehicles, &d.PrimaryUsers); err != nil {
		return d, fmt.Errorf("count company dependents: %w", err)
	}
	return d, nil
}
