package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación en memoria de CompanyRepository.
type CompanyRepo struct{ v view }

func companyNameTaken(st *state, name, selfID string) bool {
	for _, c := range st.companies {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *CompanyRepo) Create(_ context.Context, company *entity.Company) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.companies[company.ID]; ok {
			return fmt.Errorf("%w: empresa %s ya existe", domain.ErrConflict, company.ID)
		}
		if companyNameTaken(st, company.Name, company.ID) {
			return fmt.Errorf("%w: nombre de empresa duplicado", domain.ErrConflict)
		}
		st.companies[company.ID] = company.Clone()
		return nil
	})
}

func (r *CompanyRepo) Update(_ context.Context, company *entity.Company) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.companies[company.ID]; !ok {
			return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, company.ID)
		}
		if companyNameTaken(st, company.Name, company.ID) {
			return fmt.Errorf("%w: nombre de empresa duplicado", domain.ErrConflict)
		}
		st.companies[company.ID] = company.Clone()
		return nil
	})
}

// Delete elimina la empresa y los vínculos secundarios que la referencian.
func (r *CompanyRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.companies, id)
		for _, u := range st.users {
			u.SecondaryCompanyIDs = slices.DeleteFunc(u.SecondaryCompanyIDs, func(c string) bool { return c == id })
		}
		return nil
	})
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.v.read(func(st *state) error {
		out = st.companies[id].Clone()
		return nil
	})
	return out, err
}

// GetByIDForUpdate en memoria la transacción ya es exclusiva.
func (r *CompanyRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Company, error) {
	return r.GetByID(ctx, id)
}

func (r *CompanyRepo) GetByName(_ context.Context, name string) (*entity.Company, error) {
	var out *entity.Company
	err := r.v.read(func(st *state) error {
		for _, c := range st.companies {
			if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
				out = c.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Company, error) {
	return r.list(func(c *entity.Company) bool { return slices.Contains(ids, c.ID) })
}

func (r *CompanyRepo) ListActive(_ context.Context) ([]*entity.Company, error) {
	return r.list(func(c *entity.Company) bool { return c.Active })
}

// list ordenado por nombre.
func (r *CompanyRepo) list(keep func(*entity.Company) bool) ([]*entity.Company, error) {
	out := []*entity.Company{}
	err := r.v.read(func(st *state) error {
		for _, c := range st.companies {
			if keep(c) {
				out = append(out, c.Clone())
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Company) int {
		if c := strings.Compare(search.Fold(a.Name), search.Fold(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *CompanyRepo) Search(_ context.Context, q search.Query[*entity.Company]) (search.Result[*entity.Company], error) {
	var items []*entity.Company
	err := r.v.read(func(st *state) error {
		for _, c := range st.companies {
			items = append(items, c.Clone())
		}
		return nil
	})
	return q.Apply(items), err
}

func (r *CompanyRepo) CountDependents(_ context.Context, id string) (entity.CompanyDependents, error) {
	var deps entity.CompanyDependents
	err := r.v.read(func(st *state) error {
		for _, v := range st.vehicles {
			if v.CompanyID == id {
				deps.Vehicles++
			}
		}
		for _, u := range st.users {
			if u.CompanyID == id {
				deps.PrimaryUsers++
			}
		}
		return nil
	})
	return deps, err
}
