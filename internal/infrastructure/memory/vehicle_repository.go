package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implementación en memoria de VehicleRepository.
type VehicleRepo struct{ v view }

func checkVehicle(st *state, v *entity.Vehicle) error {
	if _, ok := st.companies[v.CompanyID]; !ok {
		return fmt.Errorf("%w: empresa %s inexistente", domain.ErrConflict, v.CompanyID)
	}
	for _, other := range st.vehicles {
		if other.ID != v.ID && other.CompanyID == v.CompanyID && strings.EqualFold(other.Plate, v.Plate) {
			return fmt.Errorf("%w: placa %s duplicada en la empresa", domain.ErrConflict, v.Plate)
		}
	}
	return nil
}

func (r *VehicleRepo) Create(_ context.Context, v *entity.Vehicle) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.vehicles[v.ID]; ok {
			return fmt.Errorf("%w: vehículo %s ya existe", domain.ErrConflict, v.ID)
		}
		if err := checkVehicle(st, v); err != nil {
			return err
		}
		st.vehicles[v.ID] = v.Clone()
		return nil
	})
}

func (r *VehicleRepo) Update(_ context.Context, v *entity.Vehicle) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.vehicles[v.ID]; !ok {
			return fmt.Errorf("%w: vehículo %s", domain.ErrNotFound, v.ID)
		}
		if err := checkVehicle(st, v); err != nil {
			return err
		}
		st.vehicles[v.ID] = v.Clone()
		return nil
	})
}

func (r *VehicleRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.vehicles, id)
		return nil
	})
}

func (r *VehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	var out *entity.Vehicle
	err := r.v.read(func(st *state) error {
		out = st.vehicles[id].Clone()
		return nil
	})
	return out, err
}

func (r *VehicleRepo) GetByPlate(_ context.Context, companyID, plate string) (*entity.Vehicle, error) {
	var out *entity.Vehicle
	err := r.v.read(func(st *state) error {
		for _, v := range st.vehicles {
			if v.CompanyID == companyID && strings.EqualFold(v.Plate, plate) {
				out = v.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *VehicleRepo) FindByPlate(_ context.Context, plate string) (*entity.Vehicle, error) {
	var out *entity.Vehicle
	err := r.v.read(func(st *state) error {
		for _, v := range st.vehicles {
			if !strings.EqualFold(v.Plate, plate) {
				continue
			}
			if out == nil || v.CreatedAt.After(out.CreatedAt) || (v.CreatedAt.Equal(out.CreatedAt) && v.ID < out.ID) {
				out = v
			}
		}
		return nil
	})
	return out.Clone(), err
}

func (r *VehicleRepo) Search(_ context.Context, companyID string, q search.Query[*entity.Vehicle]) (search.Result[*entity.Vehicle], error) {
	var items []*entity.Vehicle
	err := r.v.read(func(st *state) error {
		for _, v := range st.vehicles {
			if v.CompanyID == companyID {
				items = append(items, v.Clone())
			}
		}
		return nil
	})
	return q.Apply(items), err
}

func (r *VehicleRepo) Stats(_ context.Context, companyID string) (*entity.FleetStats, error) {
	stats := &entity.FleetStats{CompanyID: companyID, ByBrand: []entity.BrandCount{}, ByMonth: []entity.MonthCount{}}
	brands := map[string]int{}
	months := map[string]int{}
	err := r.v.read(func(st *state) error {
		for _, v := range st.vehicles {
			if v.CompanyID != companyID {
				continue
			}
			stats.Total++
			stats.TotalMileage += int64(v.Mileage)
			brands[strings.ToUpper(strings.TrimSpace(v.Brand))]++
			months[v.CreatedAt.UTC().Format("2006-01")]++
		}
		return nil
	})
	for b, n := range brands {
		stats.ByBrand = append(stats.ByBrand, entity.BrandCount{Brand: b, Count: n})
	}
	slices.SortFunc(stats.ByBrand, func(a, b entity.BrandCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Brand, b.Brand)
	})
	for m, n := range months {
		stats.ByMonth = append(stats.ByMonth, entity.MonthCount{Month: m, Count: n})
	}
	slices.SortFunc(stats.ByMonth, func(a, b entity.MonthCount) int { return strings.Compare(a.Month, b.Month) })
	return stats, err
}
