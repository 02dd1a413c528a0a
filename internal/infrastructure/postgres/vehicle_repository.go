package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

var _ repository.VehicleRepository = (*VehicleRepo)(nil)

const vehicleColumns = `id, company_id, plate, mileage, model, brand, price, notes, photos, created_at, updated_at`

// VehicleRepo implementación del puerto VehicleRepository sobre PostgreSQL.
type VehicleRepo struct {
	q Querier
}

// NewVehicleRepository construye el adaptador de persistencia para vehículos.
func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

func scanVehicle(row scanner) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(&v.ID, &v.CompanyID, &v.Plate, &v.Mileage, &v.Model, &v.Brand, &v.Price, &v.Notes,
		&v.Photos, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func photosOf(v *entity.Vehicle) []string {
	if v.Photos == nil {
		return []string{}
	}
	return v.Photos
}

// Create inserta el vehículo; la placa duplicada en la empresa viola uq_vehicles_company_plate.
func (r *VehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.CompanyID, v.Plate, v.Mileage, v.Model, v.Brand, v.Price, v.Notes, photosOf(v),
		v.CreatedAt, v.UpdatedAt,
	)
	return wrapWrite(err, "insert vehicle")
}

func (r *VehicleRepo) Update(ctx context.Context, v *entity.Vehicle) error {
	query := `
		UPDATE vehicles
		SET plate = $2, mileage = $3, model = $4, brand = $5, price = $6, notes = $7, photos = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		v.ID, v.Plate, v.Mileage, v.Model, v.Brand, v.Price, v.Notes, photosOf(v), v.UpdatedAt,
	)
	return expectRow(tag, err, "update vehicle", v.ID)
}

func (r *VehicleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	return wrapWrite(err, "delete vehicle")
}

func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
}

func (r *VehicleRepo) GetByPlate(ctx context.Context, companyID, plate string) (*entity.Vehicle, error) {
	return r.getOne(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE company_id = $1 AND plate = upper(btrim($2))`,
		companyID, plate)
}

func (r *VehicleRepo) FindByPlate(ctx context.Context, plate string) (*entity.Vehicle, error) {
	return r.getOne(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE plate = upper(btrim($1))
		ORDER BY created_at DESC, id ASC LIMIT 1`, plate)
}

func (r *VehicleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Vehicle, error) {
	v, err := scanVehicle(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepo) Search(ctx context.Context, companyID string, q search.Query[*entity.Vehicle]) (search.Result[*entity.Vehicle], error) {
	return paginate(ctx, r.q, "vehicles", vehicleColumns, &tenantScope{column: "company_id", value: companyID}, q, scanVehicle)
}

// Stats agrega la flota: totales, por marca (mayor conteo primero) y por mes de registro.
func (r *VehicleRepo) Stats(ctx context.Context, companyID string) (*entity.FleetStats, error) {
	stats := &entity.FleetStats{CompanyID: companyID}
	err := r.q.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(mileage), 0) FROM vehicles WHERE company_id = $1`, companyID,
	).Scan(&stats.Total, &stats.TotalMileage)
	if err != nil {
		return nil, fmt.Errorf("fleet totals: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT upper(btrim(brand)) AS b, count(*) AS n
		FROM vehicles WHERE company_id = $1
		GROUP BY b ORDER BY n DESC, b COLLATE "C" ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("fleet by brand: %w", err)
	}
	stats.ByBrand, err = collect(rows, func(s scanner) (entity.BrandCount, error) {
		var bc entity.BrandCount
		err := s.Scan(&bc.Brand, &bc.Count)
		return bc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan fleet by brand: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS m, count(*)
		FROM vehicles WHERE company_id = $1
		GROUP BY m ORDER BY m`, companyID)
	if err != nil {
		return nil, fmt.Errorf("fleet by month: %w", err)
	}
	stats.ByMonth, err = collect(rows, func(s scanner) (entity.MonthCount, error) {
		var mc entity.MonthCount
		err := s.Scan(&mc.Month, &mc.Count)
		return mc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan fleet by month: %w", err)
	}
	return stats, nil
}
