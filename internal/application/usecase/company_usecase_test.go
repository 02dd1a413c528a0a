package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

func TestCompanyUseCase_CrearAgregaEmpresaSecundariaAlCreador(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	admin := f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)

	out, err := f.companies.Create(f.ctx, admin.Email, dto.CompanyRequest{Name: "  Sucursal Norte ", TaxID: "900123"})
	require.NoError(t, err)
	assert.Equal(t, "Sucursal Norte", out.Name)
	assert.True(t, out.Active)

	mine, err := f.companies.ListMine(f.ctx, admin.Email)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	u, err := f.repos.Users.GetByID(f.ctx, admin.ID)
	require.NoError(t, err)
	assert.Contains(t, u.SecondaryCompanyIDs, out.ID)
}

func TestCompanyUseCase_NombreDuplicadoSinDistinguirMayusculas(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Transportes Andinos")
	f.user(t, "admin@andinos.co", entity.RoleAdmin, home.ID)

	_, err := f.companies.Create(f.ctx, "admin@andinos.co", dto.CompanyRequest{Name: "TRANSPORTES andinos"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	other, err := f.companies.Create(f.ctx, "admin@andinos.co", dto.CompanyRequest{Name: "Otra"})
	require.NoError(t, err)
	_, err = f.companies.Update(f.ctx, "admin@andinos.co", other.ID, dto.CompanyRequest{Name: "transportes ANDINOS"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Cambiar solo mayúsculas del propio nombre es válido.
	out, err := f.companies.Update(f.ctx, "admin@andinos.co", other.ID, dto.CompanyRequest{Name: "OTRA"})
	require.NoError(t, err)
	assert.Equal(t, "OTRA", out.Name)
}

func TestCompanyUseCase_BorrarConDependientesEsConflicto(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)

	err := f.companies.Delete(f.ctx, "admin@matriz.co", home.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "0 vehículo(s) y 1 usuario(s)")
}

func TestCompanyUseCase_BorrarBloqueadoPorVehiculosHastaQuitarDependientes(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)
	sucursal, err := f.companies.Create(f.ctx, "admin@matriz.co", dto.CompanyRequest{Name: "Sucursal"})
	require.NoError(t, err)

	var ids []string
	for _, plate := range []string{"SUC001", "SUC002"} {
		v, err := f.vehicles.Create(f.ctx, "admin@matriz.co", sucursal.ID,
			dto.VehicleRequest{Plate: plate, Model: "Hilux", Brand: "Toyota"}, nil)
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	f.user(t, "op@sucursal.co", entity.RoleOperator, sucursal.ID)

	err = f.companies.Delete(f.ctx, "admin@matriz.co", sucursal.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "2 vehículo(s) y 1 usuario(s)")

	op, err := f.repos.Users.GetByEmail(f.ctx, "op@sucursal.co")
	require.NoError(t, err)
	require.NoError(t, f.users.Remove(f.ctx, "admin@matriz.co", sucursal.ID, op.ID))

	// Un solo vehículo ya bloquea el borrado.
	require.NoError(t, f.vehicles.Delete(f.ctx, "admin@matriz.co", sucursal.ID, ids[0]))
	err = f.companies.Delete(f.ctx, "admin@matriz.co", sucursal.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "1 vehículo(s) y 0 usuario(s)")

	require.NoError(t, f.vehicles.Delete(f.ctx, "admin@matriz.co", sucursal.ID, ids[1]))
	require.NoError(t, f.companies.Delete(f.ctx, "admin@matriz.co", sucursal.ID))
	_, err = f.companies.GetByID(f.ctx, "admin@matriz.co", sucursal.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyUseCase_DesactivarSiemprePermitidoYBloqueaASusUsuarios(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)
	central := f.company(t, "Central")
	f.user(t, "admin@central.co", entity.RoleAdmin, central.ID)

	// La baja lógica está permitida aunque la empresa tenga usuarios.
	out, err := f.companies.Deactivate(f.ctx, "admin@matriz.co", home.ID)
	require.NoError(t, err)
	assert.False(t, out.Active)

	_, err = f.companies.ListMine(f.ctx, "admin@matriz.co")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err = f.companies.Activate(f.ctx, "admin@central.co", home.ID)
	require.NoError(t, err)
	assert.True(t, out.Active)

	_, err = f.companies.ListMine(f.ctx, "admin@matriz.co")
	require.NoError(t, err)
}

func TestCompanyUseCase_BorrarEmpresaVacia(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)

	created, err := f.companies.Create(f.ctx, "admin@matriz.co", dto.CompanyRequest{Name: "Temporal"})
	require.NoError(t, err)

	require.NoError(t, f.companies.Delete(f.ctx, "admin@matriz.co", created.ID))
	_, err = f.companies.GetByID(f.ctx, "admin@matriz.co", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.companies.Delete(f.ctx, "admin@matriz.co", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyUseCase_SoloAdminAdministraEmpresas(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	other := f.company(t, "Ajena")
	f.user(t, "op@matriz.co", entity.RoleOperator, home.ID)

	_, err := f.companies.Create(f.ctx, "op@matriz.co", dto.CompanyRequest{Name: "Nueva"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.companies.Search(f.ctx, "op@matriz.co", search.CompanyCriteria{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.companies.Deactivate(f.ctx, "op@matriz.co", home.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Lectura: su propia empresa sí, una ajena no.
	_, err = f.companies.GetByID(f.ctx, "op@matriz.co", home.ID)
	require.NoError(t, err)
	_, err = f.companies.GetByID(f.ctx, "op@matriz.co", other.ID)
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
}

func TestCompanyUseCase_ListarActivas(t *testing.T) {
	f := newFixture(t)
	home := f.company(t, "Matriz")
	f.user(t, "admin@matriz.co", entity.RoleAdmin, home.ID)
	apagada := f.company(t, "Apagada")
	_, err := f.companies.Deactivate(f.ctx, "admin@matriz.co", apagada.ID)
	require.NoError(t, err)

	list, err := f.companies.ListActive(f.ctx, "admin@matriz.co")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, home.ID, list[0].ID)

	active := false
	res, err := f.companies.Search(f.ctx, "admin@matriz.co", search.CompanyCriteria{Active: &active})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Apagada", res.Items[0].Name)
}
