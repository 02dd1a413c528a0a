package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
)

func seed(t *testing.T, repos repository.Repositories) (*entity.Company, *entity.User) {
	t.Helper()
	ctx := context.Background()
	now := entity.Now()
	c := &entity.Company{ID: "c1", Name: "Andina", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Companies.Create(ctx, c))
	u := &entity.User{ID: "u1", Email: "ana@andina.co", Name: "Ana", Role: entity.RoleAdmin, CompanyID: c.ID, Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Create(ctx, u))
	return c, u
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_RunConfirmaAlTerminarSinError(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c, _ := seed(t, store.Repositories())

	err := store.Run(ctx, func(repos repository.Repositories) error {
		return repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "v1", CompanyID: c.ID, Plate: "ABC123", Model: "M", Brand: "B"})
	})
	require.NoError(t, err)

	v, err := store.Repositories().Vehicles.GetByID(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "ABC123", v.Plate)
}

func TestStore_RunDescartaTodoSiFalla(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c, u := seed(t, store.Repositories())
	boom := errors.New("falla a mitad de la transacción")

	err := store.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "v1", CompanyID: c.ID, Plate: "ABC123", Model: "M", Brand: "B"}); err != nil {
			return err
		}
		u.Name = "Cambiado"
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	repos := store.Repositories()
	v, err := repos.Vehicles.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, v)
	got, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestStore_RunConContextoCancelado(t *testing.T) {
	store := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Run(ctx, func(repository.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_LecturasDevuelvenCopias(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	c, _ := seed(t, store.Repositories())

	got, err := store.Repositories().Companies.GetByID(ctx, c.ID)
	require.NoError(t, err)
	got.Name = "Mutada fuera del repo"

	again, err := store.Repositories().Companies.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Andina", again.Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricciones de unicidad e integridad
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_Unicidad(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	repos := store.Repositories()
	c, _ := seed(t, repos)
	now := entity.Now()

	err := repos.Companies.Create(ctx, &entity.Company{ID: "c2", Name: "ANDINA", CreatedAt: now})
	assert.ErrorIs(t, err, domain.ErrConflict, "nombre de empresa sin distinguir mayúsculas")

	err = repos.Users.Create(ctx, &entity.User{ID: "u2", Email: "ANA@andina.co", CompanyID: c.ID, Role: entity.RoleViewer})
	assert.ErrorIs(t, err, domain.ErrConflict, "email sin distinguir mayúsculas")

	err = repos.Users.Create(ctx, &entity.User{ID: "u3", Email: "x@andina.co", CompanyID: "no-existe", Role: entity.RoleViewer})
	assert.ErrorIs(t, err, domain.ErrConflict, "empresa principal inexistente")

	require.NoError(t, repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "v1", CompanyID: c.ID, Plate: "ABC123"}))
	err = repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "v2", CompanyID: c.ID, Plate: "abc123"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_BorrarEmpresaQuitaVinculosSecundarios(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	repos := store.Repositories()
	_, u := seed(t, repos)
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c2", Name: "Sucursal", Active: true}))
	u.AddSecondaryCompany("c2")
	require.NoError(t, repos.Users.Update(ctx, u))

	deps, err := repos.Companies.CountDependents(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, deps.Blocking(), "los vínculos secundarios no bloquean el borrado")

	require.NoError(t, repos.Companies.Delete(ctx, "c2"))
	got, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SecondaryCompanyIDs)
}

func TestStore_BusquedaDeVehiculosAcotadaPorEmpresa(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	repos := store.Repositories()
	c, _ := seed(t, repos)
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c2", Name: "Otra", Active: true}))
	for i, plate := range []string{"AAA111", "BBB222", "CCC333"} {
		require.NoError(t, repos.Vehicles.Create(ctx, &entity.Vehicle{
			ID: plate, CompanyID: c.ID, Plate: plate, Mileage: (i + 1) * 100, CreatedAt: entity.Now(),
		}))
	}
	require.NoError(t, repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "X", CompanyID: "c2", Plate: "AAA111"}))

	res, err := repos.Vehicles.Search(ctx, c.ID, search.VehicleCriteria{
		Plate:   "a",
		Sorting: search.Sorting{SortBy: search.SortMileage, Direction: search.Asc},
	}.Query())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "AAA111", res.Items[0].ID)

	found, err := repos.Vehicles.FindByPlate(ctx, "bbb222")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.ID, found.CompanyID)
}

func TestStore_ContadorDeAdminsActivos(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	repos := store.Repositories()
	c, _ := seed(t, repos)
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u2", Email: "b@andina.co", CompanyID: c.ID, Role: entity.RoleAdmin}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u3", Email: "c@andina.co", CompanyID: c.ID, Role: entity.RoleOperator, Active: true}))

	n, err := repos.Users.CountActiveAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "u2 es ADMIN pero está inactivo")
}
