package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
)

type world struct {
	ctx      context.Context
	repos    repository.Repositories
	resolver *access.Resolver
	home     *entity.Company
	other    *entity.Company
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	repos := memory.New().Repositories()
	home := &entity.Company{ID: "home", Name: "Casa", Active: true}
	other := &entity.Company{ID: "other", Name: "Ajena", Active: true}
	require.NoError(t, repos.Companies.Create(ctx, home))
	require.NoError(t, repos.Companies.Create(ctx, other))
	for _, u := range []*entity.User{
		{ID: "a", Email: "admin@casa.co", Role: entity.RoleAdmin, CompanyID: home.ID, Active: true},
		{ID: "o", Email: "op@casa.co", Role: entity.RoleOperator, CompanyID: home.ID, Active: true},
		{ID: "i", Email: "baja@casa.co", Role: entity.RoleAdmin, CompanyID: home.ID, Active: false},
	} {
		require.NoError(t, repos.Users.Create(ctx, u))
	}
	return &world{ctx: ctx, repos: repos, resolver: access.NewResolver(repos.Users, repos.Companies), home: home, other: other}
}

func TestResolver_EmpresaPrincipalPorDefecto(t *testing.T) {
	w := newWorld(t)
	actor, err := w.resolver.Resolve(w.ctx, "op@casa.co", "")
	require.NoError(t, err)
	assert.Equal(t, w.home.ID, actor.CompanyID)
	assert.True(t, actor.Caps.CanCreate)
	assert.False(t, actor.Caps.CanDelete)
}

func TestResolver_SeleccionExplicitaSoloParaAdmin(t *testing.T) {
	w := newWorld(t)

	actor, err := w.resolver.Resolve(w.ctx, "admin@casa.co", w.other.ID)
	require.NoError(t, err)
	assert.Equal(t, w.other.ID, actor.CompanyID)

	actor, err = w.resolver.Resolve(w.ctx, "op@casa.co", w.other.ID)
	require.NoError(t, err)
	assert.Equal(t, w.home.ID, actor.CompanyID, "la selección de un no-ADMIN se ignora")

	_, err = w.resolver.Resolve(w.ctx, "admin@casa.co", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolver_UsuarioInexistenteOInactivo(t *testing.T) {
	w := newWorld(t)

	_, err := w.resolver.Resolve(w.ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = w.resolver.Resolve(w.ctx, "nadie@casa.co", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = w.resolver.Resolve(w.ctx, "baja@casa.co", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResolver_EmpresaPrincipalInactivaNoOpera(t *testing.T) {
	w := newWorld(t)
	w.home.Active = false
	require.NoError(t, w.repos.Companies.Update(w.ctx, w.home))

	_, err := w.resolver.Resolve(w.ctx, "op@casa.co", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	// Tampoco un ADMIN, aunque seleccione otra empresa activa.
	_, err = w.resolver.Resolve(w.ctx, "admin@casa.co", w.other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	w.home.Active = true
	require.NoError(t, w.repos.Companies.Update(w.ctx, w.home))
	_, err = w.resolver.Resolve(w.ctx, "op@casa.co", "")
	require.NoError(t, err)
}

func TestActor_RequireYMismoTenant(t *testing.T) {
	w := newWorld(t)
	actor, err := w.resolver.Resolve(w.ctx, "op@casa.co", "")
	require.NoError(t, err)

	assert.NoError(t, actor.Require(access.Create, access.Edit))
	assert.ErrorIs(t, actor.Require(access.Create, access.Delete), domain.ErrForbidden)
	assert.ErrorIs(t, actor.Require(access.ManageUsers), domain.ErrForbidden)

	assert.NoError(t, actor.EnsureSameTenant(w.home.ID))
	assert.ErrorIs(t, actor.EnsureSameTenant(w.other.ID), domain.ErrTenantMismatch)
}
