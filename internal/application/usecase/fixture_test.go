package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-api/internal/infrastructure/pdf"
	"github.com/jhoicas/flota-api/internal/infrastructure/security"
	"github.com/jhoicas/flota-api/internal/infrastructure/storage"
	pkgjwt "github.com/jhoicas/flota-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: casos de uso sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const testPassword = "secreto-seguro-1"

type fixture struct {
	ctx    context.Context
	repos  repository.Repositories
	hasher *security.BcryptHasher
	blobs  *storage.FileStore
	tokens *pkgjwt.Issuer

	vehicles  *usecase.VehicleUseCase
	companies *usecase.CompanyUseCase
	users     *usecase.UserUseCase
	keys      *usecase.APIKeyUseCase
	audit     *usecase.AuditUseCase
	reports   *usecase.ReportUseCase

	validations *prometheus.CounterVec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()
	repos := store.Repositories()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	blobs := storage.NewFileStore(afero.NewMemMapFs())
	tokens := pkgjwt.NewIssuer("secreto-de-prueba", "flota-test", 60)
	resolver := access.NewResolver(repos.Users, repos.Companies)
	recorder := audit.NewRecorder(repos.Audit, log, nil)
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_validations_total"}, []string{"result"})

	return &fixture{
		ctx:         context.Background(),
		repos:       repos,
		hasher:      hasher,
		blobs:       blobs,
		tokens:      tokens,
		vehicles:    usecase.NewVehicleUseCase(store, repos.Vehicles, resolver, recorder, blobs, nil, log),
		companies:   usecase.NewCompanyUseCase(store, repos.Companies, resolver, recorder),
		users:       usecase.NewUserUseCase(store, repos.Users, resolver, recorder, hasher, tokens, blobs, log),
		keys:        usecase.NewAPIKeyUseCase(repos.APIKeys, repos.Users, repos.Companies, resolver, validations),
		audit:       usecase.NewAuditUseCase(repos.Audit, resolver),
		reports:     usecase.NewReportUseCase(repos.Vehicles, repos.Companies, resolver, pdf.NewMarotoFleetReport()),
		validations: validations,
	}
}

// company crea una empresa activa directamente en el repositorio.
func (f *fixture) company(t *testing.T, name string) *entity.Company {
	t.Helper()
	now := entity.Now()
	c := &entity.Company{ID: uuid.New().String(), Name: name, Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.repos.Companies.Create(f.ctx, c))
	return c
}

// user crea un usuario activo con testPassword.
func (f *fixture) user(t *testing.T, email string, role entity.Role, companyID string) *entity.User {
	t.Helper()
	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)
	now := entity.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Usuario " + email,
		Role:         role,
		CompanyID:    companyID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.repos.Users.Create(f.ctx, u))
	return u
}
