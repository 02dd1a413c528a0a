package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/flota-api/docs"
	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/auth"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/infrastructure/email"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/flota-api/internal/infrastructure/pdf"
	"github.com/jhoicas/flota-api/internal/infrastructure/postgres"
	"github.com/jhoicas/flota-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/flota-api/internal/infrastructure/security"
	"github.com/jhoicas/flota-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/flota-api/internal/interfaces/http"
	"github.com/jhoicas/flota-api/pkg/config"
	pkgjwt "github.com/jhoicas/flota-api/pkg/jwt"
	"github.com/jhoicas/flota-api/pkg/logger"
	"github.com/jhoicas/flota-api/pkg/metrics"
)

// @title        Flota API
// @version      1.0
// @description  Back office multiempresa de vehículos, usuarios y empresas.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	m := metrics.New()

	// Persistencia: PostgreSQL en despliegue, memoria para demos y desarrollo local.
	var (
		repos  repository.Repositories
		tx     repository.TxRunner
		health func(context.Context) error
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store := memory.New()
		repos, tx = store.Repositories(), store
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		repos, tx = postgres.NewRepositories(pool), postgres.NewTxRunner(pool)
		health = pool.Ping
	}

	blobs, err := storage.NewDiskStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.Dir).Msg("blob store")
	}
	mailer := email.New(cfg.SMTP, log.Component("email"))
	hasher := security.NewBcryptHasher(0)
	tokens := pkgjwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	resolver := access.NewResolver(repos.Users, repos.Companies)
	recorder := audit.NewRecorder(repos.Audit, log.Component("audit"), m.AuditFailures)

	authUC := auth.NewAuthUseCase(tx, repos, hasher, tokens, mailer, recorder,
		auth.ResetConfig{BaseURL: cfg.Reset.BaseURL, AppName: cfg.App.Name},
		m.AuthFailures, log.Component("auth"))
	companyUC := usecase.NewCompanyUseCase(tx, repos.Companies, resolver, recorder)
	vehicleUC := usecase.NewVehicleUseCase(tx, repos.Vehicles, resolver, recorder, blobs, mailer, log.Component("vehicles"))
	userUC := usecase.NewUserUseCase(tx, repos.Users, resolver, recorder, hasher, tokens, blobs, log.Component("users"))
	apiKeyUC := usecase.NewAPIKeyUseCase(repos.APIKeys, repos.Users, repos.Companies, resolver, m.APIKeyValidations)
	auditUC := usecase.NewAuditUseCase(repos.Audit, resolver)
	reportUC := usecase.NewReportUseCase(repos.Vehicles, repos.Companies, resolver, infrapdf.NewMarotoFleetReport())

	jobs := scheduler.New(log.Component("scheduler"), m.Jobs)
	if err := jobs.SchedulePurge(cfg.Scheduler.PurgeSpec, authUC, m.PurgedResetTokens); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Scheduler.PurgeSpec).Msg("programar limpieza de tokens")
	}
	jobs.Start()

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		BodyLimitMB: cfg.HTTP.BodyLimitMB,
	}, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		VehicleUC:   vehicleUC,
		UserUC:      userUC,
		APIKeyUC:    apiKeyUC,
		AuditUC:     auditUC,
		ReportUC:    reportUC,
		Tokens:      tokens,
		Blobs:       blobs,
		Limiter:     httpRouter.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
		Metrics:     m,
		Log:         log.Component("http"),
		Health:      health,
		SwaggerSpec: []byte(docs.SwaggerInfo.ReadDoc()),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	jobs.Stop(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}
