package http

import (
	"context"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/internal/application/auth"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CompanyUC *usecase.CompanyUseCase
	VehicleUC *usecase.VehicleUseCase
	UserUC    *usecase.UserUseCase
	APIKeyUC  *usecase.APIKeyUseCase
	AuditUC   *usecase.AuditUseCase
	ReportUC  *usecase.ReportUseCase

	Tokens  ports.TokenIssuer
	Blobs   ports.BlobStore
	Limiter *RateLimiter
	Metrics *metrics.Metrics
	Log     zerolog.Logger

	// Health comprueba dependencias externas; nil responde siempre ok.
	Health func(ctx context.Context) error
	// SwaggerSpec contenido de swagger.json; vacío desactiva /docs.
	SwaggerSpec []byte
}

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name        string
	BodyLimitMB int
}

// NewApp crea la aplicación Fiber con middlewares, métricas, docs y rutas.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler(deps.Log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Log, deps.Metrics))

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// Swagger UI: http://localhost:<port>/docs
	if len(deps.SwaggerSpec) > 0 {
		app.Use(swagger.New(swagger.Config{
			BasePath:    "/",
			FileContent: deps.SwaggerSpec,
			Path:        "docs",
			Title:       "Flota API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.UserContext()); err != nil {
				deps.Log.Warn().Err(err).Msg("health: dependencia no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.Name})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	limited := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		limited = deps.Limiter.Handler()
	}

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", limited, authHandler.Register)
	authGroup.Post("/login", limited, authHandler.Login)
	authGroup.Post("/password-reset", limited, authHandler.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", limited, authHandler.RedeemPasswordReset)
	authGroup.Get("/password-reset/:token", authHandler.ValidateResetToken)

	vehicleHandler := NewVehicleHandler(deps.VehicleUC)
	public := api.Group("/public")
	public.Get("/vehicles/plate/:plate", vehicleHandler.PublicGetByPlate)
	public.Get("/vehicles/:id", vehicleHandler.PublicGetByID)

	photoHandler := NewPhotoHandler(deps.Blobs)
	api.Get("/photos/:ref", photoHandler.Get)

	// Rutas protegidas (Bearer Token o X-API-Key)
	var keys APIKeyValidator
	if deps.APIKeyUC != nil {
		keys = deps.APIKeyUC
	}
	protected := api.Group("/", AuthMiddleware(deps.Tokens, keys))

	vehicles := protected.Group("/vehicles")
	vehicles.Get("/", vehicleHandler.ListAll)
	vehicles.Get("/search", vehicleHandler.Search)
	vehicles.Get("/plate/:plate", vehicleHandler.GetByPlate)
	vehicles.Get("/:id", vehicleHandler.GetByID)
	vehicles.Post("/", vehicleHandler.Create)
	vehicles.Put("/:id", vehicleHandler.Update)
	vehicles.Delete("/:id", vehicleHandler.Delete)
	vehicles.Delete("/:id/photos", vehicleHandler.RemovePhoto)

	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies := protected.Group("/companies")
	companies.Get("/", companyHandler.Search)
	companies.Get("/search", companyHandler.Search)
	companies.Get("/mine", companyHandler.ListMine)
	companies.Get("/active", companyHandler.ListActive)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Patch("/:id/activate", companyHandler.Activate)
	companies.Patch("/:id/deactivate", companyHandler.Deactivate)
	companies.Delete("/:id", companyHandler.Delete)

	userHandler := NewUserHandler(deps.UserUC, deps.Blobs)
	users := protected.Group("/users")
	users.Get("/search", userHandler.Search)
	users.Get("/company", userHandler.ListCompany)
	users.Get("/all", userHandler.SearchAll)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Remove)
	users.Patch("/:id/role", userHandler.ChangeRole)
	users.Patch("/:id/activate", userHandler.Activate)
	users.Patch("/:id/deactivate", userHandler.Deactivate)

	profile := protected.Group("/profile")
	profile.Get("/", userHandler.Profile)
	profile.Get("/permissions", userHandler.Permissions)
	profile.Put("/", userHandler.UpdateProfile)
	profile.Put("/email", userHandler.UpdateEmail)
	profile.Put("/password", userHandler.ChangePassword)
	profile.Put("/notifications", userHandler.SetNotifications)
	profile.Get("/photo", userHandler.Photo)
	profile.Post("/photo", userHandler.UploadPhoto)
	profile.Delete("/photo", userHandler.DeletePhoto)

	// Consulta de usuario para integraciones (API key); requiere autenticación.
	protected.Post("/public/users/info", userHandler.Info)

	keyHandler := NewAPIKeyHandler(deps.APIKeyUC)
	apiKeys := protected.Group("/api-keys")
	apiKeys.Get("/", keyHandler.List)
	apiKeys.Post("/", keyHandler.Create)
	apiKeys.Patch("/:id/activate", keyHandler.Activate)
	apiKeys.Patch("/:id/deactivate", keyHandler.Deactivate)
	apiKeys.Delete("/:id", keyHandler.Delete)

	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup := protected.Group("/audit")
	auditGroup.Get("/entity/:kind/:id", auditHandler.ByEntity)
	auditGroup.Get("/company", auditHandler.ByCompany)

	reportHandler := NewReportHandler(deps.ReportUC)
	reports := protected.Group("/reports")
	reports.Get("/fleet", reportHandler.FleetSummary)
	reports.Get("/fleet/pdf", reportHandler.FleetPDF)
}
