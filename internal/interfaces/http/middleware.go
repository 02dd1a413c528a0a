package http

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/pkg/metrics"
)

// Locals keys en Fiber.
const (
	LocalEmail      = "email"
	LocalAuthMethod = "auth_method"
	LocalRequestID  = "requestid"
)

// Cabeceras y parámetros de la API.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderCompanyID = "X-Company-ID"
	QueryCompanyID  = "company_id"
)

// APIKeyValidator lo que el middleware necesita para autenticar con API key.
type APIKeyValidator interface {
	Validate(ctx context.Context, plain string) (string, error)
}

// AuthMiddleware autentica con X-API-Key o con Bearer Token y deja el email en c.Locals.
// El rol y la empresa no se toman del token: los resuelve cada caso de uso.
func AuthMiddleware(tokens ports.TokenIssuer, keys APIKeyValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key := strings.TrimSpace(c.Get(HeaderAPIKey)); key != "" && keys != nil {
			email, err := keys.Validate(c.UserContext(), key)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_API_KEY", Message: "API key inválida o inactiva"})
				}
				return err
			}
			c.Locals(LocalEmail, email)
			c.Locals(LocalAuthMethod, "api_key")
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization o X-API-Key requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		email, err := tokens.Verify(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalEmail, email)
		c.Locals(LocalAuthMethod, "jwt")
		return c.Next()
	}
}

// GetEmail devuelve el email autenticado (después de AuthMiddleware).
func GetEmail(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalEmail).(string)
	return s
}

// companySelection empresa elegida explícitamente: cabecera X-Company-ID o query company_id.
// Solo un ADMIN puede usarla; para el resto el resolver la ignora.
func companySelection(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Get(HeaderCompanyID)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query(QueryCompanyID))
}

func requestID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRequestID).(string)
	return s
}

// RequestLogger registra cada request y alimenta el histograma HTTP. Resuelve el error de la
// cadena aquí mismo para conocer el status final.
func RequestLogger(log zerolog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		m.ObserveHTTPRequest(c.Method(), route, status, latency)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", latency).
			Str("request_id", requestID(c)).
			Msg("request")
		return nil
	}
}

// RateLimiter token bucket por IP (x/time/rate). Las entradas inactivas se barren periódicamente.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter perSecond peticiones sostenidas por IP con ráfagas de burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		visitors: map[string]*visitor{},
		idleTTL:  3 * time.Minute,
		now:      time.Now,
	}
}

// Allow consume un token del bucket de key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > time.Minute {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler middleware Fiber que responde 429 al agotar el bucket.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas solicitudes, intente más tarde",
			})
		}
		return c.Next()
	}
}
