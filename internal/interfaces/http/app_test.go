package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/flota-api/internal/application/access"
	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/application/auth"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-api/internal/infrastructure/pdf"
	"github.com/jhoicas/flota-api/internal/infrastructure/security"
	"github.com/jhoicas/flota-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/flota-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/flota-api/pkg/jwt"
	"github.com/jhoicas/flota-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "flota-api-test"
	testPassword  = "secreto-seguro-1"
)

// capturingMailer guarda los correos enviados para leer los tokens de recuperación.
type capturingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *capturingMailer) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

var tokenInBody = regexp.MustCompile(`token=([0-9a-f-]{36})`)

func (m *capturingMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "debe haberse enviado un correo")
	match := tokenInBody.FindStringSubmatch(m.sent[len(m.sent)-1])
	require.Len(t, match, 2, "el correo debe incluir el token")
	return match[1]
}

type testEnv struct {
	app     *fiber.App
	mailer  *capturingMailer
	metrics *metrics.Metrics
}

// newTestEnv arma la API completa sobre el almacén en memoria y un filesystem en memoria.
func newTestEnv(t *testing.T, limiter *apphttp.RateLimiter) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()
	repos := store.Repositories()
	m := metrics.New()
	mailer := &capturingMailer{}
	blobs := storage.NewFileStore(afero.NewMemMapFs())
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens := pkgjwt.NewIssuer(testJWTSecret, testIssuer, 60)

	resolver := access.NewResolver(repos.Users, repos.Companies)
	recorder := audit.NewRecorder(repos.Audit, log, m.AuditFailures)

	authUC := auth.NewAuthUseCase(store, repos, hasher, tokens, mailer, recorder,
		auth.ResetConfig{BaseURL: "https://flota.test/reset", AppName: "Flota"}, m.AuthFailures, log)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "flota-test"}, apphttp.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: usecase.NewCompanyUseCase(store, repos.Companies, resolver, recorder),
		VehicleUC: usecase.NewVehicleUseCase(store, repos.Vehicles, resolver, recorder, blobs, mailer, log),
		UserUC:    usecase.NewUserUseCase(store, repos.Users, resolver, recorder, hasher, tokens, blobs, log),
		APIKeyUC:  usecase.NewAPIKeyUseCase(repos.APIKeys, repos.Users, repos.Companies, resolver, m.APIKeyValidations),
		AuditUC:   usecase.NewAuditUseCase(repos.Audit, resolver),
		ReportUC:  usecase.NewReportUseCase(repos.Vehicles, repos.Companies, resolver, pdf.NewMarotoFleetReport()),
		Tokens:    tokens,
		Blobs:     blobs,
		Limiter:   limiter,
		Metrics:   m,
		Log:       log,
	})
	return &testEnv{app: app, mailer: mailer, metrics: m}
}

// call ejecuta una petición JSON y devuelve status y cuerpo.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// errorCode extrae el campo code de una respuesta de error.
func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[map[string]any](t, raw)["code"].(string)
}

// register da de alta una empresa con su ADMIN y devuelve el token de sesión.
func (e *testEnv) register(t *testing.T, company, email string) (token, companyID string) {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"company_name": company,
		"name":         "Admin " + company,
		"email":        email,
		"password":     testPassword,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	out := decode[struct {
		Token string `json:"token"`
		User  struct {
			CompanyID string `json:"company_id"`
		} `json:"user"`
	}](t, body)
	return out.Token, out.User.CompanyID
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	return decode[map[string]any](t, body)["token"].(string)
}
