package http_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/dto"
	apphttp "github.com/jhoicas/flota-api/internal/interfaces/http"
)

type vehicleBody struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"company_id"`
	Plate     string   `json:"plate"`
	Mileage   int      `json:"mileage"`
	Price     string   `json:"price"`
	Photos    []string `json:"photos"`
}

type pageBody[T any] struct {
	Items []T `json:"items"`
	Page  struct {
		Page       int `json:"page"`
		Size       int `json:"size"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"page"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo principal
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RegistroLoginYCreacionDeVehiculo(t *testing.T) {
	env := newTestEnv(t, nil)
	_, companyID := env.register(t, "Transportes Andes", "admin@andes.co")
	token := env.login(t, "ADMIN@andes.co", testPassword)

	status, body := env.call(t, http.MethodPost, "/api/vehicles", token, map[string]any{
		"plate": "abc-123", "mileage": 15000, "model": "Hilux", "brand": "Toyota", "price": "98000000.50",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[vehicleBody](t, body)
	assert.Equal(t, companyID, created.CompanyID)
	assert.Equal(t, "ABC-123", created.Plate)
	assert.Equal(t, "98000000.5", created.Price)
	assert.NotNil(t, created.Photos)

	status, body = env.call(t, http.MethodPost, "/api/vehicles", token, map[string]any{
		"plate": "ABC-123", "mileage": 10, "model": "Corolla", "brand": "Toyota",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/vehicles", token, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]vehicleBody](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	status, body = env.call(t, http.MethodGet, "/api/vehicles/plate/abc-123", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, created.ID, decode[vehicleBody](t, body).ID)

	// La consulta pública no requiere token.
	status, _ = env.call(t, http.MethodGet, "/api/public/vehicles/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_LoginConPasswordIncorrectaDevuelve401(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "Flota Norte", "admin@norte.co")

	status, body := env.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@norte.co", "password": "incorrecta-123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))

	// Email inexistente: misma respuesta.
	status, body = env.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nadie@norte.co", "password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
}

func TestAPI_RegistroInvalidoDevuelveErrorDeValidacion(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"company_name": "X", "name": "Y", "email": "no-es-email", "password": "corta",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsqueda
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_BusquedaDeVehiculosPaginaYOrdena(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Rutas del Sur", "admin@sur.co")

	for _, v := range []map[string]any{
		{"plate": "AAA111", "mileage": 30000, "model": "Duster", "brand": "Renault"},
		{"plate": "BBB222", "mileage": 5000, "model": "Logan", "brand": "Renault"},
		{"plate": "CCC333", "mileage": 12000, "model": "Spark", "brand": "Chevrolet"},
	} {
		status, body := env.call(t, http.MethodPost, "/api/vehicles", token, v)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := env.call(t, http.MethodGet,
		"/api/vehicles/search?brand=renault&sort_by=mileage&direction=ASC&page=0&size=1", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	page := decode[pageBody[vehicleBody]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "BBB222", page.Items[0].Plate)
	assert.Equal(t, 2, page.Page.Total)
	assert.Equal(t, 2, page.Page.TotalPages)

	status, body = env.call(t, http.MethodGet, "/api/vehicles/search?min_mileage=10000&max_mileage=20000", token, nil)
	require.Equal(t, http.StatusOK, status)
	page = decode[pageBody[vehicleBody]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "CCC333", page.Items[0].Plate)

	status, body = env.call(t, http.MethodGet, "/api/vehicles/search?min_mileage=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre empresas y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_VehiculoDeOtraEmpresaNoEsAccesible(t *testing.T) {
	env := newTestEnv(t, nil)
	tokenA, _ := env.register(t, "Empresa A", "admin@a.co")
	tokenB, companyB := env.register(t, "Empresa B", "admin@b.co")

	status, body := env.call(t, http.MethodPost, "/api/vehicles", tokenB, map[string]any{
		"plate": "ZZZ999", "mileage": 1, "model": "Sail", "brand": "Chevrolet",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	vehicleB := decode[vehicleBody](t, body)

	// Sin selección explícita, el ADMIN de A opera sobre su propia empresa.
	status, body = env.call(t, http.MethodGet, "/api/vehicles/"+vehicleB.ID, tokenA, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "TENANT_MISMATCH", errorCode(t, body))

	status, _ = env.call(t, http.MethodDelete, "/api/vehicles/"+vehicleB.ID, tokenA, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Con X-Company-ID el ADMIN administra la otra empresa.
	status, _ = env.call(t, http.MethodGet, "/api/vehicles/"+vehicleB.ID, tokenA, nil,
		apphttp.HeaderCompanyID, companyB)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_IDsInvalidosYValoresFueraDeRango(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Rangos", "admin@rangos.co")

	for _, path := range []string{"/api/vehicles/abc", "/api/users/abc", "/api/companies/abc", "/api/public/vehicles/abc"} {
		status, body := env.call(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", errorCode(t, body), path)
	}
	status, body := env.call(t, http.MethodDelete, "/api/api-keys/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/vehicles", token, nil, "X-Company-ID", "abc")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, body = env.call(t, http.MethodPost, "/api/vehicles", token, map[string]any{
		"plate": "RNG001", "mileage": 3000000000, "model": "Kwid", "brand": "Renault",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/vehicles?max_mileage=3000000000", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestAPI_OperadorNoPuedeEliminar(t *testing.T) {
	env := newTestEnv(t, nil)
	adminToken, _ := env.register(t, "Logística Centro", "admin@centro.co")

	status, body := env.call(t, http.MethodPost, "/api/users", adminToken, map[string]string{
		"email": "operador@centro.co", "password": testPassword, "name": "Operador", "role": "OPERATOR",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "OPERADOR", decode[map[string]any](t, body)["role"])

	opToken := env.login(t, "operador@centro.co", testPassword)
	status, body = env.call(t, http.MethodPost, "/api/vehicles", opToken, map[string]any{
		"plate": "OPR001", "mileage": 0, "model": "Kwid", "brand": "Renault",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	id := decode[vehicleBody](t, body).ID

	status, body = env.call(t, http.MethodDelete, "/api/vehicles/"+id, opToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, _ = env.call(t, http.MethodDelete, "/api/vehicles/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAPI_UltimoAdminNoSeDesactivaNiSeDegrada(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Única", "admin@unica.co")

	status, body := env.call(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	selfID := decode[map[string]any](t, body)["id"].(string)

	status, body = env.call(t, http.MethodPatch, "/api/users/"+selfID+"/deactivate", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = env.call(t, http.MethodPatch, "/api/users/"+selfID+"/role", token, map[string]any{"role": "OPERADOR"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ADMIN", decode[map[string]any](t, body)["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AuditoriaRegistraCreacionYActualizacion(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Auditada", "admin@auditada.co")

	status, body := env.call(t, http.MethodPost, "/api/vehicles", token, map[string]any{
		"plate": "AUD001", "mileage": 100, "model": "March", "brand": "Nissan",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	id := decode[vehicleBody](t, body).ID

	status, body = env.call(t, http.MethodPut, "/api/vehicles/"+id, token, map[string]any{
		"plate": "AUD001", "mileage": 250, "model": "March", "brand": "Nissan",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.call(t, http.MethodGet, "/api/audit/entity/vehicle/"+id, token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	entries := decode[[]map[string]any](t, body)
	require.Len(t, entries, 2)
	assert.Equal(t, "UPDATE", entries[0]["action"], "el más reciente primero")
	assert.Equal(t, "CREATE", entries[1]["action"])
	assert.Contains(t, entries[0]["before"], `"mileage":100`)
	assert.Contains(t, entries[0]["after"], `"mileage":250`)

	status, body = env.call(t, http.MethodGet, "/api/audit/entity/camion/"+id, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recuperación de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RecuperacionDeContrasenaDeUnSoloUso(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "Olvidadiza", "admin@olvido.co")

	status, body := env.call(t, http.MethodPost, "/api/auth/password-reset", "", map[string]string{
		"email": "admin@olvido.co",
	})
	require.Equal(t, http.StatusAccepted, status, string(body))
	token := env.mailer.lastToken(t)

	status, body = env.call(t, http.MethodGet, "/api/auth/password-reset/"+token, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]any](t, body)["valid"])

	const nueva = "nueva-clave-2024"
	status, body = env.call(t, http.MethodPost, "/api/auth/password-reset/confirm", "", map[string]string{
		"token": token, "new_password": nueva,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	env.login(t, "admin@olvido.co", nueva)

	// Segundo canje del mismo token.
	status, body = env.call(t, http.MethodPost, "/api/auth/password-reset/confirm", "", map[string]string{
		"token": token, "new_password": "otra-clave-2024",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/auth/password-reset/"+token, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, decode[map[string]any](t, body)["valid"])
}

func TestAPI_InfoDeUsuarioConPermisos(t *testing.T) {
	env := newTestEnv(t, nil)
	adminToken, _ := env.register(t, "Consultas", "admin@consultas.co")
	status, body := env.call(t, http.MethodPost, "/api/users", adminToken, map[string]any{
		"email": "visor@consultas.co", "password": testPassword, "name": "Visor", "role": "VISUALIZADOR",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = env.call(t, http.MethodPost, "/api/api-keys", adminToken, map[string]string{"name": "n8n"})
	require.Equal(t, http.StatusCreated, status, string(body))
	plain := decode[map[string]any](t, body)["plain_key"].(string)

	// Con API key y sin cuerpo: el propio usuario.
	status, body = env.call(t, http.MethodPost, "/api/public/users/info", "", nil, apphttp.HeaderAPIKey, plain)
	require.Equal(t, http.StatusOK, status, string(body))
	self := decode[dto.UserInfoResponse](t, body)
	assert.Equal(t, "admin@consultas.co", self.Email)
	assert.True(t, self.Permissions.IsAdmin)
	assert.True(t, self.Permissions.CanManageCompanies)

	// Un ADMIN consulta a otro usuario.
	status, body = env.call(t, http.MethodPost, "/api/public/users/info", "", map[string]string{"email": "VISOR@consultas.co"},
		apphttp.HeaderAPIKey, plain)
	require.Equal(t, http.StatusOK, status, string(body))
	other := decode[dto.UserInfoResponse](t, body)
	assert.Equal(t, "visor@consultas.co", other.Email)
	assert.Equal(t, dto.PermissionsResponse{}, other.Permissions)

	status, _ = env.call(t, http.MethodPost, "/api/public/users/info", adminToken, map[string]string{"email": "nadie@consultas.co"})
	assert.Equal(t, http.StatusNotFound, status)

	// Un no-ADMIN solo se consulta a sí mismo.
	visorToken := env.login(t, "visor@consultas.co", testPassword)
	status, body = env.call(t, http.MethodPost, "/api/public/users/info", visorToken, map[string]string{"email": "admin@consultas.co"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, body = env.call(t, http.MethodGet, "/api/profile/permissions", visorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[dto.UserInfoResponse](t, body).Permissions.CanCreate)

	status, _ = env.call(t, http.MethodPost, "/api/public/users/info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ListadosDeUsuariosPorEmpresaYGlobal(t *testing.T) {
	env := newTestEnv(t, nil)
	adminToken, _ := env.register(t, "Norte", "admin@norte.co")
	env.register(t, "Sur", "admin@sur.co")
	status, body := env.call(t, http.MethodPost, "/api/users", adminToken, map[string]any{
		"email": "op@norte.co", "password": testPassword, "name": "Operador", "role": "OPERADOR",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	opToken := env.login(t, "op@norte.co", testPassword)

	// Cualquier rol lista los usuarios de su empresa.
	status, body = env.call(t, http.MethodGet, "/api/users/company?sort_by=email&direction=ASC", opToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	mine := decode[dto.UserListResponse](t, body)
	require.Len(t, mine.Items, 2)
	assert.Equal(t, "admin@norte.co", mine.Items[0].Email)
	assert.Equal(t, "op@norte.co", mine.Items[1].Email)

	// La búsqueda administrativa sigue exigiendo permisos.
	status, _ = env.call(t, http.MethodGet, "/api/users/search", opToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.call(t, http.MethodGet, "/api/users/all", opToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.call(t, http.MethodGet, "/api/users/all?role=ADMIN&sort_by=email&direction=ASC", adminToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	all := decode[dto.UserListResponse](t, body)
	require.Equal(t, 2, all.Page.Total)
	assert.Equal(t, "admin@norte.co", all.Items[0].Email)
	assert.Equal(t, "admin@sur.co", all.Items[1].Email)
}

// ──────────────────────────────────────────────────────────────────────────────
// API keys
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_APIKeyAutenticaYSeRevoca(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Integraciones", "admin@integra.co")

	status, body := env.call(t, http.MethodPost, "/api/api-keys", token, map[string]string{"name": "erp"})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[map[string]any](t, body)
	plain := created["plain_key"].(string)
	keyID := created["id"].(string)
	assert.Equal(t, "..."+plain[len(plain)-8:], created["key"])

	status, _ = env.call(t, http.MethodGet, "/api/vehicles", "", nil, apphttp.HeaderAPIKey, plain)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.call(t, http.MethodGet, "/api/api-keys", token, nil)
	require.Equal(t, http.StatusOK, status)
	keys := decode[[]map[string]any](t, body)
	require.Len(t, keys, 1)
	assert.EqualValues(t, 1, keys[0]["usage_count"])
	assert.NotContains(t, string(body), plain)

	status, _ = env.call(t, http.MethodPatch, "/api/api-keys/"+keyID+"/deactivate", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.call(t, http.MethodGet, "/api/vehicles", "", nil, apphttp.HeaderAPIKey, plain)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_API_KEY", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fotos y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_VehiculoMultipartConFotos(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Con Fotos", "admin@fotos.co")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("vehicle", `{"plate":"FOT001","mileage":10,"model":"Onix","brand":"Chevrolet"}`))
	part, err := w.CreateFormFile("photos", "frente.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	created := decode[vehicleBody](t, raw)
	require.Len(t, created.Photos, 1)

	status, body := env.call(t, http.MethodGet, "/api/photos/"+created.Photos[0], "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jpeg-bytes", string(body))

	status, body = env.call(t, http.MethodDelete, "/api/vehicles/"+created.ID+"/photos?ref="+created.Photos[0], token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Empty(t, decode[vehicleBody](t, body).Photos)

	status, _ = env.call(t, http.MethodGet, "/api/photos/"+created.Photos[0], "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ReporteDeFlotaEnPDF(t *testing.T) {
	env := newTestEnv(t, nil)
	token, _ := env.register(t, "Reportes", "admin@reportes.co")
	status, _ := env.call(t, http.MethodPost, "/api/vehicles", token, map[string]any{
		"plate": "REP001", "mileage": 1200, "model": "Sandero", "brand": "Renault",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.call(t, http.MethodGet, "/api/reports/fleet", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	summary := decode[map[string]any](t, body)
	assert.EqualValues(t, 1, summary["total"])
	assert.EqualValues(t, 1200, summary["total_mileage"])

	req := httptest.NewRequest(http.MethodGet, "/api/reports/fleet/pdf", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_HealthYMetricas(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.call(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode[map[string]any](t, body)["status"])

	status, body = env.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "flota_http_request_duration_seconds")
}

func TestAPI_LimiteDeTasaEnLogin(t *testing.T) {
	env := newTestEnv(t, apphttp.NewRateLimiter(0.001, 2))
	creds := map[string]string{"email": "x@y.co", "password": "cualquiera"}

	for i := 0; i < 2; i++ {
		status, _ := env.call(t, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, body := env.call(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, body))
}
