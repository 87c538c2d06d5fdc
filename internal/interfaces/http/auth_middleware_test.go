package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	apphttp "github.com/jhoicas/heladeria/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/heladeria/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "ana@heladeria.test"
	testIssuer    = "heladeria-test"
	testExpMin    = 60
)

// fixedRoles resuelve siempre el mismo rol, sin tocar el almacén.
type fixedRoles entity.Role

func (f fixedRoles) ResolveRole(_ context.Context, userID, name string) usecase.Resolution {
	return usecase.Resolution{User: entity.User{ID: userID, Name: name, Role: entity.Role(f)}}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RoleMiddleware con un rol fijo
//   - RequireScreen para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(role entity.Role, screen views.Screen) *fiber.App {
	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RoleMiddleware(fixedRoles(role), nil),
		apphttp.RequireScreen(screen),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"role":    apphttp.GetRole(c),
				"user_id": apphttp.GetUserID(c),
				"email":   apphttp.GetEmail(c),
			})
		},
	)
	return app
}

// bearer genera un JWT válido para el usuario de prueba.
func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out), "body: %s", b)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeaderDevuelve401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, views.ScreenIngredients)

	resp := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeBody(t, resp)["code"])
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, views.ScreenIngredients)

	resp := doRequest(t, app, "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeBody(t, resp)["code"])
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, views.ScreenIngredients)
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "un token firmado con otro secreto no es válido")
	assert.Equal(t, "INVALID_TOKEN", decodeBody(t, resp)["code"])
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, views.ScreenIngredients)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, -5)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_CargaLocals(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, views.ScreenIngredients)

	resp := doRequest(t, app, bearer(t))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testEmail, body["email"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireScreen
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireScreen_PorRol(t *testing.T) {
	cases := []struct {
		name   string
		role   entity.Role
		screen views.Screen
		want   int
	}{
		{"admin accede a usuarios", entity.RoleAdmin, views.ScreenUsers, fiber.StatusOK},
		{"admin accede a rentabilidad", entity.RoleAdmin, views.ScreenProfitability, fiber.StatusOK},
		{"empleado accede a ingredientes", entity.RoleEmployee, views.ScreenIngredients, fiber.StatusOK},
		{"empleado no accede a usuarios", entity.RoleEmployee, views.ScreenUsers, fiber.StatusForbidden},
		{"cliente accede a productos", entity.RoleCustomer, views.ScreenProducts, fiber.StatusOK},
		{"cliente no accede a ingredientes", entity.RoleCustomer, views.ScreenIngredients, fiber.StatusForbidden},
		{"rol desconocido solo productos", entity.RoleUnrecognized, views.ScreenCreateUser, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildTestApp(tc.role, tc.screen)
			resp := doRequest(t, app, bearer(t))
			assert.Equal(t, tc.want, resp.StatusCode)
			if tc.want == fiber.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeBody(t, resp)["code"])
			}
		})
	}
}

func TestRequireScreen_VisitanteSinSesion(t *testing.T) {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/products", apphttp.OptionalAuth(testJWTSecret), apphttp.RequireScreen(views.ScreenProducts), ok)
	app.Get("/ingredients", apphttp.OptionalAuth(testJWTSecret), apphttp.RequireScreen(views.ScreenIngredients), ok)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "el catálogo es público")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ingredients", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "sin sesión la respuesta es 401, no 403")
}
