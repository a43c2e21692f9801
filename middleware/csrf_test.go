package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFApp() *fiber.App {
	app := fiber.New()
	app.Use(CSRFProtection())
	app.Get("/form", func(c *fiber.Ctx) error {
		token, _ := c.Locals("csrf").(string)
		return c.SendString(token)
	})
	app.Post("/submit", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func csrfCookie(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/form", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	t.Fatal("no csrf cookie issued")
	return ""
}

func TestCSRFIssuesTokenOnSafeMethod(t *testing.T) {
	token := csrfCookie(t, newCSRFApp())
	assert.NotEmpty(t, token)
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	app := newCSRFApp()

	resp, err := app.Test(httptest.NewRequest("POST", "/submit", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCSRFAcceptsMatchingHeader(t *testing.T) {
	app := newCSRFApp()
	token := csrfCookie(t, app)

	req := httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRF-Token", token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCSRFAcceptsMatchingFormField(t *testing.T) {
	app := newCSRFApp()
	token := csrfCookie(t, app)

	body := strings.NewReader("csrf_token=" + token)
	req := httptest.NewRequest("POST", "/submit", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	app := newCSRFApp()
	token := csrfCookie(t, app)

	req := httptest.NewRequest("POST", "/submit", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRF-Token", "forged")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
