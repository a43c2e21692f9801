package middleware

import (
	"crypto/subtle"

	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// CSRFConfig holds CSRF protection configuration
type CSRFConfig struct {
	TokenLength  int
	CookieName   string
	HeaderName   string
	FormField    string
	ContextKey   string
	CookieMaxAge int
	Skipper      func(*fiber.Ctx) bool
}

// DefaultCSRFConfig returns default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		TokenLength:  32,
		CookieName:   "csrf_token",
		HeaderName:   "X-CSRF-Token",
		FormField:    "csrf_token",
		ContextKey:   "csrf",
		CookieMaxAge: 3600, // 1 hour
		Skipper:      nil,
	}
}

// CSRFProtection creates CSRF protection middleware using double-submit
// cookies. Form posts may carry the token in a form field, API calls in
// the header.
func CSRFProtection(config ...CSRFConfig) fiber.Handler {
	cfg := DefaultCSRFConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		// Skip if skipper function returns true
		if cfg.Skipper != nil && cfg.Skipper(c) {
			return c.Next()
		}

		// Safe methods get a fresh token instead of a check
		if c.Method() == fiber.MethodGet ||
			c.Method() == fiber.MethodHead ||
			c.Method() == fiber.MethodOptions {
			GenerateCSRFToken(c, cfg)
			return c.Next()
		}

		cookieToken := c.Cookies(cfg.CookieName)

		sentToken := c.Get(cfg.HeaderName)
		if sentToken == "" {
			sentToken = c.FormValue(cfg.FormField)
		}

		if cookieToken == "" || sentToken == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "CSRF token missing",
			})
		}

		if !tokensEqual(cookieToken, sentToken) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "CSRF token mismatch",
			})
		}

		return c.Next()
	}
}

// GenerateCSRFToken generates a new CSRF token and sets it in a cookie
func GenerateCSRFToken(c *fiber.Ctx, config ...CSRFConfig) string {
	cfg := DefaultCSRFConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	// Reuse a still-valid token so parallel tabs agree
	if existing := c.Cookies(cfg.CookieName); existing != "" {
		c.Locals(cfg.ContextKey, existing)
		return existing
	}

	token, err := utils.GenerateSecureToken(cfg.TokenLength)
	if err != nil {
		utils.Log.Error("Failed to generate CSRF token: %v", err)
		return ""
	}

	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		MaxAge:   cfg.CookieMaxAge,
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   false, // Set to true in production with HTTPS
	})

	c.Locals(cfg.ContextKey, token)

	return token
}

// tokensEqual performs constant-time comparison of tokens
func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
