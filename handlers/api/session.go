package api

import (
	"strings"
	"time"

	"everlove/config"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a signed JWT for API clients.
func GenerateToken(userID, email, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a JWT and returns the user id it was issued for.
func ParseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// SessionMiddleware resolves the current user from the cookie session or,
// for API clients, from a Bearer token. Requests without a valid identity
// are refused before any storage call happens.
func SessionMiddleware(store *session.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Cookie session first
		sess, err := store.Get(c)
		if err == nil {
			if userID, ok := sess.Get("userId").(string); ok && userID != "" {
				c.Locals("userId", userID)
				if name, ok := sess.Get("displayName").(string); ok {
					c.Locals("displayName", name)
				}
				return c.Next()
			}
		}

		// Bearer token fallback
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			userID, err := ParseToken(strings.TrimPrefix(auth, "Bearer "), cfg.Auth.JWTSecret)
			if err == nil && userID != "" {
				c.Locals("userId", userID)
				return c.Next()
			}
			utils.Log.Debug("Rejected bearer token: %v", err)
		}

		if isAPIRequest(c) {
			return utils.UnauthorizedError("Please sign in first", nil)
		}
		return c.Redirect("/login")
	}
}

// CurrentUserID returns the authenticated user id set by SessionMiddleware.
func CurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("userId").(string)
	return userID
}

// CurrentDisplayName returns the display name, falling back to empty.
func CurrentDisplayName(c *fiber.Ctx) string {
	name, _ := c.Locals("displayName").(string)
	return name
}

// isAPIRequest reports whether the request expects a JSON response.
func isAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	path := c.Path()
	return len(path) >= 4 && path[:4] == "/api"
}
