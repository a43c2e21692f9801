package web

import (
	"strings"

	"everlove/config"
	"everlove/handlers/api"
	"everlove/models"
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler serves the login/register pages and manages the session.
type AuthHandler struct {
	store       *session.Store
	config      *config.Config
	userStorage *storage.UserStorage
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(store *session.Store, config *config.Config, userStorage *storage.UserStorage) *AuthHandler {
	return &AuthHandler{
		store:       store,
		config:      config,
		userStorage: userStorage,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if userID, ok := sess.Get("userId").(string); ok && userID != "" {
			return c.Redirect("/inbox")
		}
	}
	return c.Render("login", fiber.Map{
		"CSRFToken":     c.Locals("csrf"),
		"AllowRegister": h.config.Auth.AllowRegister,
	})
}

// HandleLogin processes the login form
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Status(500).SendString("Session error")
	}

	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if email == "" || password == "" {
		return c.Status(400).Render("login", fiber.Map{
			"Error":     "Email and password are required",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	user, err := h.userStorage.GetUserByEmail(email)
	if err != nil {
		return c.Status(401).Render("login", fiber.Map{
			"Error":     "Invalid email or password",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	if err := h.userStorage.VerifyPassword(user.ID, password); err != nil {
		return c.Status(401).Render("login", fiber.Map{
			"Error":     "Invalid email or password",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	token, err := api.GenerateToken(user.ID, user.Email, h.config.Auth.JWTSecret, h.config.SessionTTL())
	if err != nil {
		return c.Status(500).Render("login", fiber.Map{
			"Error":     "Failed to create authentication token",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	if err := h.userStorage.UpdateLastLogin(user.ID); err != nil {
		utils.Log.Warn("Failed to update last login for %s: %v", user.ID, err)
	}

	sess.Set("userId", user.ID)
	sess.Set("email", user.Email)
	sess.Set("displayName", user.DisplayName)
	sess.Set("token", token)
	sess.SetExpiry(h.config.SessionTTL())

	if err := sess.Save(); err != nil {
		return c.Status(500).Render("login", fiber.Map{
			"Error":     "Failed to create session",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	utils.Log.Info("User logged in: %s", user.ID)

	return c.Redirect("/inbox")
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	if !h.config.Auth.AllowRegister {
		return c.Redirect("/login")
	}
	return c.Render("register", fiber.Map{
		"CSRFToken": c.Locals("csrf"),
	})
}

// HandleRegister processes the registration form
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	if !h.config.Auth.AllowRegister {
		return utils.ForbiddenError("Registration is disabled", nil)
	}

	email := strings.TrimSpace(c.FormValue("email"))
	displayName := strings.TrimSpace(c.FormValue("display_name"))
	password := c.FormValue("password")

	if email == "" || password == "" {
		return c.Status(400).Render("register", fiber.Map{
			"Error":     "Email and password are required",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}
	if len(password) < h.config.Auth.MinPasswordLen {
		return c.Status(400).Render("register", fiber.Map{
			"Error":     "Password is too short",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	if _, err := h.userStorage.GetUserByEmail(email); err == nil {
		return c.Status(400).Render("register", fiber.Map{
			"Error":     "An account with this email already exists",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	user := &models.User{
		Email:       email,
		DisplayName: displayName,
	}
	if err := h.userStorage.CreateUser(user, password); err != nil {
		utils.Log.Error("Failed to create user: %v", err)
		return c.Status(500).Render("register", fiber.Map{
			"Error":     "Could not create your account",
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	utils.Log.Info("User registered: %s", user.ID)

	return c.Redirect("/login")
}

// HandleLogout processes user logout
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	if err := sess.Destroy(); err != nil {
		return c.Status(500).SendString("Error during logout")
	}

	return c.Redirect("/login")
}
