package web

import (
	"everlove/handlers/api"

	"github.com/gofiber/fiber/v2"
)

// PageHandler renders the application shell pages. The client-side app
// talks to /api from there.
type PageHandler struct{}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// HandleInbox renders the main inbox shell
func (h *PageHandler) HandleInbox(c *fiber.Ctx) error {
	return c.Render("inbox", fiber.Map{
		"DisplayName": api.CurrentDisplayName(c),
		"Lang":        c.Locals("lang"),
	})
}

// HandleCompose renders the composer shell, optionally pre-filling the
// recipient from the query string.
func (h *PageHandler) HandleCompose(c *fiber.Ctx) error {
	return c.Render("compose", fiber.Map{
		"DisplayName": api.CurrentDisplayName(c),
		"Recipient":   c.Query("to"),
		"Lang":        c.Locals("lang"),
	})
}
