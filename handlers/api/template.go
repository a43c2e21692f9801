package api

import (
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// TemplateHandler serves the read-only letter templates.
type TemplateHandler struct {
	storage *storage.TemplateStore
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateStore *storage.TemplateStore) *TemplateHandler {
	return &TemplateHandler{storage: templateStore}
}

// GetTemplates retrieves all letter templates
func (h *TemplateHandler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.storage.List()
	if err != nil {
		return utils.InternalServerError("Failed to load templates", err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"templates": templates,
	})
}

// GetTemplate retrieves a specific template
func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	template, err := h.storage.GetByID(c.Params("id"))
	if err != nil {
		return utils.NotFoundError("Template not found", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"template": template,
	})
}
