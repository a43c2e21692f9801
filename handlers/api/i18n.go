package api

import (
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns translations for the client-side JavaScript
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if lang == "" {
		lang = "en"
	}

	// Only allow supported languages
	if lang != "en" && lang != "fr" {
		lang = "en"
	}

	localizer := utils.GetLocalizer(lang)

	// Common translation keys for client-side use
	translations := map[string]string{
		"letter_sent":          utils.T(localizer, "letter_sent"),
		"letter_scheduled":     utils.T(localizer, "letter_scheduled"),
		"draft_saved":          utils.T(localizer, "draft_saved"),
		"letter_updated":       utils.T(localizer, "letter_updated"),
		"letter_deleted":       utils.T(localizer, "letter_deleted"),
		"letter_save_failed":   utils.T(localizer, "letter_save_failed"),
		"empty_content":        utils.T(localizer, "empty_content"),
		"empty_recipient":      utils.T(localizer, "empty_recipient"),
		"inbox_refreshed":      utils.T(localizer, "inbox_refreshed"),
		"inbox_refresh_failed": utils.T(localizer, "inbox_refresh_failed"),
		"confirm_delete":       utils.T(localizer, "confirm_delete"),
		"confirm_yes":          utils.T(localizer, "confirm_yes"),
		"confirm_no":           utils.T(localizer, "confirm_no"),
		"error_network":        utils.T(localizer, "error_network"),
		"error_404":            utils.T(localizer, "error_404"),
		"error_500":            utils.T(localizer, "error_500"),
	}

	return c.JSON(translations)
}
