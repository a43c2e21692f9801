package middleware

import (
	"strings"

	"everlove/utils"

	"github.com/gofiber/fiber/v2"
)

// LocaleMiddleware detects and sets the user's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := ""

		// 1. Try to get language from query parameter
		lang = c.Query("lang")

		// 2. Try to get language from cookie
		if lang == "" {
			lang = c.Cookies("lang")
		}

		// 3. Try to get language from Accept-Language header
		if lang == "" {
			acceptLang := c.Get("Accept-Language")
			if strings.HasPrefix(acceptLang, "fr") {
				lang = "fr"
			} else {
				lang = "en"
			}
		}

		// Only allow supported languages
		if lang != "en" && lang != "fr" {
			lang = "en"
		}

		localizer := utils.GetLocalizer(lang)

		c.Locals("localizer", localizer)
		c.Locals("lang", lang)

		return c.Next()
	}
}
