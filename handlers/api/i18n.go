package api

import (
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
)

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// clientMessageIDs are the strings scripts need without a page render
var clientMessageIDs = []string{
	"badge_overdue",
	"badge_due_today",
	"badge_upcoming",
	"badge_received",
	"mark_received",
	"no_letters",
	"error_required_fields",
	"error_generic",
	"error_not_found",
	"message_letter_added",
	"message_letter_received",
}

// GetTranslations returns translations for client-side JavaScript
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if !utils.SupportedLanguage(lang) {
		lang = "en"
	}

	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(clientMessageIDs))
	for _, id := range clientMessageIDs {
		translations[id] = utils.T(localizer, id)
	}

	return c.JSON(translations)
}
