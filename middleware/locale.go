package middleware

import (
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

// LocaleMiddleware picks the language from ?lang=, the lang cookie, then
// Accept-Language, limited to languages that have message files.
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")
		if lang != "" && utils.SupportedLanguage(lang) {
			c.Cookie(&fiber.Cookie{Name: "lang", Value: lang, Path: "/"})
		} else {
			lang = c.Cookies("lang")
		}

		if !utils.SupportedLanguage(lang) {
			lang = matchAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		utils.Log.Debug("Locale detected: %s for path: %s", lang, c.Path())

		return c.Next()
	}
}

// matchAcceptLanguage returns the best supported base language for an Accept-Language header
func matchAcceptLanguage(header string) string {
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return "en"
	}

	// The first tag is the matcher's fallback, so English leads.
	langs := []string{"en"}
	tags := []language.Tag{language.English}
	for _, l := range utils.Languages() {
		if l != "en" {
			langs = append(langs, l)
			tags = append(tags, language.Make(l))
		}
	}

	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return "en"
	}
	return langs[idx]
}
