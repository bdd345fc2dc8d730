package web

import (
	"strings"

	"lettertrack/utils"

	"github.com/gofiber/template/html/v2"
)

// NewViews builds the template engine with the helpers the letter pages use
func NewViews(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")

	engine.AddFunc("lower", strings.ToLower)
	engine.AddFunc("upper", strings.ToUpper)
	engine.AddFunc("trim", strings.TrimSpace)

	// tl translates a message ID for the request language: {{tl $.Lang "tab_all"}}
	engine.AddFunc("tl", func(lang, messageID string) string {
		return utils.T(utils.GetLocalizer(lang), messageID)
	})
	engine.AddFunc("tplural", func(lang, messageID string, count int) string {
		return utils.TPlural(utils.GetLocalizer(lang), messageID, count)
	})

	engine.AddFunc("humanDate", utils.HumanDate)
	engine.AddFunc("isoDate", utils.FormatDate)

	engine.Reload(reload)
	return engine
}
