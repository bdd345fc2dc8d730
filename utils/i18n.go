package utils

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	// Bundle is the global translation bundle
	Bundle *i18n.Bundle
	// Localizer is the default localizer
	Localizer *i18n.Localizer
)

// InitI18n loads every active.<lang>.toml message file found in dir
func InitI18n(dir string) error {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := filepath.Glob(filepath.Join(dir, "active.*.toml"))
	if err != nil {
		return fmt.Errorf("failed to list locale files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no locale files in %s", dir)
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFile(file); err != nil {
			Log.Warn("Failed to load locale %s: %v", file, err)
		}
	}

	Bundle = bundle
	Localizer = i18n.NewLocalizer(Bundle, language.English.String())

	Log.Info("i18n initialized with languages: %s", strings.Join(Languages(), ", "))
	return nil
}

// Languages returns the base language codes that have message files, sorted
func Languages() []string {
	if Bundle == nil {
		return []string{"en"}
	}
	var langs []string
	for _, tag := range Bundle.LanguageTags() {
		base, _ := tag.Base()
		langs = append(langs, base.String())
	}
	sort.Strings(langs)
	return langs
}

// SupportedLanguage reports whether lang has a loaded message file
func SupportedLanguage(lang string) bool {
	for _, l := range Languages() {
		if l == lang {
			return true
		}
	}
	return false
}

// GetLocalizer returns a localizer for the specified language
func GetLocalizer(lang string) *i18n.Localizer {
	if lang == "" {
		lang = "en"
	}
	if Bundle == nil {
		return nil
	}
	return i18n.NewLocalizer(Bundle, lang)
}

// T translates a message ID, falling back to the ID itself
func T(localizer *i18n.Localizer, messageID string) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// TWithData translates a message ID with template data
func TWithData(localizer *i18n.Localizer, messageID string, data map[string]interface{}) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}

// TPlural translates a message ID with plural support
func TPlural(localizer *i18n.Localizer, messageID string, count int) string {
	if localizer == nil {
		return messageID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:   messageID,
		PluralCount: count,
		TemplateData: map[string]interface{}{
			"Count": count,
		},
	})
	if err != nil {
		Log.Debug("Translation error for '%s': %v", messageID, err)
		return messageID
	}
	return msg
}
