package i18n

import (
	"embed"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var builtin embed.FS

// I18n renders notification text in the recipient's language
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a catalogue holding the built-in messages. Files in dir, when set,
// are loaded afterwards and override built-in entries with the same id.
func NewI18n(fallback, dir string) (*I18n, error) {
	tag, err := language.Parse(normalizeLang(fallback))
	if err != nil {
		return nil, fmt.Errorf("invalid fallback language %q: %w", fallback, err)
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := builtin.ReadDir("translations")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(builtin, path.Join("translations", e.Name())); err != nil {
			return nil, fmt.Errorf("failed to load built-in translations %s: %w", e.Name(), err)
		}
	}

	t := &I18n{bundle: bundle, defaultLang: tag}
	if dir != "" {
		if err := t.LoadTranslations(dir); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadTranslations loads translation files from the specified directory
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(translationsDir, file.Name())); err != nil {
			return fmt.Errorf("failed to load translations %s: %w", file.Name(), err)
		}
	}
	return nil
}

// Translate returns a localized string for the given message ID and language
func (i *I18n) Translate(msgID string, lang string, templateData map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, normalizeLang(lang), i.defaultLang.String())

	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		return msgID
	}
	return msg
}

// Event renders the subject and body of a notification event
func (i *I18n) Event(event cnst.Event, lang string, data map[string]any) (subject, body string) {
	return i.Translate(string(event)+".subject", lang, data), i.Translate(string(event)+".body", lang, data)
}

// Has reports whether the catalogue defines msgID for lang or the fallback
func (i *I18n) Has(msgID, lang string) bool {
	localizer := i18n.NewLocalizer(i.bundle, normalizeLang(lang), i.defaultLang.String())
	_, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: msgID})
	return err == nil
}

// LanguageFromRequest extracts the language preference from X-Lang, then Accept-Language
func LanguageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalizeLang(lang)
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			return normalizeLang(tags[0].String())
		}
	}
	return cnst.LangDefault
}

// normalizeLang maps a language code onto a supported base language
func normalizeLang(lang string) string {
	code := strings.ToLower(strings.Split(strings.ReplaceAll(lang, "_", "-"), "-")[0])
	switch code {
	case cnst.LangEN, cnst.LangZH:
		return code
	}
	return cnst.LangDefault
}
