package pirates

import (
	"embed"
	"io/fs"
	"path"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other locale falls back to.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Localizer formats catalog messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// LoadLocalizer loads the embedded catalogs for locale.
func LoadLocalizer(locale string) (*Localizer, error) {
	return LoadLocalizerFS(embeddedLocales, locale)
}

// LoadLocalizerFS loads catalogs from fsys, laid out as locales/<locale>/*.yaml.
// Keys missing from locale fall back to BaseLocale.
func LoadLocalizerFS(fsys fs.FS, locale string) (*Localizer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "parse locale %q", locale)
	}

	messages, err := readLocale(fsys, BaseLocale)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, eris.Errorf("base locale %s has no messages", BaseLocale)
	}
	if locale != BaseLocale {
		overlay, err := readLocale(fsys, locale)
		if err != nil {
			return nil, err
		}
		for k, v := range overlay {
			messages[k] = v
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(tag))
	for k, v := range messages {
		if err := b.SetString(tag, k, v); err != nil {
			return nil, eris.Wrapf(err, "register message %q", k)
		}
	}

	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}, nil
}

func readLocale(fsys fs.FS, locale string) (map[string]string, error) {
	paths, err := fs.Glob(fsys, path.Join("locales", locale, "*.yaml"))
	if err != nil {
		return nil, eris.Wrapf(err, "glob catalogs for %s", locale)
	}

	out := make(map[string]string)
	for _, p := range paths {
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, eris.Wrapf(err, "read catalog %s", p)
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, eris.Wrapf(err, "parse catalog %s", p)
		}
		if file.Locale != locale {
			return nil, eris.Errorf("catalog %s: locale %q must match path locale %q", p, file.Locale, locale)
		}
		for k, v := range file.Messages {
			out[k] = v
		}
	}
	return out, nil
}

// Locale returns the locale the localizer formats for.
func (l *Localizer) Locale() language.Tag {
	return l.tag
}

// Get formats the message stored under key. Unknown keys are returned as is.
func (l *Localizer) Get(key string, args ...any) string {
	if l == nil {
		return key
	}
	return l.printer.Sprintf(key, args...)
}
