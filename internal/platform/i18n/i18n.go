package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the UI languages in preference order; the first is the fallback.
var Supported = []language.Tag{language.English, language.Spanish, language.French}

// Translator resolves user-facing messages by stable code.
type Translator struct {
	cat     *catalog.Builder
	matcher language.Matcher
	known   map[string]bool
}

func New() *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	known := make(map[string]bool, len(messages))
	for code, byLang := range messages {
		known[code] = true
		for tag, text := range byLang {
			_ = b.SetString(tag, code, text)
		}
	}
	return &Translator{cat: b, matcher: language.NewMatcher(Supported), known: known}
}

// Resolve picks a supported tag. A stored preference wins over Accept-Language.
func (t *Translator) Resolve(preferred, acceptLanguage string) language.Tag {
	if p := strings.TrimSpace(preferred); p != "" {
		if tag, err := language.Parse(p); err == nil {
			if matched, _, conf := t.matcher.Match(tag); conf != language.No {
				return base(matched)
			}
		}
	}
	if al := strings.TrimSpace(acceptLanguage); al != "" {
		if tags, _, err := language.ParseAcceptLanguage(al); err == nil && len(tags) > 0 {
			if matched, _, conf := t.matcher.Match(tags...); conf != language.No {
				return base(matched)
			}
		}
	}
	return language.English
}

// Message returns the localized text for code, or fallback when code is unknown.
func (t *Translator) Message(tag language.Tag, code, fallback string) string {
	if t == nil || !t.known[code] {
		return fallback
	}
	p := message.NewPrinter(tag, message.Catalog(t.cat))
	return p.Sprintf(code)
}

// IsSupported reports whether lang is one of the UI languages.
func IsSupported(lang string) bool {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return false
	}
	want, _ := tag.Base()
	for _, s := range Supported {
		if b, _ := s.Base(); b == want {
			return true
		}
	}
	return false
}

func base(tag language.Tag) language.Tag {
	b, _ := tag.Base()
	out, err := language.Compose(b)
	if err != nil {
		return tag
	}
	return out
}
