package memory

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
)

type storedTemplate struct {
	subject string
	from    string
	body    string
}

// Templates is a map-backed template store with the same locale
// fallback as the directory-backed one. The HTML part mirrors the text
// part; markdown conversion stays in the real store.
type Templates struct {
	mu            sync.RWMutex
	defaultLocale string
	byName        map[string]map[string]storedTemplate
}

func NewTemplates(defaultLocale string) *Templates {
	locale := strings.ToLower(strings.TrimSpace(defaultLocale))
	if locale == "" {
		locale = "en"
	}
	return &Templates{
		defaultLocale: locale,
		byName:        map[string]map[string]storedTemplate{},
	}
}

// Add registers a template body under a name and locale.
func (t *Templates) Add(name string, locale string, subject string, from string, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byLocale := t.byName[name]
	if byLocale == nil {
		byLocale = map[string]storedTemplate{}
		t.byName[name] = byLocale
	}
	byLocale[strings.ToLower(strings.TrimSpace(locale))] = storedTemplate{
		subject: subject,
		from:    from,
		body:    body,
	}
}

func (t *Templates) Render(name string, locale string, vars map[string]any) (entities.RenderedTemplate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	byLocale, ok := t.byName[name]
	if !ok {
		return entities.RenderedTemplate{}, fmt.Errorf("%w: %s", domainerrors.ErrTemplateNotFound, name)
	}
	requested := strings.ToLower(strings.TrimSpace(locale))
	if requested == "" {
		requested = t.defaultLocale
	}
	stored, ok := byLocale[requested]
	resolved := requested
	if !ok {
		stored, ok = byLocale[t.defaultLocale]
		resolved = t.defaultLocale
		if !ok {
			return entities.RenderedTemplate{}, fmt.Errorf("%w: %s (locale %s)", domainerrors.ErrTemplateNotFound, name, requested)
		}
	}

	subject, err := render(name+".subject", stored.subject, vars)
	if err != nil {
		return entities.RenderedTemplate{}, err
	}
	body, err := render(name, stored.body, vars)
	if err != nil {
		return entities.RenderedTemplate{}, err
	}
	return entities.RenderedTemplate{
		Name:     name,
		Locale:   resolved,
		Subject:  subject,
		From:     stored.from,
		TextBody: body,
		HTMLBody: body,
	}, nil
}

func render(name string, raw string, vars map[string]any) (string, error) {
	parsed, err := template.New(name).Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, vars); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
