// Package templatestore compiles the markdown mail templates shipped in
// the templates directory. Files are named <template>.<locale>.md and
// carry YAML front matter with the default send attributes.
package templatestore

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Subject string `yaml:"subject"`
	From    string `yaml:"from"`
	ReplyTo string `yaml:"reply_to"`
}

type compiledTemplate struct {
	subject *template.Template
	body    *template.Template
	from    string
	replyTo string
}

// Store holds every template found at startup, keyed by name and locale.
type Store struct {
	templates     map[string]map[string]compiledTemplate
	defaultLocale string
	markdown      goldmark.Markdown
}

// New scans dir for files named <template>.<locale>.md and compiles
// them once. Markdown files without the two-part suffix are skipped.
func New(dir string, defaultLocale string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	locale := strings.ToLower(strings.TrimSpace(defaultLocale))
	if locale == "" {
		locale = "en"
	}
	store := &Store{
		templates:     map[string]map[string]compiledTemplate{},
		defaultLocale: locale,
		markdown:      goldmark.New(),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		name, fileLocale, ok := splitFileName(entry.Name())
		if !ok {
			logger.Warn("template file name needs a locale suffix",
				"event", "mail_template_skipped",
				"module", "notifications/email-service",
				"layer", "adapter",
				"file", entry.Name(),
			)
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		compiled, err := compile(name, fileLocale, string(raw))
		if err != nil {
			return nil, fmt.Errorf("compile template %s: %w", entry.Name(), err)
		}
		byLocale := store.templates[name]
		if byLocale == nil {
			byLocale = map[string]compiledTemplate{}
			store.templates[name] = byLocale
		}
		byLocale[fileLocale] = compiled
	}

	logger.Info("mail templates loaded",
		"event", "mail_templates_loaded",
		"module", "notifications/email-service",
		"layer", "adapter",
		"template_count", len(store.templates),
	)
	return store, nil
}

// Render executes a template for the requested locale. A locale miss
// falls back to the default locale; missing both is ErrTemplateNotFound.
func (s *Store) Render(name string, locale string, vars map[string]any) (entities.RenderedTemplate, error) {
	compiled, resolvedLocale, err := s.resolve(name, locale)
	if err != nil {
		return entities.RenderedTemplate{}, err
	}

	var text bytes.Buffer
	if err := compiled.body.Execute(&text, vars); err != nil {
		return entities.RenderedTemplate{}, fmt.Errorf("render %s.%s: %w", name, resolvedLocale, err)
	}
	var html bytes.Buffer
	if err := s.markdown.Convert(text.Bytes(), &html); err != nil {
		return entities.RenderedTemplate{}, fmt.Errorf("render %s.%s html: %w", name, resolvedLocale, err)
	}
	var subject bytes.Buffer
	if err := compiled.subject.Execute(&subject, vars); err != nil {
		return entities.RenderedTemplate{}, fmt.Errorf("render %s.%s subject: %w", name, resolvedLocale, err)
	}

	return entities.RenderedTemplate{
		Name:     name,
		Locale:   resolvedLocale,
		Subject:  strings.TrimSpace(subject.String()),
		From:     compiled.from,
		ReplyTo:  compiled.replyTo,
		TextBody: strings.TrimSpace(text.String()),
		HTMLBody: html.String(),
	}, nil
}

func (s *Store) resolve(name string, locale string) (compiledTemplate, string, error) {
	byLocale, ok := s.templates[strings.TrimSpace(name)]
	if !ok {
		return compiledTemplate{}, "", fmt.Errorf("%w: %s", domainerrors.ErrTemplateNotFound, name)
	}
	requested := strings.ToLower(strings.TrimSpace(locale))
	if requested == "" {
		requested = s.defaultLocale
	}
	if compiled, ok := byLocale[requested]; ok {
		return compiled, requested, nil
	}
	if compiled, ok := byLocale[s.defaultLocale]; ok {
		return compiled, s.defaultLocale, nil
	}
	return compiledTemplate{}, "", fmt.Errorf("%w: %s (locale %s)", domainerrors.ErrTemplateNotFound, name, requested)
}

func compile(name string, locale string, raw string) (compiledTemplate, error) {
	meta, body := splitFrontMatter(raw)
	var attrs frontMatter
	if meta != "" {
		if err := yaml.Unmarshal([]byte(meta), &attrs); err != nil {
			return compiledTemplate{}, fmt.Errorf("front matter: %w", err)
		}
	}
	subject, err := template.New(name + "." + locale + ".subject").Parse(attrs.Subject)
	if err != nil {
		return compiledTemplate{}, fmt.Errorf("subject: %w", err)
	}
	compiledBody, err := template.New(name + "." + locale).Parse(body)
	if err != nil {
		return compiledTemplate{}, err
	}
	return compiledTemplate{
		subject: subject,
		body:    compiledBody,
		from:    strings.TrimSpace(attrs.From),
		replyTo: strings.TrimSpace(attrs.ReplyTo),
	}, nil
}

// splitFileName breaks "new_response.en.md" into ("new_response", "en").
func splitFileName(file string) (name string, locale string, ok bool) {
	base := strings.TrimSuffix(file, ".md")
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return "", "", false
	}
	return base[:idx], strings.ToLower(base[idx+1:]), true
}

// splitFrontMatter returns the YAML header between --- markers and the
// markdown body after it. Files without a header keep their full body.
func splitFrontMatter(raw string) (meta string, body string) {
	trimmed := strings.TrimPrefix(raw, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return "", trimmed
	}
	rest := trimmed[len("---"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", trimmed
	}
	meta = strings.TrimSpace(rest[:end])
	body = rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	return meta, body
}
