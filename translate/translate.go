// Package translate provides message catalogs implementing
// cruddy.Translator. Messages are kept per locale under dotted keys, e.g.
// "users.fields.email", and are usually loaded from one YAML file per
// locale:
//
//	# en.yaml
//	users:
//	  title: Users
//	  fields:
//	    email: E-mail address
//
// A Catalog translates with its fallback locale; For returns a translator
// for the best matching locale of an Accept-Language style preference.
package translate

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/syssam/cruddy"
)

// Catalog holds the messages of every loaded locale.
type Catalog struct {
	mu       sync.RWMutex
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallback sets the locale used when no other locale matches or has a
// message. Default is English.
func WithFallback(tag language.Tag) Option {
	return func(c *Catalog) {
		c.fallback = tag
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		messages: make(map[language.Tag]map[string]string),
		fallback: language.English,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rebuild()
	return c
}

// Add merges messages into the locale.
func (c *Catalog) Add(tag language.Tag, messages map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[tag]
	if !ok {
		m = make(map[string]string, len(messages))
		c.messages[tag] = m
	}
	maps.Copy(m, messages)
	c.rebuild()
}

// AddYAML decodes a nested YAML document and merges its messages into the
// locale.
func (c *Catalog) AddYAML(tag language.Tag, r io.Reader) error {
	messages, err := decode(r)
	if err != nil {
		return fmt.Errorf("translate: %s: %w", tag, err)
	}
	c.Add(tag, messages)
	return nil
}

// replace swaps all messages at once.
func (c *Catalog) replace(messages map[language.Tag]map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = messages
	c.rebuild()
}

// rebuild refreshes the matcher. The fallback is always the first
// supported tag so that it wins when nothing matches. c.mu must be held.
func (c *Catalog) rebuild() {
	tags := []language.Tag{c.fallback}
	others := make([]language.Tag, 0, len(c.messages))
	for tag := range c.messages {
		if tag != c.fallback {
			others = append(others, tag)
		}
	}
	slices.SortFunc(others, func(a, b language.Tag) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	})
	c.tags = append(tags, others...)
	c.matcher = language.NewMatcher(c.tags)
}

// Locales returns the loaded locales, fallback first.
func (c *Catalog) Locales() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]language.Tag, 0, len(c.tags))
	for _, tag := range c.tags {
		if _, ok := c.messages[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// Fallback returns the fallback locale.
func (c *Catalog) Fallback() language.Tag { return c.fallback }

// Match returns the supported locale best matching the preference, which
// may be a single tag ("fr-CA") or an Accept-Language header value
// ("fr-CH, fr;q=0.9, en;q=0.8"). It returns the fallback when nothing
// matches or the preference cannot be parsed.
func (c *Catalog) Match(preference string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(prefs) == 0 {
		return c.fallback
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, i, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[i]
}

// Lookup returns the message of key in the locale, then in the fallback.
func (c *Catalog) Lookup(tag language.Tag, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.messages[tag][key]; ok {
		return s, true
	}
	s, ok := c.messages[c.fallback][key]
	return s, ok
}

// Translate implements cruddy.Translator with the fallback locale.
func (c *Catalog) Translate(key string) (string, bool) {
	return c.Lookup(c.fallback, key)
}

// For returns a translator for the locale best matching the preference.
func (c *Catalog) For(preference string) cruddy.Translator {
	return Localizer{catalog: c, tag: c.Match(preference)}
}

// Localizer translates with a single locale of a catalog. Messages missing
// in the locale are looked up in the fallback locale.
type Localizer struct {
	catalog *Catalog
	tag     language.Tag
}

// Tag returns the locale.
func (l Localizer) Tag() language.Tag { return l.tag }

// Translate implements cruddy.Translator.
func (l Localizer) Translate(key string) (string, bool) {
	return l.catalog.Lookup(l.tag, key)
}

// TryTranslate returns the translation of s, or s when t is nil or has no
// translation.
func TryTranslate(t cruddy.Translator, s string) string {
	if t == nil {
		return s
	}
	if msg, ok := t.Translate(s); ok {
		return msg
	}
	return s
}

// decode reads a YAML document of nested mappings into dotted keys.
func decode(r io.Reader) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", doc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, m map[string]any, out map[string]string) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			if err := flatten(key, v, out); err != nil {
				return err
			}
		case map[any]any:
			sm := make(map[string]any, len(v))
			for mk, mv := range v {
				sm[fmt.Sprint(mk)] = mv
			}
			if err := flatten(key, sm, out); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("unsupported list at %q", key)
		case nil:
			out[key] = ""
		case string:
			out[key] = v
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return nil
}

var (
	_ cruddy.Translator = (*Catalog)(nil)
	_ cruddy.Translator = Localizer{}
)
