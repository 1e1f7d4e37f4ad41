// Package attribute provides the named, configurable schema node that field
// descriptors and other schema elements are composed of.
package attribute

import (
	"maps"
	"strings"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/record"
)

// Owner is the schema element an attribute belongs to, usually an entity.
type Owner interface {
	// ID returns the owner identifier, used to namespace translations.
	ID() string
	// Validator returns the owner's validator, or nil.
	Validator() cruddy.Validator
	// Translate looks up a translated message.
	Translate(key string) (string, bool)
}

// Attribute holds the identity and generic configuration of a schema node.
type Attribute struct {
	id     string
	class  string
	owner  Owner
	config map[string]any
}

// New returns an attribute of the given class. It panics if id is empty.
func New(class, id string) *Attribute {
	if strings.TrimSpace(id) == "" {
		panic("attribute: empty " + class + " id")
	}
	return &Attribute{id: id, class: class}
}

// ID returns the attribute identifier.
func (a *Attribute) ID() string { return a.id }

// Class returns the attribute class, e.g. "string" or "boolean".
func (a *Attribute) Class() string { return a.class }

// Owner returns the owner the attribute is bound to, or nil.
func (a *Attribute) Owner() Owner { return a.owner }

// Bind attaches the attribute to its owner.
func (a *Attribute) Bind(o Owner) { a.owner = o }

// Set stores a generic configuration value that is merged into ToMap.
func (a *Attribute) Set(key string, v any) {
	if a.config == nil {
		a.config = make(map[string]any)
	}
	a.config[key] = v
}

// Get returns a generic configuration value, or nil.
func (a *Attribute) Get(key string) any { return a.config[key] }

// Has reports whether a configuration value is set.
func (a *Attribute) Has(key string) bool {
	_, ok := a.config[key]
	return ok
}

// GenerateLabel returns a human readable form of the identifier:
// "first_name" becomes "First name".
func (a *Attribute) GenerateLabel() string {
	return Humanize(a.id)
}

// Humanize converts an identifier into a phrase: separators become spaces,
// the first letter is capitalized and acronyms such as "ID" stay whole.
func Humanize(id string) string {
	if strings.Trim(strings.TrimSuffix(id, "_id"), "_- ") == "" {
		return id
	}
	// inflect strips the last "_id" wherever it occurs ("user_identity").
	if i := strings.LastIndex(id, "_id"); i >= 0 && i+3 != len(id) {
		id = strings.NewReplacer("_", " ", "-", " ").Replace(id)
	}
	return record.Humanize(id)
}

// TranslateGroup looks up the attribute under a translation group, first
// namespaced by the owner ("users.fields.email") and then shared
// ("fields.email").
func (a *Attribute) TranslateGroup(group string) (string, bool) {
	if a.owner == nil {
		return "", false
	}
	key := group + "." + a.id
	if s, ok := a.owner.Translate(a.owner.ID() + "." + key); ok {
		return s, true
	}
	return a.owner.Translate(key)
}

// TryTranslate returns the translation of s, or s itself when the owner
// has none.
func (a *Attribute) TryTranslate(s string) string {
	if a.owner == nil {
		return s
	}
	if t, ok := a.owner.Translate(s); ok {
		return t
	}
	return s
}

// ToMap returns the base payload: id, class and the generic configuration.
func (a *Attribute) ToMap() map[string]any {
	m := make(map[string]any, len(a.config)+2)
	maps.Copy(m, a.config)
	m["id"] = a.id
	m["class"] = a.class
	return m
}
