// Package cruddy defines the contracts shared by the admin-panel schema
// packages: field descriptors, the record accessor they read from, the
// validator and translator they consult, and the query they constrain.
//
// Concrete implementations live in subpackages:
//
//   - schema/field: field descriptors and the built-in field kinds
//   - schema/entity: the schema node owning a set of fields
//   - schema/mixin: reusable field sets
//   - record: Record accessors over maps, structs and SQL rows
//   - translate: YAML message catalogs implementing Translator
//   - validation: rule sets implementing Validator
//   - privacy: authorization rules evaluated by the repository
//   - repository: SQL persistence driven by field descriptors
//   - config: entities built from YAML definitions
//   - codec: cached JSON and MessagePack schema payloads
package cruddy

import "github.com/syssam/cruddy/dialect/sql"

// Action is a named CRUD operation context against which field
// disablement is evaluated.
type Action string

// Built-in actions. Any other string is a valid custom action.
const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// String returns the action name.
func (a Action) String() string { return string(a) }

// FilterType selects which filtering UI and query strategy applies to a field.
type FilterType string

// Recognized filter types.
const (
	// FilterNone marks a field that does not take part in filtering.
	FilterNone FilterType = "none"
	// FilterString is a single free-text search input.
	FilterString FilterType = "string"
	// FilterComplex is a structured filter (ranges, option lists, flags).
	FilterComplex FilterType = "complex"
)

// Valid reports whether t is one of the recognized filter types.
func (t FilterType) Valid() bool {
	switch t {
	case FilterNone, FilterString, FilterComplex:
		return true
	}
	return false
}

// String returns the filter type tag.
func (t FilterType) String() string { return string(t) }

// Record reads attribute values off a data record.
type Record interface {
	// Get returns the current value of the named attribute. The second
	// result is false when the record has no such attribute.
	Get(name string) (any, bool)
}

// Validator reports validation requirements of an entity's attributes.
type Validator interface {
	// RequiredState reports whether the attribute is required. It returns a
	// bool, or an implementation-defined string flag for conditional
	// requirement. Callers pass the value through unchanged.
	RequiredState(id string) any
}

// Translator looks up translated messages.
type Translator interface {
	// Translate returns the message for key. The second result is false
	// when no translation exists.
	Translate(key string) (string, bool)
}

// TranslatorFunc adapts an ordinary function to the Translator interface.
type TranslatorFunc func(key string) (string, bool)

// Translate returns f(key).
func (f TranslatorFunc) Translate(key string) (string, bool) { return f(key) }

// ValidatorFunc adapts an ordinary function to the Validator interface.
type ValidatorFunc func(id string) any

// RequiredState returns f(id).
func (f ValidatorFunc) RequiredState(id string) any { return f(id) }

// Query is a query builder that field filters add constraints to.
// *sql.Selector implements it.
type Query interface {
	Where(ps ...*sql.Predicate)
}

// Field describes one record attribute for display, extraction, filtering
// and persistence-eligibility decisions.
type Field interface {
	// ID returns the attribute identifier.
	ID() string
	// Extract returns the attribute value of rec, or nil when absent.
	Extract(rec Record) any
	// ExtractForColumn returns the value used to render a list column.
	ExtractForColumn(rec Record) any
	// Process converts submitted input into the value to store.
	Process(v any) any
	// Filter constrains q with the user supplied filter data.
	Filter(q Query, data any) Field
	// FilterType reports which filter strategy the field supports.
	FilterType() FilterType
	// Keep reports whether a processed value is retained.
	Keep(v any) bool
	// SendToRepository reports whether the field value is written for action.
	SendToRepository(action Action) bool
	// ToMap returns the serializable description sent to the UI layer.
	ToMap() map[string]any
}
