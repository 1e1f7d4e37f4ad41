package field

import (
	"fmt"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/schema/attribute"
)

// Class names reported in the "class" key of field payloads.
const (
	ClassField    = "field"
	ClassInput    = "input"
	ClassTextarea = "textarea"
	ClassEmail    = "email"
	ClassBoolean  = "boolean"
	ClassNumber   = "number"
	ClassInteger  = "integer"
	ClassEnum     = "enum"
	ClassDateTime = "datetime"
	ClassUUID     = "uuid"
	ClassPrimary  = "primary"
	ClassComputed = "computed"
)

// Base is the field descriptor shared by every field kind. It describes one
// attribute of an entity: how it is labeled, extracted, filtered and whether
// it is written to the repository for a given action.
type Base struct {
	*attribute.Attribute
	builder[*Base]

	label      string
	required   *bool
	unique     *bool
	disabled   Disabled
	filterType cruddy.FilterType
	err        error
}

// New returns a plain field descriptor. It panics if id is empty.
func New(id string) *Base {
	b := newBase(ClassField, id, cruddy.FilterNone)
	b.builder = builder[*Base]{base: b, self: b}
	return b
}

func newBase(class, id string, ft cruddy.FilterType) *Base {
	return &Base{
		Attribute:  attribute.New(class, id),
		filterType: ft,
	}
}

// Err returns the first configuration error recorded by the builder methods.
func (b *Base) Err() error { return b.err }

// Extract returns the value of the field attribute on rec, or nil when rec
// is nil or lacks the attribute.
func (b *Base) Extract(rec cruddy.Record) any {
	if rec == nil {
		return nil
	}
	v, _ := rec.Get(b.ID())
	return v
}

// ExtractForColumn returns the value rendered in list columns.
func (b *Base) ExtractForColumn(rec cruddy.Record) any {
	return b.Extract(rec)
}

// Process returns v unchanged.
func (b *Base) Process(v any) any { return v }

// LabelText resolves the display label. An explicit label is passed through
// the owner's translator. Otherwise the owner is asked for
// "{entity}.fields.{id}" and then "fields.{id}", and the humanized id is
// used when neither exists.
func (b *Base) LabelText() string {
	if b.label != "" {
		return b.TryTranslate(b.label)
	}
	if s, ok := b.TranslateGroup("fields"); ok {
		return s
	}
	return b.GenerateLabel()
}

// Filter leaves q untouched.
func (b *Base) Filter(cruddy.Query, any) cruddy.Field { return b }

// FilterType reports the field filter type.
func (b *Base) FilterType() cruddy.FilterType { return b.filterType }

// IsRequired returns the explicitly configured requirement, or the owner
// validator's required state for the field. The validator result is
// returned as is; it may be a bool or a validator specific flag.
func (b *Base) IsRequired() any {
	if b.required != nil {
		return *b.required
	}
	if o := b.Owner(); o != nil {
		if v := o.Validator(); v != nil {
			return v.RequiredState(b.ID())
		}
	}
	return false
}

// IsUnique reports whether the field was marked unique.
func (b *Base) IsUnique() bool {
	return b.unique != nil && *b.unique
}

// Disabled returns the disablement setting of the field.
func (b *Base) Disabled() Disabled { return b.disabled }

// IsDisabled reports whether the field is disabled for action.
func (b *Base) IsDisabled(action cruddy.Action) bool {
	return b.disabled.For(action)
}

// SendToRepository reports whether the field value is written when
// performing action.
func (b *Base) SendToRepository(action cruddy.Action) bool {
	return !b.IsDisabled(action)
}

// Keep reports true for every value.
func (b *Base) Keep(any) bool { return true }

// ToMap returns the field payload.
func (b *Base) ToMap() map[string]any {
	m := b.Attribute.ToMap()
	m["required"] = b.IsRequired()
	m["unique"] = b.IsUnique()
	m["disabled"] = b.disabled.Value()
	m["label"] = b.LabelText()
	m["filter_type"] = b.filterType.String()
	return m
}

// builder holds the fluent configuration methods. Every field kind embeds
// a builder parameterized with its own pointer type so that chained calls
// keep the concrete kind:
//
//	field.Email("email").Label("E-mail").Required().Unique()
type builder[T any] struct {
	base *Base
	self T
}

// Label sets an explicit label. It is translated when the owner has a
// message for it.
func (b builder[T]) Label(s string) T {
	b.base.label = s
	return b.self
}

// Required marks the field as required, overriding the validator.
func (b builder[T]) Required() T {
	b.base.required = boolPtr(true)
	return b.self
}

// Optional marks the field as not required, overriding the validator.
func (b builder[T]) Optional() T {
	b.base.required = boolPtr(false)
	return b.self
}

// Unique marks the field value as unique.
func (b builder[T]) Unique() T {
	b.base.unique = boolPtr(true)
	return b.self
}

// Disable disables the field for every action.
func (b builder[T]) Disable() T {
	b.base.disabled = Always
	return b.self
}

// DisableFor disables the field for the given action only.
func (b builder[T]) DisableFor(action cruddy.Action) T {
	b.base.disabled = ForAction(action)
	return b.self
}

// Enable clears any disablement.
func (b builder[T]) Enable() T {
	b.base.disabled = Never
	return b.self
}

// SetDisabled sets the disablement setting.
func (b builder[T]) SetDisabled(d Disabled) T {
	b.base.disabled = d
	return b.self
}

// FilterAs overrides the filter type. Unknown types are recorded as a
// configuration error and leave the filter type unchanged.
func (b builder[T]) FilterAs(ft cruddy.FilterType) T {
	if !ft.Valid() {
		if b.base.err == nil {
			b.base.err = fmt.Errorf("field %q: unknown filter type %q", b.base.ID(), ft)
		}
		return b.self
	}
	b.base.filterType = ft
	return b.self
}

// Meta sets an extra key in the field payload.
func (b builder[T]) Meta(key string, v any) T {
	b.base.Set(key, v)
	return b.self
}

func boolPtr(v bool) *bool { return &v }

var _ cruddy.Field = (*Base)(nil)
