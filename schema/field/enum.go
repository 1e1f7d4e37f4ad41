package field

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// EnumField is a choice between a fixed list of values.
type EnumField struct {
	*Base
	builder[*EnumField]

	values []string
}

// Enum returns an enum field accepting the given values.
func Enum(id string, values ...string) *EnumField {
	f := &EnumField{Base: newBase(ClassEnum, id, cruddy.FilterComplex)}
	f.builder = builder[*EnumField]{base: f.Base, self: f}
	return f.Values(values...)
}

// Values appends accepted values. Duplicates are ignored.
func (f *EnumField) Values(values ...string) *EnumField {
	for _, v := range values {
		if v == "" && f.err == nil {
			f.err = fmt.Errorf("field %q: empty enum value", f.ID())
			continue
		}
		if !slices.Contains(f.values, v) {
			f.values = append(f.values, v)
		}
	}
	return f
}

// EnumValues returns the accepted values in declaration order.
func (f *EnumField) EnumValues() []string { return slices.Clone(f.values) }

// Process returns the submitted value if it is accepted, otherwise nil.
func (f *EnumField) Process(v any) any {
	s, ok := v.(string)
	if !ok {
		if st, isStringer := v.(fmt.Stringer); isStringer {
			s = st.String()
		}
	}
	if slices.Contains(f.values, s) {
		return s
	}
	return nil
}

// Keep drops values that Process rejected.
func (f *EnumField) Keep(v any) bool { return v != nil }

// Filter restricts the field to the accepted values found in data, a
// single value or a list.
func (f *EnumField) Filter(q cruddy.Query, data any) cruddy.Field {
	var in []string
	switch data := data.(type) {
	case string:
		in = []string{data}
	case []string:
		in = data
	case []any:
		for _, v := range data {
			if s, ok := v.(string); ok {
				in = append(in, s)
			}
		}
	}
	in = slices.DeleteFunc(slices.Clone(in), func(s string) bool {
		return !slices.Contains(f.values, s)
	})
	if len(in) > 0 {
		q.Where(sql.FieldIn(f.ID(), in...))
	}
	return f
}

// OptionLabel returns the label of an enum value, looked up under
// "{entity}.enums.{id}.{value}" and "enums.{id}.{value}" before falling
// back to the title cased value.
func (f *EnumField) OptionLabel(value string) string {
	if o := f.Owner(); o != nil {
		key := "enums." + f.ID() + "." + value
		if s, ok := o.Translate(o.ID() + "." + key); ok {
			return s
		}
		if s, ok := o.Translate(key); ok {
			return s
		}
	}
	words := strings.NewReplacer("_", " ", "-", " ").Replace(value)
	return cases.Title(language.English).String(words)
}

// ToMap adds the ordered "options" list to the base payload.
func (f *EnumField) ToMap() map[string]any {
	m := f.Base.ToMap()
	options := make([]map[string]any, 0, len(f.values))
	for _, v := range f.values {
		options = append(options, map[string]any{"value": v, "label": f.OptionLabel(v)})
	}
	m["options"] = options
	return m
}

var _ cruddy.Field = (*EnumField)(nil)
