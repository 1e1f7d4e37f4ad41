package field

import (
	"strings"
	"unicode/utf8"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// StringField is a free-text field filtered by a case-insensitive
// substring match.
type StringField struct {
	*Base
	builder[*StringField]

	width int
}

// String returns a single line text input field.
func String(id string) *StringField {
	return newString(ClassInput, id)
}

// Text returns a multi-line text field. Its list column is truncated.
func Text(id string) *StringField {
	return newString(ClassTextarea, id).Truncate(80)
}

// Email returns an e-mail input field.
func Email(id string) *StringField {
	return newString(ClassEmail, id)
}

func newString(class, id string) *StringField {
	f := &StringField{Base: newBase(class, id, cruddy.FilterString)}
	f.builder = builder[*StringField]{base: f.Base, self: f}
	return f
}

// Truncate limits list column values to n runes. Zero disables truncation.
func (f *StringField) Truncate(n int) *StringField {
	f.width = max(n, 0)
	return f
}

// Placeholder sets the input placeholder.
func (f *StringField) Placeholder(s string) *StringField {
	f.Set("placeholder", s)
	return f
}

// ExtractForColumn returns the value, truncated when a width is set.
func (f *StringField) ExtractForColumn(rec cruddy.Record) any {
	v := f.Extract(rec)
	s, ok := v.(string)
	if !ok || f.width == 0 || utf8.RuneCountInString(s) <= f.width {
		return v
	}
	return string([]rune(s)[:f.width]) + "…"
}

// Process trims surrounding white space from strings.
func (f *StringField) Process(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

// Filter adds a case-insensitive contains predicate for non-blank string
// data.
func (f *StringField) Filter(q cruddy.Query, data any) cruddy.Field {
	if s, ok := data.(string); ok && f.FilterType() != cruddy.FilterNone {
		if s = strings.TrimSpace(s); s != "" {
			q.Where(sql.FieldContainsFold(f.ID(), s))
		}
	}
	return f
}

var _ cruddy.Field = (*StringField)(nil)
