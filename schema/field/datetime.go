package field

import (
	"strings"
	"time"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// Accepted input layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04",
	time.DateOnly,
}

// DateTimeField holds a point in time.
type DateTimeField struct {
	*Base
	builder[*DateTimeField]

	layout string
}

// DateTime returns a date-time field rendered with time.DateTime in list
// columns.
func DateTime(id string) *DateTimeField {
	f := &DateTimeField{
		Base:   newBase(ClassDateTime, id, cruddy.FilterComplex),
		layout: time.DateTime,
	}
	f.builder = builder[*DateTimeField]{base: f.Base, self: f}
	return f
}

// Layout sets the layout used to format list column values.
func (f *DateTimeField) Layout(layout string) *DateTimeField {
	if layout != "" {
		f.layout = layout
	}
	return f
}

// ExtractForColumn formats time values with the configured layout.
func (f *DateTimeField) ExtractForColumn(rec cruddy.Record) any {
	switch v := f.Extract(rec).(type) {
	case time.Time:
		return v.Format(f.layout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(f.layout)
	default:
		return v
	}
}

// Process parses submitted input into a time.Time, or nil when the input is
// blank or not a recognized date.
func (f *DateTimeField) Process(v any) any {
	if t, ok := parseTime(v); ok {
		return t
	}
	return nil
}

// Keep drops values that Process rejected.
func (f *DateTimeField) Keep(v any) bool { return v != nil }

// Filter restricts the field to a {"from", "to"} range. Either bound may be
// omitted.
func (f *DateTimeField) Filter(q cruddy.Query, data any) cruddy.Field {
	from, to, ok := rangeBounds(data)
	if !ok {
		return f
	}
	if t, ok := parseTime(from); ok {
		q.Where(sql.FieldGTE(f.ID(), t))
	}
	if t, ok := parseTime(to); ok {
		q.Where(sql.FieldLTE(f.ID(), t))
	}
	return f
}

// ToMap adds the display layout to the base payload.
func (f *DateTimeField) ToMap() map[string]any {
	m := f.Base.ToMap()
	m["layout"] = f.layout
	return m
}

func parseTime(v any) (time.Time, bool) {
	switch v := v.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

var _ cruddy.Field = (*DateTimeField)(nil)
