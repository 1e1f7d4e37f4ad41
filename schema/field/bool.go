package field

import (
	"strconv"
	"strings"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// BoolField is a checkbox field.
type BoolField struct {
	*Base
	builder[*BoolField]
}

// Bool returns a boolean field.
func Bool(id string) *BoolField {
	f := &BoolField{Base: newBase(ClassBoolean, id, cruddy.FilterComplex)}
	f.builder = builder[*BoolField]{base: f.Base, self: f}
	return f
}

// Process casts submitted input to a bool. Unchecked checkboxes are not
// submitted, so nil is false.
func (f *BoolField) Process(v any) any {
	b, _ := parseBool(v)
	return b
}

// Filter adds an equality predicate when data parses as a bool. Empty data
// means "any".
func (f *BoolField) Filter(q cruddy.Query, data any) cruddy.Field {
	if b, ok := parseBool(data); ok && !isBlank(data) {
		q.Where(sql.FieldEQ(f.ID(), b))
	}
	return f
}

// parseBool reads form and JSON representations of booleans. The second
// result is false when v is not recognized.
func parseBool(v any) (bool, bool) {
	switch v := v.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes", "y":
			return true, true
		case "0", "false", "off", "no", "n", "":
			return false, true
		}
		return false, false
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	case interface{ String() string }:
		b, err := strconv.ParseBool(v.String())
		return b, err == nil
	}
	return false, false
}

// isBlank reports whether filter data carries no value.
func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

var _ cruddy.Field = (*BoolField)(nil)
