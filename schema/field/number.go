package field

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// NumberField holds a numeric value. Integer fields store int64, the others
// float64.
type NumberField struct {
	*Base
	builder[*NumberField]

	integer bool
}

// Number returns a decimal number field.
func Number(id string) *NumberField {
	return newNumber(ClassNumber, id, false)
}

// Integer returns an integer field.
func Integer(id string) *NumberField {
	return newNumber(ClassInteger, id, true)
}

func newNumber(class, id string, integer bool) *NumberField {
	f := &NumberField{Base: newBase(class, id, cruddy.FilterComplex), integer: integer}
	f.builder = builder[*NumberField]{base: f.Base, self: f}
	return f
}

// Step sets the input step, e.g. 0.01 for prices.
func (f *NumberField) Step(v float64) *NumberField {
	f.Set("step", v)
	return f
}

// Process parses submitted input. Blank input becomes nil; input that is
// not a number is returned as is for the validator to reject.
func (f *NumberField) Process(v any) any {
	if isBlank(v) {
		return nil
	}
	if n, ok := f.parse(v); ok {
		return n
	}
	return v
}

// Filter accepts either a single value (equality) or a range given as a
// map with "from" and/or "to" bounds.
func (f *NumberField) Filter(q cruddy.Query, data any) cruddy.Field {
	if from, to, ok := rangeBounds(data); ok {
		if n, ok := f.parse(from); ok && !isBlank(from) {
			q.Where(sql.FieldGTE(f.ID(), n))
		}
		if n, ok := f.parse(to); ok && !isBlank(to) {
			q.Where(sql.FieldLTE(f.ID(), n))
		}
		return f
	}
	if n, ok := f.parse(data); ok && !isBlank(data) {
		q.Where(sql.FieldEQ(f.ID(), n))
	}
	return f
}

// ToMap adds the "integer" flag to the base payload.
func (f *NumberField) ToMap() map[string]any {
	m := f.Base.ToMap()
	m["integer"] = f.integer
	return m
}

func (f *NumberField) parse(v any) (any, bool) {
	var x float64
	switch v := v.(type) {
	case int:
		x = float64(v)
	case int32:
		x = float64(v)
	case int64:
		if f.integer {
			return v, true
		}
		x = float64(v)
	case float32:
		x = float64(v)
	case float64:
		x = v
	case json.Number:
		return f.parse(v.String())
	case string:
		s := strings.TrimSpace(v)
		if f.integer {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, true
			}
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		x = p
	default:
		return nil, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, false
	}
	if f.integer {
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return nil, false
		}
		return int64(x), true
	}
	return x, true
}

// rangeBounds extracts "from" and "to" from map shaped filter data.
func rangeBounds(data any) (from, to any, ok bool) {
	switch m := data.(type) {
	case map[string]any:
		return m["from"], m["to"], true
	case map[string]string:
		return m["from"], m["to"], true
	}
	return nil, nil, false
}

var _ cruddy.Field = (*NumberField)(nil)
