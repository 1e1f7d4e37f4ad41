package field

import "github.com/syssam/cruddy"

// PrimaryField is the primary key of an entity. It is displayed but never
// written.
type PrimaryField struct {
	*Base
	builder[*PrimaryField]
}

// Primary returns a primary key field, disabled for every action.
func Primary(id string) *PrimaryField {
	f := &PrimaryField{Base: newBase(ClassPrimary, id, cruddy.FilterNone)}
	f.builder = builder[*PrimaryField]{base: f.Base, self: f}
	return f.Disable()
}

// Filter leaves q untouched.
func (f *PrimaryField) Filter(cruddy.Query, any) cruddy.Field { return f }

// ComputeFunc derives a value from a record.
type ComputeFunc func(rec cruddy.Record) any

// ComputedField is a read-only value derived from the record, such as a
// full name built from first and last names.
type ComputedField struct {
	*Base
	builder[*ComputedField]

	fn ComputeFunc
}

// Computed returns a computed field. It panics if fn is nil.
func Computed(id string, fn ComputeFunc) *ComputedField {
	if fn == nil {
		panic("field: nil compute func for " + id)
	}
	f := &ComputedField{Base: newBase(ClassComputed, id, cruddy.FilterNone), fn: fn}
	f.builder = builder[*ComputedField]{base: f.Base, self: f}
	return f.Disable()
}

// Extract returns the computed value, or nil when rec is nil.
func (f *ComputedField) Extract(rec cruddy.Record) any {
	if rec == nil {
		return nil
	}
	return f.fn(rec)
}

// ExtractForColumn returns the computed value.
func (f *ComputedField) ExtractForColumn(rec cruddy.Record) any {
	return f.Extract(rec)
}

// Filter leaves q untouched.
func (f *ComputedField) Filter(cruddy.Query, any) cruddy.Field { return f }

// Keep reports false; computed values are never stored.
func (f *ComputedField) Keep(any) bool { return false }

var (
	_ cruddy.Field = (*PrimaryField)(nil)
	_ cruddy.Field = (*ComputedField)(nil)
)
