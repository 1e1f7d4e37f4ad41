// Package mixin provides reusable sets of field descriptors that can be
// shared by several entities.
//
// A mixin embeds Schema and overrides Fields:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []cruddy.Field {
//	    return []cruddy.Field{
//	        field.String("created_by").Disable(),
//	        field.String("updated_by").Disable(),
//	    }
//	}
//
// Mixin fields come before the entity's own fields:
//
//	users := entity.MustNew("users", entity.WithFields(
//	    append(mixin.Fields(mixin.Time{}, Audit{}), field.String("name"))...,
//	))
package mixin

import (
	"sort"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/schema/field"
)

// Mixin is a reusable set of fields.
type Mixin interface {
	Fields() []cruddy.Field
}

// Schema is the default implementation of Mixin. Custom mixins embed it.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []cruddy.Field { return nil }

var _ Mixin = (*Schema)(nil)

// Time adds the created_at and updated_at timestamps. Both are maintained
// by the database and never written by the repository.
type Time struct {
	Schema
}

// Fields returns the timestamp fields.
func (Time) Fields() []cruddy.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// CreateTime adds only the created_at timestamp.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []cruddy.Field {
	return []cruddy.Field{
		field.DateTime("created_at").Disable(),
	}
}

// UpdateTime adds only the updated_at timestamp.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []cruddy.Field {
	return []cruddy.Field{
		field.DateTime("updated_at").Disable(),
	}
}

// SoftDelete adds the deleted_at timestamp. Listings can be narrowed to
// deleted records with a date range filter on it.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []cruddy.Field {
	return []cruddy.Field{
		field.DateTime("deleted_at").Disable().Optional(),
	}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Fields returns the timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []cruddy.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}

// Tenant adds the tenant column used by privacy.TenantFilter. It is never
// written from input nor offered as a filter.
type Tenant struct {
	Schema
	// Column defaults to "tenant_id".
	Column string
}

// Fields returns the tenant field.
func (t Tenant) Fields() []cruddy.Field {
	column := t.Column
	if column == "" {
		column = "tenant_id"
	}
	return []cruddy.Field{
		field.Integer(column).Disable().FilterAs(cruddy.FilterNone),
	}
}

// Fields returns the fields of the mixins in order.
func Fields(mixins ...Mixin) []cruddy.Field {
	var fields []cruddy.Field
	for _, m := range mixins {
		fields = append(fields, m.Fields()...)
	}
	return fields
}

// AnnotateFields wraps a mixin and sets meta on all its fields:
//
//	mixin.AnnotateFields(mixin.Time{}, map[string]any{"hidden": true})
func AnnotateFields(m Mixin, meta map[string]any) Mixin {
	return fieldAnnotator{Mixin: m, meta: meta}
}

type fieldAnnotator struct {
	Mixin
	meta map[string]any
}

func (a fieldAnnotator) Fields() []cruddy.Field {
	fields := a.Mixin.Fields()
	for _, f := range fields {
		s, ok := f.(interface{ Set(string, any) })
		if !ok {
			continue
		}
		for k, v := range a.meta {
			s.Set(k, v)
		}
	}
	return fields
}

var named = map[string]Mixin{
	"time":             Time{},
	"create_time":      CreateTime{},
	"update_time":      UpdateTime{},
	"soft_delete":      SoftDelete{},
	"time_soft_delete": TimeSoftDelete{},
	"tenant":           Tenant{},
}

// Named returns the built-in mixin with the given name: time, create_time,
// update_time, soft_delete, time_soft_delete or tenant.
func Named(name string) (Mixin, bool) {
	m, ok := named[name]
	return m, ok
}

// Names returns the names accepted by Named in sorted order.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
