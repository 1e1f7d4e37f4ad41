// Package entity provides the schema node that owns a set of field
// descriptors. An entity binds its fields to a validator and a translator,
// and runs the per-field operations over whole records: extraction for
// forms and list columns, input processing for a repository action and
// filter application.
package entity

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/schema/attribute"
)

// Entity is a named set of fields.
type Entity struct {
	id         string
	table      string
	primaryKey string
	fields     []cruddy.Field
	index      map[string]int
	validator  cruddy.Validator
	translator cruddy.Translator
	logger     *slog.Logger
}

// Option configures an Entity.
type Option func(*Entity)

// WithValidator sets the validator fields consult for their required state.
func WithValidator(v cruddy.Validator) Option {
	return func(e *Entity) {
		e.validator = v
	}
}

// WithTranslator sets the translator used for labels and titles.
func WithTranslator(t cruddy.Translator) Option {
	return func(e *Entity) {
		e.translator = t
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Entity) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTable sets the table name. Default is the entity id.
func WithTable(name string) Option {
	return func(e *Entity) {
		e.table = name
	}
}

// WithPrimaryKey sets the primary key column. Default is "id".
func WithPrimaryKey(column string) Option {
	return func(e *Entity) {
		e.primaryKey = column
	}
}

// WithFields appends fields in display order.
func WithFields(fields ...cruddy.Field) Option {
	return func(e *Entity) {
		e.fields = append(e.fields, fields...)
	}
}

// New returns an entity with the given options. Fields are bound to the
// entity. It fails when two fields share an id or a field builder recorded
// a configuration error.
func New(id string, opts ...Option) (*Entity, error) {
	if id == "" {
		return nil, errors.New("entity: empty id")
	}
	e := &Entity{
		id:         id,
		table:      id,
		primaryKey: "id",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = make(map[string]int, len(e.fields))
	var errs []error
	for i, f := range e.fields {
		if f == nil {
			errs = append(errs, fmt.Errorf("entity %q: nil field at position %d", id, i))
			continue
		}
		if _, ok := e.index[f.ID()]; ok {
			errs = append(errs, fmt.Errorf("entity %q: %w: %q", id, cruddy.ErrDuplicateField, f.ID()))
			continue
		}
		e.index[f.ID()] = i
		if ce, ok := f.(interface{ Err() error }); ok && ce.Err() != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", id, ce.Err()))
		}
		if b, ok := f.(interface{ Bind(attribute.Owner) }); ok {
			b.Bind(e)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(id string, opts ...Option) *Entity {
	e, err := New(id, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Table returns the table name.
func (e *Entity) Table() string { return e.table }

// PrimaryKey returns the primary key column.
func (e *Entity) PrimaryKey() string { return e.primaryKey }

// Logger returns the entity logger.
func (e *Entity) Logger() *slog.Logger { return e.logger }

// Validator returns the entity validator, or nil.
func (e *Entity) Validator() cruddy.Validator { return e.validator }

// Translate looks up key in the entity translator.
func (e *Entity) Translate(key string) (string, bool) {
	if e.translator == nil {
		return "", false
	}
	return e.translator.Translate(key)
}

// Fields returns the fields in display order.
func (e *Entity) Fields() []cruddy.Field { return slices.Clone(e.fields) }

// Field returns the field with the given id.
func (e *Entity) Field(id string) (cruddy.Field, bool) {
	i, ok := e.index[id]
	if !ok {
		return nil, false
	}
	return e.fields[i], true
}

// Title returns the translated "{id}.title" message, or the humanized id.
func (e *Entity) Title() string {
	if s, ok := e.Translate(e.id + ".title"); ok {
		return s
	}
	return attribute.Humanize(e.id)
}

// ToMap returns the entity payload with the field payloads in order.
func (e *Entity) ToMap() map[string]any {
	fields := make([]map[string]any, 0, len(e.fields))
	for _, f := range e.fields {
		fields = append(fields, f.ToMap())
	}
	return map[string]any{
		"id":          e.id,
		"title":       e.Title(),
		"table":       e.table,
		"primary_key": e.primaryKey,
		"fields":      fields,
	}
}

// Extract returns the value of every field on rec, keyed by field id.
func (e *Entity) Extract(rec cruddy.Record) map[string]any {
	m := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		m[f.ID()] = f.Extract(rec)
	}
	return m
}

// Columns returns the list column value of every field on rec.
func (e *Entity) Columns(rec cruddy.Record) map[string]any {
	m := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		m[f.ID()] = f.ExtractForColumn(rec)
	}
	return m
}

// Process converts submitted input into the values written to the
// repository for action. Only fields sent to the repository for action
// and present in input take part. Each value is passed through the field's
// Process and dropped unless the field keeps it. Input keys that match no
// field are ignored.
func (e *Entity) Process(action cruddy.Action, input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for _, f := range e.fields {
		raw, ok := input[f.ID()]
		if !ok || !f.SendToRepository(action) {
			continue
		}
		v := f.Process(raw)
		if !f.Keep(v) {
			e.logger.Debug("entity: value dropped", "entity", e.id, "field", f.ID(), "action", action)
			continue
		}
		out[f.ID()] = v
	}
	return out
}

// ApplyFilters invokes Filter on every filterable field that has an entry
// in data. Fields with filter type "none" are skipped.
func (e *Entity) ApplyFilters(q cruddy.Query, data map[string]any) {
	for id := range data {
		if _, ok := e.index[id]; !ok {
			e.logger.Debug("entity: unknown filter ignored", "entity", e.id, "filter", id)
		}
	}
	for _, f := range e.fields {
		v, ok := data[f.ID()]
		if !ok || f.FilterType() == cruddy.FilterNone {
			continue
		}
		f.Filter(q, v)
	}
}

var _ attribute.Owner = (*Entity)(nil)
