// Package config builds entities from YAML definitions.
//
//	entities:
//	  - id: users
//	    table: app_users
//	    fields:
//	      - {id: id, kind: primary}
//	      - id: email
//	        kind: email
//	        unique: true
//	        rules: required|email|max:255
//	      - id: role
//	        kind: enum
//	        values: [admin, editor]
//	      - id: published_at
//	        kind: datetime
//	        disabled: edit
//	    mixins: [time]
//
// Mixin fields (see the mixin package for the names) come before the
// declared fields.
//
// Field rules use the validation syntax and become the entity validator,
// which also drives the required flag of fields without an explicit
// "required" key.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/schema/entity"
	"github.com/syssam/cruddy/schema/field"
	"github.com/syssam/cruddy/schema/mixin"
	"github.com/syssam/cruddy/validation"
)

// File is the root of a definition document.
type File struct {
	Entities []Entity `yaml:"entities"`
}

// Entity defines one entity.
type Entity struct {
	ID         string   `yaml:"id"`
	Table      string   `yaml:"table"`
	PrimaryKey string   `yaml:"primary_key"`
	Mixins     []string `yaml:"mixins"`
	Fields     []Field  `yaml:"fields"`
}

// Field defines one field. Kind selects the constructor: string, text,
// email, bool, number, integer, enum, datetime, uuid or primary.
type Field struct {
	ID       string         `yaml:"id"`
	Kind     string         `yaml:"kind"`
	Label    string         `yaml:"label"`
	Required *bool          `yaml:"required"`
	Unique   bool           `yaml:"unique"`
	Disabled any            `yaml:"disabled"`
	Filter   string         `yaml:"filter"`
	Meta     map[string]any `yaml:"meta"`
	Rules    string         `yaml:"rules"`

	// Kind specific settings.
	Values      []string `yaml:"values"`
	Layout      string   `yaml:"layout"`
	Truncate    int      `yaml:"truncate"`
	Placeholder string   `yaml:"placeholder"`
	Step        float64  `yaml:"step"`
}

// Option configures the entities built by Load.
type Option func(*options)

type options struct {
	translator cruddy.Translator
	logger     *slog.Logger
}

// WithTranslator sets the translator of every entity.
func WithTranslator(t cruddy.Translator) Option {
	return func(o *options) {
		o.translator = t
	}
}

// WithLogger sets the logger of every entity.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Config is a set of entities loaded from definitions.
type Config struct {
	entities []*entity.Entity
	index    map[string]*entity.Entity
}

// Entities returns the entities in definition order.
func (c *Config) Entities() []*entity.Entity { return c.entities }

// Entity returns the entity with the given id.
func (c *Config) Entity(id string) (*entity.Entity, bool) {
	e, ok := c.index[id]
	return e, ok
}

// IDs returns the entity ids in definition order.
func (c *Config) IDs() []string {
	ids := make([]string, len(c.entities))
	for i, e := range c.entities {
		ids[i] = e.ID()
	}
	return ids
}

// LoadFile reads the definitions of the named file.
func LoadFile(name string, opts ...Option) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Load reads a definition document and builds its entities. Unknown keys
// are rejected.
func Load(r io.Reader, opts ...Option) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Build(file, opts...)
}

// Build builds the entities of a decoded document.
func Build(file File, opts ...Option) (*Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	c := &Config{index: make(map[string]*entity.Entity, len(file.Entities))}
	var errs []error
	for _, def := range file.Entities {
		if _, ok := c.index[def.ID]; ok {
			errs = append(errs, fmt.Errorf("config: duplicate entity %q", def.ID))
			continue
		}
		e, err := buildEntity(def, o)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.entities = append(c.entities, e)
		c.index[e.ID()] = e
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func buildEntity(def Entity, o *options) (*entity.Entity, error) {
	rules := validation.New()
	fields := make([]cruddy.Field, 0, len(def.Fields))
	var errs []error
	for _, name := range def.Mixins {
		m, ok := mixin.Named(name)
		if !ok {
			errs = append(errs, fmt.Errorf("config: entity %q: unknown mixin %q, expected one of %v", def.ID, name, mixin.Names()))
			continue
		}
		fields = append(fields, m.Fields()...)
	}
	for _, fd := range def.Fields {
		f, err := buildField(fd)
		if err == nil && fd.Rules != "" {
			err = rules.Set(fd.ID, fd.Rules)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("config: entity %q: field %q: %w", def.ID, fd.ID, err))
			continue
		}
		fields = append(fields, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	eopts := []entity.Option{
		entity.WithValidator(rules),
		entity.WithTranslator(o.translator),
		entity.WithLogger(o.logger),
		entity.WithFields(fields...),
	}
	if def.Table != "" {
		eopts = append(eopts, entity.WithTable(def.Table))
	}
	if def.PrimaryKey != "" {
		eopts = append(eopts, entity.WithPrimaryKey(def.PrimaryKey))
	}
	e, err := entity.New(def.ID, eopts...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return e, nil
}

func buildField(fd Field) (cruddy.Field, error) {
	if strings.TrimSpace(fd.ID) == "" {
		return nil, errors.New("empty id")
	}
	if err := checkSettings(fd); err != nil {
		return nil, err
	}
	switch strings.ToLower(fd.Kind) {
	case "string", "":
		return configure(stringField(field.String(fd.ID), fd), fd)
	case "text":
		return configure(stringField(field.Text(fd.ID), fd), fd)
	case "email":
		return configure(stringField(field.Email(fd.ID), fd), fd)
	case "bool", "boolean":
		return configure(field.Bool(fd.ID), fd)
	case "number":
		return configure(numberField(field.Number(fd.ID), fd), fd)
	case "integer":
		return configure(numberField(field.Integer(fd.ID), fd), fd)
	case "enum":
		if len(fd.Values) == 0 {
			return nil, errors.New("enum without values")
		}
		return configure(field.Enum(fd.ID, fd.Values...), fd)
	case "datetime":
		d := field.DateTime(fd.ID)
		if fd.Layout != "" {
			d.Layout(fd.Layout)
		}
		return configure(d, fd)
	case "uuid":
		return configure(field.UUID(fd.ID), fd)
	case "primary":
		return configure(field.Primary(fd.ID), fd)
	}
	return nil, fmt.Errorf("unknown kind %q", fd.Kind)
}

// checkSettings rejects kind specific settings given to other kinds.
func checkSettings(fd Field) error {
	kind := strings.ToLower(fd.Kind)
	isString := kind == "" || kind == "string" || kind == "text" || kind == "email"
	switch {
	case len(fd.Values) > 0 && kind != "enum":
		return fmt.Errorf("values do not apply to %s fields", fd.Kind)
	case fd.Layout != "" && kind != "datetime":
		return fmt.Errorf("layout does not apply to %s fields", fd.Kind)
	case fd.Step != 0 && kind != "number" && kind != "integer":
		return fmt.Errorf("step does not apply to %s fields", fd.Kind)
	case (fd.Truncate != 0 || fd.Placeholder != "") && !isString:
		return fmt.Errorf("truncate and placeholder do not apply to %s fields", fd.Kind)
	}
	return nil
}

func stringField(f *field.StringField, fd Field) *field.StringField {
	if fd.Truncate > 0 {
		f.Truncate(fd.Truncate)
	}
	if fd.Placeholder != "" {
		f.Placeholder(fd.Placeholder)
	}
	return f
}

func numberField(f *field.NumberField, fd Field) *field.NumberField {
	if fd.Step != 0 {
		f.Step(fd.Step)
	}
	return f
}

// configurable is implemented by every field kind through its builder.
type configurable[T any] interface {
	cruddy.Field
	Label(string) T
	Required() T
	Optional() T
	Unique() T
	SetDisabled(field.Disabled) T
	FilterAs(cruddy.FilterType) T
	Meta(string, any) T
}

// configure applies the settings shared by all kinds.
func configure[T configurable[T]](f T, fd Field) (cruddy.Field, error) {
	if fd.Label != "" {
		f.Label(fd.Label)
	}
	if fd.Required != nil {
		if *fd.Required {
			f.Required()
		} else {
			f.Optional()
		}
	}
	if fd.Unique {
		f.Unique()
	}
	if fd.Disabled != nil {
		d, err := field.ParseDisabled(fd.Disabled)
		if err != nil {
			return nil, err
		}
		f.SetDisabled(d)
	}
	if fd.Filter != "" {
		f.FilterAs(cruddy.FilterType(fd.Filter))
	}
	for k, v := range fd.Meta {
		f.Meta(k, v)
	}
	return f, nil
}
