package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
	"github.com/syssam/cruddy/record"
	"github.com/syssam/cruddy/schema/field"
)

// owner is a stub entity with a fixed message table and validator.
type owner struct {
	id        string
	messages  map[string]string
	validator cruddy.Validator
}

func (o *owner) ID() string                  { return o.id }
func (o *owner) Validator() cruddy.Validator { return o.validator }
func (o *owner) Translate(key string) (string, bool) {
	s, ok := o.messages[key]
	return s, ok
}

var actions = []cruddy.Action{cruddy.ActionCreate, cruddy.ActionEdit, cruddy.ActionDelete, cruddy.ActionView, "publish", ""}

func TestDisabled(t *testing.T) {
	t.Parallel()

	enabled := []*field.Base{field.New("name"), field.New("name").Enable(), field.New("name").SetDisabled(field.ForAction(""))}
	for _, f := range enabled {
		for _, a := range actions {
			assert.False(t, f.IsDisabled(a), a)
			assert.True(t, f.SendToRepository(a), a)
		}
		assert.Equal(t, false, f.ToMap()["disabled"])
	}

	f := field.New("name").Disable()
	for _, a := range actions {
		assert.True(t, f.IsDisabled(a), a)
		assert.False(t, f.SendToRepository(a), a)
	}
	assert.Equal(t, true, f.ToMap()["disabled"])

	f = field.New("name").DisableFor(cruddy.ActionEdit)
	assert.True(t, f.IsDisabled(cruddy.ActionEdit))
	assert.False(t, f.SendToRepository(cruddy.ActionEdit))
	assert.False(t, f.IsDisabled(cruddy.ActionCreate))
	assert.True(t, f.SendToRepository(cruddy.ActionCreate))
	assert.False(t, f.IsDisabled("Edit"), "action names match exactly")
	assert.Equal(t, "edit", f.ToMap()["disabled"])

	action, ok := f.Disabled().Action()
	assert.True(t, ok)
	assert.Equal(t, cruddy.ActionEdit, action)
	_, ok = field.Always.Action()
	assert.False(t, ok)
}

func TestParseDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want field.Disabled
	}{
		{nil, field.Never},
		{false, field.Never},
		{true, field.Always},
		{"true", field.Always},
		{"never", field.Never},
		{"", field.Never},
		{"edit", field.ForAction(cruddy.ActionEdit)},
		{cruddy.ActionCreate, field.ForAction(cruddy.ActionCreate)},
	}
	for _, tt := range tests {
		got, err := field.ParseDisabled(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
	_, err := field.ParseDisabled(42)
	assert.Error(t, err)
	assert.Equal(t, "for:edit", field.ForAction(cruddy.ActionEdit).String())
}

func TestLabel(t *testing.T) {
	t.Parallel()

	f := field.New("first_name")
	assert.Equal(t, "First name", f.LabelText(), "unbound field humanizes its id")

	o := &owner{id: "users", messages: map[string]string{}}
	f.Bind(o)
	assert.Equal(t, "First name", f.LabelText(), "no translations")

	o.messages["fields.first_name"] = "Given name"
	assert.Equal(t, "Given name", f.LabelText())
	o.messages["users.fields.first_name"] = "Forename"
	assert.Equal(t, "Forename", f.LabelText(), "entity namespace wins")

	f.Label("Full Name")
	assert.Equal(t, "Full Name", f.LabelText(), "untranslated explicit label")
	o.messages["Full Name"] = "Nom complet"
	assert.Equal(t, "Nom complet", f.LabelText())
}

func TestRequired(t *testing.T) {
	t.Parallel()

	f := field.New("email")
	assert.Equal(t, false, f.IsRequired(), "no owner")

	o := &owner{id: "users"}
	f.Bind(o)
	assert.Equal(t, false, f.IsRequired(), "owner without validator")

	for _, state := range []any{true, false, "edit", "sometimes"} {
		var asked string
		o.validator = cruddy.ValidatorFunc(func(id string) any {
			asked = id
			return state
		})
		assert.Equal(t, state, f.IsRequired())
		assert.Equal(t, "email", asked)
		assert.Equal(t, state, f.ToMap()["required"])
	}

	o.validator = cruddy.ValidatorFunc(func(string) any { return true })
	assert.Equal(t, false, f.Optional().IsRequired(), "explicit value wins")
	assert.Equal(t, true, f.Required().IsRequired())
}

func TestValidatorPanicsPropagate(t *testing.T) {
	t.Parallel()

	f := field.New("email")
	f.Bind(&owner{id: "users", validator: cruddy.ValidatorFunc(func(string) any { panic("misconfigured") })})
	assert.PanicsWithValue(t, "misconfigured", func() { f.IsRequired() })
}

func TestExtractProcessKeep(t *testing.T) {
	t.Parallel()

	f := field.New("first_name")
	assert.Nil(t, f.Extract(record.Map{"last_name": "Doe"}))
	assert.Nil(t, f.Extract(nil))
	assert.Equal(t, "Ann", f.Extract(record.Map{"first_name": "Ann"}))
	assert.Equal(t, "Ann", f.ExtractForColumn(record.Map{"first_name": "Ann"}))

	inputs := []any{nil, "", "  x ", 0, 3.5, []int{1}, map[string]any{"a": 1}, false}
	for _, in := range inputs {
		assert.Equal(t, in, f.Process(in))
		assert.True(t, f.Keep(in))
	}
}

func TestFilterNoop(t *testing.T) {
	t.Parallel()

	f := field.New("name")
	q := sql.Select().From("users")
	assert.Same(t, f, f.Filter(q, "ann"))
	assert.Empty(t, q.Predicates())
	assert.Equal(t, cruddy.FilterNone, f.FilterType())
}

func TestToMap(t *testing.T) {
	t.Parallel()

	f := field.New("first_name")
	assert.Equal(t, map[string]any{
		"id":          "first_name",
		"class":       field.ClassField,
		"required":    false,
		"unique":      false,
		"disabled":    false,
		"label":       "First name",
		"filter_type": "none",
	}, f.ToMap())

	f.Unique().Required().Label("Name").DisableFor(cruddy.ActionCreate).FilterAs(cruddy.FilterString).Meta("help", "Legal name")
	m := f.ToMap()
	assert.Equal(t, true, m["unique"])
	assert.Equal(t, true, m["required"])
	assert.Equal(t, "Name", m["label"])
	assert.Equal(t, "create", m["disabled"])
	assert.Equal(t, "string", m["filter_type"])
	assert.Equal(t, "Legal name", m["help"])
	assert.NoError(t, f.Err())
}

func TestFilterAsInvalid(t *testing.T) {
	t.Parallel()

	f := field.New("name").FilterAs("fuzzy")
	assert.Error(t, f.Err())
	assert.Equal(t, cruddy.FilterNone, f.FilterType())
}

func TestNewPanicsOnEmptyID(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { field.New("") })
	assert.Panics(t, func() { field.String("") })
}
