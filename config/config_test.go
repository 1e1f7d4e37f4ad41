package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/config"
	"github.com/syssam/cruddy/schema/field"
	"github.com/syssam/cruddy/validation"
)

const definitions = `
entities:
  - id: users
    table: app_users
    fields:
      - {id: id, kind: primary}
      - id: name
        label: Full name
        rules: required|max:50
        placeholder: Jane Doe
      - id: email
        kind: email
        unique: true
        rules: required|email
      - id: password
        rules: required@create|min:8
        filter: none
      - id: active
        kind: bool
        required: false
      - id: age
        kind: integer
        step: 1
      - id: role
        kind: enum
        values: [admin, editor]
        meta: {help: Access level}
      - id: created_at
        kind: datetime
        layout: "2006-01-02"
        disabled: edit
  - id: posts
    primary_key: post_id
    mixins: [tenant, time]
    fields:
      - {id: post_id, kind: primary}
      - {id: body, kind: text, truncate: 20}
      - {id: token, kind: uuid, disabled: true}
`

func TestLoad(t *testing.T) {
	t.Parallel()

	c, err := config.Load(strings.NewReader(definitions))
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "posts"}, c.IDs())
	require.Len(t, c.Entities(), 2)

	users, ok := c.Entity("users")
	require.True(t, ok)
	assert.Equal(t, "app_users", users.Table())
	assert.Equal(t, "id", users.PrimaryKey())
	assert.Len(t, users.Fields(), 8)

	rules, ok := users.Validator().(*validation.RuleSet)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "email", "password"}, rules.Fields())

	f, _ := users.Field("name")
	name := f.(*field.StringField)
	assert.Equal(t, "Full name", name.LabelText())
	assert.Equal(t, true, name.IsRequired())
	assert.Equal(t, "Jane Doe", name.Get("placeholder"))

	f, _ = users.Field("email")
	email := f.(*field.StringField)
	assert.Equal(t, field.ClassEmail, email.Class())
	assert.True(t, email.IsUnique())

	f, _ = users.Field("password")
	password := f.(*field.StringField)
	assert.Equal(t, "create", password.IsRequired())
	assert.Equal(t, cruddy.FilterNone, password.FilterType())

	f, _ = users.Field("active")
	assert.Equal(t, false, f.(*field.BoolField).IsRequired())

	f, _ = users.Field("age")
	assert.Equal(t, int64(3), f.Process("3"))
	assert.Equal(t, 1.0, f.ToMap()["step"])

	f, _ = users.Field("role")
	role := f.(*field.EnumField)
	assert.Equal(t, []string{"admin", "editor"}, role.EnumValues())
	assert.Equal(t, "Access level", role.Get("help"))

	f, _ = users.Field("created_at")
	created := f.(*field.DateTimeField)
	assert.True(t, created.IsDisabled(cruddy.ActionEdit))
	assert.False(t, created.IsDisabled(cruddy.ActionCreate))
	assert.Equal(t, "2006-01-02", created.ToMap()["layout"])

	posts, ok := c.Entity("posts")
	require.True(t, ok)
	assert.Equal(t, "post_id", posts.PrimaryKey())
	assert.Len(t, posts.Fields(), 6)
	assert.Equal(t, "tenant_id", posts.Fields()[0].ID())
	f, _ = posts.Field("updated_at")
	assert.True(t, f.(*field.DateTimeField).IsDisabled(cruddy.ActionEdit))
	f, _ = posts.Field("token")
	assert.False(t, f.SendToRepository(cruddy.ActionCreate))
	f, _ = posts.Field("body")
	assert.Equal(t, field.ClassTextarea, f.(*field.StringField).Class())

	_, ok = c.Entity("comments")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown_key", "entities:\n  - id: users\n    colour: red\n", "colour"},
		{"unknown_kind", "entities:\n  - id: users\n    fields:\n      - {id: a, kind: blob}\n", `unknown kind "blob"`},
		{"enum_without_values", "entities:\n  - id: users\n    fields:\n      - {id: a, kind: enum}\n", "enum without values"},
		{"values_on_string", "entities:\n  - id: users\n    fields:\n      - {id: a, values: [x]}\n", "values do not apply"},
		{"step_on_enum", "entities:\n  - id: users\n    fields:\n      - {id: a, kind: enum, values: [x], step: 2}\n", "step does not apply"},
		{"bad_rules", "entities:\n  - id: users\n    fields:\n      - {id: a, rules: bogus}\n", `field "a"`},
		{"bad_disabled", "entities:\n  - id: users\n    fields:\n      - {id: a, disabled: [x]}\n", `field "a"`},
		{"bad_filter", "entities:\n  - id: users\n    fields:\n      - {id: a, filter: fuzzy}\n", `unknown filter type "fuzzy"`},
		{"empty_field_id", "entities:\n  - id: users\n    fields:\n      - {kind: string}\n", "empty id"},
		{"duplicate_field", "entities:\n  - id: users\n    fields:\n      - {id: a}\n      - {id: a}\n", "duplicate field"},
		{"duplicate_entity", "entities:\n  - id: users\n  - id: users\n", `duplicate entity "users"`},
		{"empty_entity_id", "entities:\n  - table: users\n", "empty id"},
		{"unknown_mixin", "entities:\n  - id: users\n    mixins: [audit]\n", `unknown mixin "audit"`},
		{"mixin_clash", "entities:\n  - id: users\n    mixins: [time]\n    fields:\n      - {id: created_at}\n", "duplicate field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	name := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(name, []byte(definitions), 0o644))
	c, err := config.LoadFile(name, config.WithTranslator(cruddy.TranslatorFunc(func(key string) (string, bool) {
		if key == "users.title" {
			return "Members", true
		}
		return "", false
	})))
	require.NoError(t, err)
	users, _ := c.Entity("users")
	assert.Equal(t, "Members", users.Title())

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err = config.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Entities())
}
