package entity_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect"
	"github.com/syssam/cruddy/dialect/sql"
	"github.com/syssam/cruddy/record"
	"github.com/syssam/cruddy/schema/entity"
	"github.com/syssam/cruddy/schema/field"
)

func users(t *testing.T, opts ...entity.Option) *entity.Entity {
	t.Helper()
	opts = append([]entity.Option{
		entity.WithTable("app_users"),
		entity.WithFields(
			field.Primary("id"),
			field.String("name"),
			field.Email("email").Unique(),
			field.Bool("active"),
			field.Enum("role", "admin", "editor"),
			field.DateTime("created_at").DisableFor(cruddy.ActionEdit),
			field.Computed("badge", func(r cruddy.Record) any {
				v, _ := r.Get("role")
				return v == "admin"
			}),
		),
	}, opts...)
	e, err := entity.New("users", opts...)
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	t.Parallel()

	e := users(t)
	assert.Equal(t, "users", e.ID())
	assert.Equal(t, "app_users", e.Table())
	assert.Equal(t, "id", e.PrimaryKey())
	assert.NotNil(t, e.Logger())
	assert.Len(t, e.Fields(), 7)
	f, ok := e.Field("email")
	require.True(t, ok)
	assert.Equal(t, "email", f.ID())
	_, ok = e.Field("missing")
	assert.False(t, ok)

	// Fields are bound to the entity.
	b, ok := f.(*field.StringField)
	require.True(t, ok)
	assert.Same(t, e, b.Owner())

	_, err := entity.New("")
	assert.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := entity.New("users", entity.WithFields(field.String("name"), field.Text("name")))
	assert.ErrorIs(t, err, cruddy.ErrDuplicateField)

	_, err = entity.New("users", entity.WithFields(field.String("name").FilterAs("fuzzy")))
	assert.ErrorContains(t, err, `unknown filter type "fuzzy"`)

	_, err = entity.New("users", entity.WithFields(nil))
	assert.Error(t, err)

	assert.Panics(t, func() {
		entity.MustNew("users", entity.WithFields(field.String("a"), field.String("a")))
	})
}

func TestTitleAndLabels(t *testing.T) {
	t.Parallel()

	e := users(t)
	assert.Equal(t, "Users", e.Title())

	messages := map[string]string{
		"users.title":      "Members",
		"fields.name":      "Full name",
		"users.fields.bio": "unused",
	}
	e = users(t, entity.WithTranslator(cruddy.TranslatorFunc(func(key string) (string, bool) {
		s, ok := messages[key]
		return s, ok
	})))
	assert.Equal(t, "Members", e.Title())
	f, _ := e.Field("name")
	assert.Equal(t, "Full name", f.ToMap()["label"])
	f, _ = e.Field("created_at")
	assert.Equal(t, "Created at", f.ToMap()["label"])
}

func TestRequiredFromValidator(t *testing.T) {
	t.Parallel()

	e := users(t, entity.WithValidator(cruddy.ValidatorFunc(func(id string) any {
		switch id {
		case "email":
			return true
		case "name":
			return "create"
		}
		return false
	})))
	m := e.ToMap()
	fields := m["fields"].([]map[string]any)
	require.Len(t, fields, 7)
	byID := make(map[string]map[string]any)
	for _, f := range fields {
		byID[f["id"].(string)] = f
	}
	assert.Equal(t, true, byID["email"]["required"])
	assert.Equal(t, "create", byID["name"]["required"])
	assert.Equal(t, false, byID["active"]["required"])
	assert.Equal(t, "id", fields[0]["id"], "fields keep declaration order")
	assert.Equal(t, "users", m["id"])
	assert.Equal(t, "app_users", m["table"])
	assert.Equal(t, "id", m["primary_key"])
}

func TestExtractAndColumns(t *testing.T) {
	t.Parallel()

	e := users(t)
	rec := record.Map{"id": 1, "name": "Ann", "role": "admin"}
	got := e.Extract(rec)
	assert.Equal(t, 1, got["id"])
	assert.Equal(t, "Ann", got["name"])
	assert.Nil(t, got["email"])
	assert.Equal(t, true, got["badge"])
	assert.Len(t, got, 7)
	assert.Equal(t, true, e.Columns(rec)["badge"])
}

func TestProcess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := users(t, entity.WithLogger(logger))
	input := map[string]any{
		"id":         9,
		"name":       "  Ann ",
		"active":     "on",
		"role":       "root",
		"created_at": "2024-01-02",
		"badge":      true,
		"unknown":    "x",
	}

	got := e.Process(cruddy.ActionCreate, input)
	assert.Equal(t, "Ann", got["name"])
	assert.Equal(t, true, got["active"])
	assert.Contains(t, got, "created_at")
	assert.NotContains(t, got, "id", "primary key is disabled")
	assert.NotContains(t, got, "badge", "computed fields are disabled")
	assert.NotContains(t, got, "role", "rejected enum value is dropped")
	assert.NotContains(t, got, "email", "absent input is not sent")
	assert.NotContains(t, got, "unknown")
	assert.Contains(t, buf.String(), "field=role")

	got = e.Process(cruddy.ActionEdit, input)
	assert.NotContains(t, got, "created_at", "disabled for edit")
	assert.Equal(t, "Ann", got["name"])
}

func TestApplyFilters(t *testing.T) {
	t.Parallel()

	e := users(t)
	q := sql.Select("*").From(e.Table()).SetDialect(dialect.Postgres)
	e.ApplyFilters(q, map[string]any{
		"name":   "ann",
		"active": "1",
		"id":     5,
		"badge":  true,
		"nope":   "x",
	})
	query, args := q.Query()
	assert.Equal(t, `SELECT * FROM "app_users" WHERE LOWER("name") LIKE $1 AND "active" = $2`, query)
	assert.Equal(t, []any{"%ann%", true}, args)
}
