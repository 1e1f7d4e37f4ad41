package field_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect"
	"github.com/syssam/cruddy/dialect/sql"
	"github.com/syssam/cruddy/record"
	"github.com/syssam/cruddy/schema/field"
)

// filtered applies data to f and returns the rendered WHERE clause.
func filtered(f cruddy.Field, data any) (string, []any) {
	q := sql.Select("id").From("t").SetDialect(dialect.Postgres)
	f.Filter(q, data)
	return q.Query()
}

func TestString(t *testing.T) {
	t.Parallel()

	f := field.String("name").Label("Name").Required()
	assert.IsType(t, &field.StringField{}, f, "builder keeps the concrete kind")
	assert.Equal(t, field.ClassInput, f.Class())
	assert.Equal(t, cruddy.FilterString, f.FilterType())
	assert.Equal(t, "Ann", f.Process("  Ann "))
	assert.Equal(t, 5, f.Process(5))

	query, args := filtered(f, " AnN ")
	assert.Equal(t, `SELECT "id" FROM "t" WHERE LOWER("name") LIKE $1`, query)
	assert.Equal(t, []any{"%ann%"}, args)

	query, _ = filtered(f, "   ")
	assert.Equal(t, `SELECT "id" FROM "t"`, query)
	query, _ = filtered(f, 42)
	assert.Equal(t, `SELECT "id" FROM "t"`, query)
	query, _ = filtered(field.String("name").FilterAs(cruddy.FilterNone), "ann")
	assert.Equal(t, `SELECT "id" FROM "t"`, query)

	assert.Equal(t, field.ClassEmail, field.Email("email").Class())
	assert.Equal(t, "x", field.Email("email").Placeholder("x").ToMap()["placeholder"])
}

func TestTextTruncates(t *testing.T) {
	t.Parallel()

	f := field.Text("bio").Truncate(5)
	assert.Equal(t, field.ClassTextarea, f.Class())
	rec := record.Map{"bio": "héllo world"}
	assert.Equal(t, "héllo…", f.ExtractForColumn(rec))
	assert.Equal(t, "héllo world", f.Extract(rec), "edit value is untouched")
	assert.Equal(t, "short", f.ExtractForColumn(record.Map{"bio": "short"}))
	assert.Equal(t, "héllo world", f.Truncate(0).ExtractForColumn(rec))
}

func TestBool(t *testing.T) {
	t.Parallel()

	f := field.Bool("active")
	assert.Equal(t, cruddy.FilterComplex, f.FilterType())
	for in, want := range map[any]bool{"1": true, "on": true, "TRUE": true, "0": false, "off": false, "": false, 1: true, 0: false} {
		assert.Equal(t, want, f.Process(in), "%v", in)
	}
	assert.Equal(t, false, f.Process(nil))
	assert.Equal(t, true, f.Process(true))

	query, args := filtered(f, "1")
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "active" = $1`, query)
	assert.Equal(t, []any{true}, args)
	query, args = filtered(f, false)
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "active" = $1`, query)
	assert.Equal(t, []any{false}, args)
	for _, data := range []any{nil, "", "maybe"} {
		query, _ = filtered(f, data)
		assert.Equal(t, `SELECT "id" FROM "t"`, query, "%v", data)
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()

	n := field.Number("price").Step(0.01)
	assert.Equal(t, 9.5, n.Process("9.5"))
	assert.Equal(t, 3.0, n.Process(3))
	assert.Equal(t, 2.5, n.Process(json.Number("2.5")))
	assert.Nil(t, n.Process(""))
	assert.Nil(t, n.Process(nil))
	assert.Equal(t, "abc", n.Process("abc"), "invalid input is left to the validator")
	m := n.ToMap()
	assert.Equal(t, false, m["integer"])
	assert.Equal(t, 0.01, m["step"])

	i := field.Integer("age")
	assert.Equal(t, field.ClassInteger, i.Class())
	assert.Equal(t, int64(42), i.Process(" 42 "))
	assert.Equal(t, int64(7), i.Process(7.0))
	assert.Equal(t, 7.5, i.Process(7.5))
	assert.Equal(t, "1e30", i.Process("1e30"), "out of range input is left to the validator")
	assert.Equal(t, 1e19, i.Process(1e19))
	assert.Equal(t, -1e19, i.Process(-1e19))
	assert.Equal(t, int64(-1<<53), i.Process(float64(-1<<53)))
	assert.Equal(t, true, i.ToMap()["integer"])

	query, args := filtered(i, map[string]any{"from": "18", "to": 65})
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "age" >= $1 AND "age" <= $2`, query)
	assert.Equal(t, []any{int64(18), int64(65)}, args)

	query, args = filtered(i, map[string]string{"to": "30"})
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "age" <= $1`, query)
	assert.Equal(t, []any{int64(30)}, args)

	query, args = filtered(n, "12.5")
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "price" = $1`, query)
	assert.Equal(t, []any{12.5}, args)

	query, _ = filtered(n, map[string]any{"from": "x"})
	assert.Equal(t, `SELECT "id" FROM "t"`, query)
}

func TestEnum(t *testing.T) {
	t.Parallel()

	f := field.Enum("status", "draft", "in_review", "draft").Values("published")
	require.NoError(t, f.Err())
	assert.Equal(t, []string{"draft", "in_review", "published"}, f.EnumValues())
	assert.Equal(t, "draft", f.Process("draft"))
	assert.Nil(t, f.Process("deleted"))
	assert.Nil(t, f.Process(nil))
	assert.True(t, f.Keep("draft"))
	assert.False(t, f.Keep(nil))

	query, args := filtered(f, []any{"draft", "bogus", "published"})
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "status" IN ($1, $2)`, query)
	assert.Equal(t, []any{"draft", "published"}, args)
	query, _ = filtered(f, "bogus")
	assert.Equal(t, `SELECT "id" FROM "t"`, query)

	f.Bind(&owner{id: "posts", messages: map[string]string{"posts.enums.status.draft": "Brouillon"}})
	assert.Equal(t, []map[string]any{
		{"value": "draft", "label": "Brouillon"},
		{"value": "in_review", "label": "In Review"},
		{"value": "published", "label": "Published"},
	}, f.ToMap()["options"])

	assert.Error(t, field.Enum("status", "").Err())
}

func TestDateTime(t *testing.T) {
	t.Parallel()

	f := field.DateTime("created_at").Layout(time.DateOnly)
	want := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, want, f.Process("2024-03-01T10:30:00Z"))
	assert.Equal(t, want, f.Process("2024-03-01 10:30:00"))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.Process("2024-03-01"))
	assert.Nil(t, f.Process("yesterday"))
	assert.Nil(t, f.Process(""))
	assert.False(t, f.Keep(nil))
	assert.Equal(t, "2024-03-01", f.ExtractForColumn(record.Map{"created_at": want}))
	assert.Equal(t, want, f.Extract(record.Map{"created_at": want}))
	assert.Equal(t, time.DateOnly, f.ToMap()["layout"])

	query, args := filtered(f, map[string]any{"from": "2024-01-01", "to": ""})
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "created_at" >= $1`, query)
	assert.Equal(t, []any{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, args)
	query, _ = filtered(f, "2024-01-01")
	assert.Equal(t, `SELECT "id" FROM "t"`, query)
}

func TestUUID(t *testing.T) {
	t.Parallel()

	f := field.UUID("token")
	id := uuid.New()
	assert.Equal(t, id, f.Process(id.String()))
	assert.Equal(t, uuid.Nil, f.Process("not-a-uuid"))
	assert.True(t, f.Keep(id))
	assert.False(t, f.Keep(uuid.Nil))
	assert.False(t, f.Keep(nil))
	assert.Equal(t, id.String(), f.ExtractForColumn(record.Map{"token": id[:]}))

	query, args := filtered(f, id.String())
	assert.Equal(t, `SELECT "id" FROM "t" WHERE "token" = $1`, query)
	assert.Equal(t, []any{id.String()}, args)
	query, _ = filtered(f, "nope")
	assert.Equal(t, `SELECT "id" FROM "t"`, query)
}

func TestPrimaryAndComputed(t *testing.T) {
	t.Parallel()

	p := field.Primary("id")
	assert.Equal(t, cruddy.FilterNone, p.FilterType())
	for _, a := range actions {
		assert.False(t, p.SendToRepository(a))
	}
	assert.True(t, p.Enable().SendToRepository(cruddy.ActionCreate))

	c := field.Computed("full_name", func(r cruddy.Record) any {
		first, _ := r.Get("first_name")
		last, _ := r.Get("last_name")
		return first.(string) + " " + last.(string)
	})
	rec := record.Map{"first_name": "Ann", "last_name": "Lee"}
	assert.Equal(t, "Ann Lee", c.Extract(rec))
	assert.Equal(t, "Ann Lee", c.ExtractForColumn(rec))
	assert.Nil(t, c.Extract(nil))
	assert.False(t, c.Keep("Ann Lee"))
	assert.True(t, c.IsDisabled(cruddy.ActionEdit))
	assert.Equal(t, "Full name", c.ToMap()["label"])
	assert.Panics(t, func() { field.Computed("x", nil) })
}
