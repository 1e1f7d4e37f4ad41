package field

import (
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// UUIDField holds a UUID value.
type UUIDField struct {
	*Base
	builder[*UUIDField]
}

// UUID returns a UUID field.
func UUID(id string) *UUIDField {
	f := &UUIDField{Base: newBase(ClassUUID, id, cruddy.FilterComplex)}
	f.builder = builder[*UUIDField]{base: f.Base, self: f}
	return f
}

// ExtractForColumn renders UUIDs in their canonical string form.
func (f *UUIDField) ExtractForColumn(rec cruddy.Record) any {
	v := f.Extract(rec)
	if u, ok := parseUUID(v); ok {
		return u.String()
	}
	return v
}

// Process parses submitted input. Input that is not a UUID becomes uuid.Nil.
func (f *UUIDField) Process(v any) any {
	u, _ := parseUUID(v)
	return u
}

// Keep drops uuid.Nil.
func (f *UUIDField) Keep(v any) bool {
	u, ok := v.(uuid.UUID)
	return ok && u != uuid.Nil
}

// Filter adds an equality predicate for a valid UUID.
func (f *UUIDField) Filter(q cruddy.Query, data any) cruddy.Field {
	if u, ok := parseUUID(data); ok && u != uuid.Nil {
		q.Where(sql.FieldEQ(f.ID(), u.String()))
	}
	return f
}

func parseUUID(v any) (uuid.UUID, bool) {
	var (
		u   uuid.UUID
		err error
	)
	switch v := v.(type) {
	case uuid.UUID:
		return v, true
	case string:
		u, err = uuid.Parse(strings.TrimSpace(v))
	case []byte:
		if len(v) == 16 {
			u, err = uuid.FromBytes(v)
		} else {
			u, err = uuid.ParseBytes(v)
		}
	default:
		return uuid.Nil, false
	}
	if err != nil {
		return uuid.Nil, false
	}
	return u, true
}

var _ cruddy.Field = (*UUIDField)(nil)
