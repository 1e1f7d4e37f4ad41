// Package record provides cruddy.Record accessors over maps, structs and SQL
// rows.
package record

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// Map is a record backed by a map of attribute values.
type Map map[string]any

// Get implements cruddy.Record.
func (m Map) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Struct returns a record reading the exported fields of v, a struct or a
// pointer to one. Attribute names come from the "db" tag, then the "json"
// tag, then the snake_case form of the Go field name. A "-" tag hides the
// field. It panics if v is not a struct.
func Struct(v any) cruddy.Record {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			panic(fmt.Sprintf("record: nil %T", v))
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic(fmt.Sprintf("record: %T is not a struct", v))
	}
	return structRecord{v: rv, fields: fieldsOf(rv.Type())}
}

type structRecord struct {
	v      reflect.Value
	fields map[string][]int
}

func (r structRecord) Get(name string) (any, bool) {
	idx, ok := r.fields[name]
	if !ok {
		return nil, false
	}
	f, err := r.v.FieldByIndexErr(idx)
	if err != nil {
		// nil embedded pointer
		return nil, false
	}
	return f.Interface(), true
}

// rules snake-cases Go field names and humanizes identifiers, keeping
// common acronyms whole ("UserID" is "user_id", not "user_i_d").
var (
	rules    = inflect.NewDefaultRuleset()
	acronyms = make(map[string]bool)
)

func init() {
	// Longer acronyms first: "UUID" must not be rewritten as "UUId".
	for _, w := range []string{"UUID", "HTML", "HTTP", "JSON", "API", "SQL", "URL", "ID", "IP"} {
		AddAcronym(w)
	}
}

// AddAcronym registers an upper case acronym kept whole by struct field
// mapping and Humanize. It is not safe for concurrent use and is meant to
// be called from init functions.
func AddAcronym(word string) {
	rules.AddAcronym(word)
	acronyms[strings.ToLower(word)] = true
}

// Humanize turns an identifier into a capitalized phrase. A trailing "_id"
// is dropped and acronyms stay upper case:
//
//	Humanize("first_name") // "First name"
//	Humanize("UserID")     // "User ID"
//	Humanize("api_key")    // "API key"
func Humanize(id string) string {
	words := strings.Fields(rules.Humanize(id))
	for i, w := range words {
		if acronyms[strings.ToLower(w)] {
			words[i] = strings.ToUpper(w)
		}
	}
	return strings.Join(words, " ")
}

var typeFields sync.Map // reflect.Type => map[string][]int

func fieldsOf(t reflect.Type) map[string][]int {
	if m, ok := typeFields.Load(t); ok {
		return m.(map[string][]int)
	}
	m := make(map[string][]int)
	collect(t, nil, m)
	actual, _ := typeFields.LoadOrStore(t, m)
	return actual.(map[string][]int)
}

func collect(t reflect.Type, index []int, m map[string][]int) {
	for i := range t.NumField() {
		sf := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		name, tagged := tagName(sf)
		if name == "-" {
			continue
		}
		if sf.Anonymous && !tagged && ft.Kind() == reflect.Struct {
			collect(ft, idx, m)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = rules.Underscore(sf.Name)
		}
		// Outer fields shadow promoted ones.
		if prev, ok := m[name]; ok && len(prev) <= len(idx) {
			continue
		}
		m[name] = idx
	}
}

func tagName(sf reflect.StructField) (string, bool) {
	for _, key := range []string{"db", "json"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name, true
		}
	}
	return "", false
}

// ScanRows reads all rows into maps keyed by column name. Byte slices are
// converted to strings. The rows are closed.
func ScanRows(rows sql.ColumnScanner) (_ []Map, err error) {
	defer func() {
		if cerr := rows.Close(); err == nil {
			err = cerr
		}
	}()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("record: columns: %w", err)
	}
	var out []Map
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("record: scan: %w", err)
		}
		m := make(Map, len(columns))
		for i, c := range columns {
			if b, ok := values[i].([]byte); ok {
				m[c] = string(b)
				continue
			}
			m[c] = values[i]
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record: rows: %w", err)
	}
	return out, nil
}

var _ cruddy.Record = Map(nil)
