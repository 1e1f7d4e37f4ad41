// Package sql provides the SQL statement builders, predicates and the
// database/sql backed driver used by field filters and repositories.
//
// Statements adapt to the configured dialect: identifiers are quoted with
// double quotes on PostgreSQL and backticks elsewhere, and arguments use
// $n placeholders on PostgreSQL and ? elsewhere.
//
//	q, args := sql.Select("id", "name").
//	    From("users").
//	    SetDialect(dialect.Postgres).
//	    Where(sql.FieldContainsFold("name", "ann")).
//	    Query()
//	// SELECT "id", "name" FROM "users" WHERE LOWER("name") LIKE $1
package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/cruddy/dialect"
)

// Builder is the low-level SQL string builder. It tracks the arguments and
// renders identifiers and placeholders for its dialect.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// NewBuilder returns a Builder for the given dialect.
func NewBuilder(d string) *Builder {
	return &Builder{dialect: d}
}

// Dialect returns the builder dialect.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends s verbatim.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Ident appends a quoted identifier. Dotted names are quoted per segment
// and "*" is written as is.
func (b *Builder) Ident(name string) *Builder {
	if name == "*" {
		b.sb.WriteString(name)
		return b
	}
	for i, part := range strings.Split(name, ".") {
		if i > 0 {
			b.sb.WriteByte('.')
		}
		b.sb.WriteString(b.quote(part))
	}
	return b
}

// IdentComma appends the quoted identifiers separated by commas.
func (b *Builder) IdentComma(names ...string) *Builder {
	for i, name := range names {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(name)
	}
	return b
}

// Arg appends a placeholder and records its argument.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
		return b
	}
	b.sb.WriteByte('?')
	return b
}

// Args appends the placeholders separated by commas.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Query returns the statement and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// String returns the statement built so far.
func (b *Builder) String() string { return b.sb.String() }

func (b *Builder) quote(ident string) string {
	if b.dialect == dialect.Postgres {
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// Querier wraps the Query method implemented by all statement builders.
type Querier interface {
	Query() (string, []any)
}

// order is a single ORDER BY term.
type order struct {
	column string
	desc   bool
}

// Selector is a SELECT statement builder. It implements the query contract
// that field filters constrain.
type Selector struct {
	dialect string
	table   string
	columns []string
	where   []*Predicate
	orders  []order
	limit   *int
	offset  *int
	count   bool
}

// Select returns a Selector for the given columns. No columns selects "*".
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// From sets the source table.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// SetDialect sets the dialect used to render the statement.
func (s *Selector) SetDialect(d string) *Selector {
	s.dialect = d
	return s
}

// Table returns the source table.
func (s *Selector) Table() string { return s.table }

// Where appends the predicates. Multiple predicates are joined with AND.
func (s *Selector) Where(ps ...*Predicate) {
	for _, p := range ps {
		if p != nil {
			s.where = append(s.where, p)
		}
	}
}

// Predicates returns the predicates added so far.
func (s *Selector) Predicates() []*Predicate { return s.where }

// OrderBy appends ascending ORDER BY terms.
func (s *Selector) OrderBy(columns ...string) *Selector {
	for _, c := range columns {
		s.orders = append(s.orders, order{column: c})
	}
	return s
}

// OrderDesc appends a descending ORDER BY term.
func (s *Selector) OrderDesc(column string) *Selector {
	s.orders = append(s.orders, order{column: column, desc: true})
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Count returns a copy of the selector that counts the matching rows,
// ignoring columns, ordering and pagination.
func (s *Selector) Count() *Selector {
	return &Selector{
		dialect: s.dialect,
		table:   s.table,
		where:   append([]*Predicate(nil), s.where...),
		count:   true,
	}
}

// Query returns the statement and its arguments.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	b.WriteString("SELECT ")
	switch {
	case s.count:
		b.WriteString("COUNT(*)")
	case len(s.columns) == 0:
		b.WriteString("*")
	default:
		b.IdentComma(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	writeWhere(b, s.where)
	if len(s.orders) > 0 && !s.count {
		b.WriteString(" ORDER BY ")
		for i, o := range s.orders {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(o.column)
			if o.desc {
				b.WriteString(" DESC")
			}
		}
	}
	if s.limit != nil && !s.count {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil && !s.count {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	return b.Query()
}

func writeWhere(b *Builder, ps []*Predicate) {
	if len(ps) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	And(ps...).build(b)
}

// assignment is a single column/value pair of INSERT or UPDATE statements.
type assignment struct {
	column string
	value  any
}

// InsertBuilder is an INSERT statement builder.
type InsertBuilder struct {
	dialect   string
	table     string
	values    []assignment
	returning []string
}

// Insert returns an InsertBuilder for the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// SetDialect sets the dialect used to render the statement.
func (i *InsertBuilder) SetDialect(d string) *InsertBuilder {
	i.dialect = d
	return i
}

// Set appends a column value.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.values = append(i.values, assignment{column: column, value: v})
	return i
}

// Returning sets the RETURNING clause (PostgreSQL and SQLite).
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query returns the statement and its arguments.
func (i *InsertBuilder) Query() (string, []any) {
	b := NewBuilder(i.dialect)
	b.WriteString("INSERT INTO ").Ident(i.table)
	if len(i.values) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		columns := make([]string, len(i.values))
		args := make([]any, len(i.values))
		for j, a := range i.values {
			columns[j], args[j] = a.column, a.value
		}
		b.WriteString(" (").IdentComma(columns...).WriteString(") VALUES (").Args(args...).WriteString(")")
	}
	if len(i.returning) > 0 {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
	return b.Query()
}

// UpdateBuilder is an UPDATE statement builder.
type UpdateBuilder struct {
	dialect string
	table   string
	values  []assignment
	where   []*Predicate
}

// Update returns an UpdateBuilder for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// SetDialect sets the dialect used to render the statement.
func (u *UpdateBuilder) SetDialect(d string) *UpdateBuilder {
	u.dialect = d
	return u
}

// Set appends a column value.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.values = append(u.values, assignment{column: column, value: v})
	return u
}

// Empty reports whether the update has no assignments.
func (u *UpdateBuilder) Empty() bool { return len(u.values) == 0 }

// Where appends the predicates.
func (u *UpdateBuilder) Where(ps ...*Predicate) *UpdateBuilder {
	u.where = append(u.where, ps...)
	return u
}

// Query returns the statement and its arguments.
func (u *UpdateBuilder) Query() (string, []any) {
	b := NewBuilder(u.dialect)
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, a := range u.values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(a.column).WriteString(" = ").Arg(a.value)
	}
	writeWhere(b, u.where)
	return b.Query()
}

// DeleteBuilder is a DELETE statement builder.
type DeleteBuilder struct {
	dialect string
	table   string
	where   []*Predicate
}

// Delete returns a DeleteBuilder for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// SetDialect sets the dialect used to render the statement.
func (d *DeleteBuilder) SetDialect(name string) *DeleteBuilder {
	d.dialect = name
	return d
}

// Where appends the predicates.
func (d *DeleteBuilder) Where(ps ...*Predicate) *DeleteBuilder {
	d.where = append(d.where, ps...)
	return d
}

// Query returns the statement and its arguments.
func (d *DeleteBuilder) Query() (string, []any) {
	b := NewBuilder(d.dialect)
	b.WriteString("DELETE FROM ").Ident(d.table)
	writeWhere(b, d.where)
	return b.Query()
}

var (
	_ Querier = (*Selector)(nil)
	_ Querier = (*InsertBuilder)(nil)
	_ Querier = (*UpdateBuilder)(nil)
	_ Querier = (*DeleteBuilder)(nil)
)
