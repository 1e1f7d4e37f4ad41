package sql

import (
	"strings"

	"github.com/syssam/cruddy/dialect"
)

// Predicate is a boolean SQL expression rendered into a Builder.
type Predicate struct {
	build func(*Builder)
}

// P returns a predicate rendered by fn.
func P(fn func(*Builder)) *Predicate {
	return &Predicate{build: fn}
}

// Query renders the predicate alone for the given dialect.
func (p *Predicate) Query(d string) (string, []any) {
	b := NewBuilder(d)
	p.build(b)
	return b.Query()
}

func compare(name, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(name).WriteString(" " + op + " ").Arg(v)
	})
}

// FieldEQ returns a predicate that checks if the field equals v.
func FieldEQ(name string, v any) *Predicate { return compare(name, "=", v) }

// FieldNEQ returns a predicate that checks if the field does not equal v.
func FieldNEQ(name string, v any) *Predicate { return compare(name, "<>", v) }

// FieldGT returns a predicate that checks if the field is greater than v.
func FieldGT(name string, v any) *Predicate { return compare(name, ">", v) }

// FieldGTE returns a predicate that checks if the field is greater than or equal to v.
func FieldGTE(name string, v any) *Predicate { return compare(name, ">=", v) }

// FieldLT returns a predicate that checks if the field is less than v.
func FieldLT(name string, v any) *Predicate { return compare(name, "<", v) }

// FieldLTE returns a predicate that checks if the field is less than or equal to v.
func FieldLTE(name string, v any) *Predicate { return compare(name, "<=", v) }

// FieldIn returns a predicate that checks if the field value is in vs.
// An empty list matches nothing.
func FieldIn[T any](name string, vs ...T) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("1 = 0")
			return
		}
		args := make([]any, len(vs))
		for i, v := range vs {
			args[i] = v
		}
		b.Ident(name).WriteString(" IN (").Args(args...).WriteString(")")
	})
}

// FieldNotIn returns a predicate that checks if the field value is not in vs.
// An empty list matches everything.
func FieldNotIn[T any](name string, vs ...T) *Predicate {
	return P(func(b *Builder) {
		if len(vs) == 0 {
			b.WriteString("1 = 1")
			return
		}
		args := make([]any, len(vs))
		for i, v := range vs {
			args[i] = v
		}
		b.Ident(name).WriteString(" NOT IN (").Args(args...).WriteString(")")
	})
}

// FieldIsNull returns a predicate that checks if the field is NULL.
func FieldIsNull(name string) *Predicate {
	return P(func(b *Builder) { b.Ident(name).WriteString(" IS NULL") })
}

// FieldNotNull returns a predicate that checks if the field is not NULL.
func FieldNotNull(name string) *Predicate {
	return P(func(b *Builder) { b.Ident(name).WriteString(" IS NOT NULL") })
}

// FieldContains returns a predicate that checks if the field contains sub.
func FieldContains(name, sub string) *Predicate {
	return like(name, sub, true, true, false)
}

// FieldContainsFold returns a predicate that checks if the field contains
// sub, ignoring case.
func FieldContainsFold(name, sub string) *Predicate {
	return like(name, strings.ToLower(sub), true, true, true)
}

// FieldHasPrefix returns a predicate that checks if the field starts with prefix.
func FieldHasPrefix(name, prefix string) *Predicate {
	return like(name, prefix, false, true, false)
}

// like builds a LIKE predicate matching text, with a % wildcard before it
// when leading is set and after it when trailing is set. The % and _
// characters of text are escaped.
func like(name, text string, leading, trailing, fold bool) *Predicate {
	escaped := escapeLike(text)
	pattern := escaped
	if leading {
		pattern = "%" + pattern
	}
	if trailing {
		pattern += "%"
	}
	return P(func(b *Builder) {
		if fold {
			b.WriteString("LOWER(").Ident(name).WriteString(")")
		} else {
			b.Ident(name)
		}
		b.WriteString(" LIKE ").Arg(pattern)
		if escaped != text && b.Dialect() == dialect.SQLite {
			b.WriteString(` ESCAPE '\'`)
		}
	})
}

func escapeLike(s string) string {
	if !strings.ContainsAny(s, `\%_`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// And joins the predicates with AND. Nil predicates are skipped.
func And(ps ...*Predicate) *Predicate {
	ps = compact(ps)
	if len(ps) == 1 {
		return ps[0]
	}
	return P(func(b *Builder) {
		if len(ps) == 0 {
			b.WriteString("1 = 1")
			return
		}
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p.build(b)
		}
	})
}

// Or joins the predicates with OR and wraps the result in parentheses.
func Or(ps ...*Predicate) *Predicate {
	ps = compact(ps)
	return P(func(b *Builder) {
		if len(ps) == 0 {
			b.WriteString("1 = 0")
			return
		}
		b.WriteString("(")
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p.build(b)
		}
		b.WriteString(")")
	})
}

// Not negates the predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT (")
		p.build(b)
		b.WriteString(")")
	})
}

func compact(ps []*Predicate) []*Predicate {
	out := ps[:0:0]
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
