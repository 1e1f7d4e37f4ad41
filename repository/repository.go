// Package repository persists entity records in SQL databases. Every
// operation is driven by the entity's field descriptors: input is processed
// and filtered by SendToRepository and Keep, listings are constrained by the
// field filters and rendered by the column extractors.
//
//	repo := repository.New(drv, users,
//	    repository.WithPolicy(privacy.Policy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.TenantFilter("tenant_id"),
//	    }),
//	)
//	id, err := repo.Create(ctx, map[string]any{"name": "Ann"})
//
// On MySQL, Update and Delete report not found from the affected row count,
// so unchanged updates need the clientFoundRows=true DSN parameter.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect"
	"github.com/syssam/cruddy/dialect/sql"
	"github.com/syssam/cruddy/privacy"
	"github.com/syssam/cruddy/record"
	"github.com/syssam/cruddy/schema/entity"
	"github.com/syssam/cruddy/schema/field"
)

// Validator validates submitted input for an action.
// *validation.RuleSet implements it.
type Validator interface {
	Validate(action cruddy.Action, input map[string]any) error
}

// Page selects a window of a listing. Sort names a field, prefixed with
// "-" for descending order. Rows are ordered by primary key otherwise.
type Page struct {
	Limit  int
	Offset int
	Sort   string
}

// Repository reads and writes the records of one entity.
type Repository struct {
	drv       dialect.Driver
	ent       *entity.Entity
	policy    privacy.Rule
	validator Validator
	logger    *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithPolicy sets the privacy rule evaluated before every operation.
func WithPolicy(rule privacy.Rule) Option {
	return func(r *Repository) {
		r.policy = rule
	}
}

// WithValidator sets the input validator. By default the entity validator
// is used when it implements Validator.
func WithValidator(v Validator) Option {
	return func(r *Repository) {
		r.validator = v
	}
}

// WithLogger sets the logger. Default is the entity logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a repository of ent over drv.
func New(drv dialect.Driver, ent *entity.Entity, opts ...Option) *Repository {
	r := &Repository{
		drv:    drv,
		ent:    ent,
		logger: ent.Logger(),
	}
	if v, ok := ent.Validator().(Validator); ok {
		r.validator = v
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entity returns the repository entity.
func (r *Repository) Entity() *entity.Entity { return r.ent }

// Create validates and inserts input and returns the new primary key.
func (r *Repository) Create(ctx context.Context, input map[string]any) (int64, error) {
	ctx = r.labeled(ctx, cruddy.ActionCreate)
	if err := r.validate(cruddy.ActionCreate, input); err != nil {
		return 0, err
	}
	values := r.ent.Process(cruddy.ActionCreate, input)
	op := privacy.Operation{Entity: r.ent.ID(), Action: cruddy.ActionCreate, Input: values}
	if err := privacy.Authorize(ctx, r.policy, op); err != nil {
		return 0, err
	}
	ins := sql.Insert(r.ent.Table()).SetDialect(r.drv.Dialect())
	for _, f := range r.ent.Fields() {
		if v, ok := values[f.ID()]; ok {
			ins.Set(f.ID(), v)
		}
	}
	var (
		id  int64
		err error
	)
	if r.drv.Dialect() == dialect.Postgres {
		id, err = r.insertReturning(ctx, ins)
	} else {
		id, err = r.insertExec(ctx, ins)
	}
	if err != nil {
		return 0, r.mutationError(cruddy.ActionCreate, err)
	}
	r.logger.DebugContext(ctx, "repository: created", "entity", r.ent.ID(), "id", id)
	return id, nil
}

func (r *Repository) insertReturning(ctx context.Context, ins *sql.InsertBuilder) (int64, error) {
	query, args := ins.Returning(r.ent.PrimaryKey()).Query()
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("repository: insert returned no %s", r.ent.PrimaryKey())
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

func (r *Repository) insertExec(ctx context.Context, ins *sql.InsertBuilder) (int64, error) {
	query, args := ins.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update validates input and writes it to the record with the given id.
// Fields disabled for edit are not written. It returns a not found error
// when no permitted record has the id; the write is then rolled back.
func (r *Repository) Update(ctx context.Context, id any, input map[string]any) error {
	ctx = r.labeled(ctx, cruddy.ActionEdit)
	if err := r.validate(cruddy.ActionEdit, input); err != nil {
		return err
	}
	values := r.ent.Process(cruddy.ActionEdit, input)
	sel := r.selectID(id)
	op := privacy.Operation{Entity: r.ent.ID(), Action: cruddy.ActionEdit, ID: id, Input: values, Query: sel}
	if err := privacy.Authorize(ctx, r.policy, op); err != nil {
		return err
	}
	upd := sql.Update(r.ent.Table()).SetDialect(r.drv.Dialect()).Where(sel.Predicates()...)
	for _, f := range r.ent.Fields() {
		if v, ok := values[f.ID()]; ok {
			upd.Set(f.ID(), v)
		}
	}
	if upd.Empty() {
		return nil
	}
	if err := r.execAffected(ctx, upd, id); err != nil {
		return r.mutationError(cruddy.ActionEdit, err)
	}
	r.logger.DebugContext(ctx, "repository: updated", "entity", r.ent.ID(), "id", id, "fields", len(values))
	return nil
}

// Delete removes the record with the given id.
func (r *Repository) Delete(ctx context.Context, id any) error {
	ctx = r.labeled(ctx, cruddy.ActionDelete)
	sel := r.selectID(id)
	op := privacy.Operation{Entity: r.ent.ID(), Action: cruddy.ActionDelete, ID: id, Query: sel}
	if err := privacy.Authorize(ctx, r.policy, op); err != nil {
		return err
	}
	del := sql.Delete(r.ent.Table()).SetDialect(r.drv.Dialect()).Where(sel.Predicates()...)
	if err := r.execAffected(ctx, del, id); err != nil {
		return r.mutationError(cruddy.ActionDelete, err)
	}
	r.logger.DebugContext(ctx, "repository: deleted", "entity", r.ent.ID(), "id", id)
	return nil
}

// execAffected runs q in a transaction that is committed only when it
// affects a row.
func (r *Repository) execAffected(ctx context.Context, q sql.Querier, id any) error {
	query, args := q.Query()
	return sql.WithTx(ctx, r.drv, func(tx dialect.Tx) error {
		var res sql.Result
		if err := tx.Exec(ctx, query, args, &res); err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return cruddy.NewNotFoundErrorWithID(r.ent.ID(), id)
		}
		return nil
	})
}

// Find returns the record with the given id.
func (r *Repository) Find(ctx context.Context, id any) (record.Map, error) {
	ctx = r.labeled(ctx, cruddy.ActionView)
	sel := r.selectID(id)
	op := privacy.Operation{Entity: r.ent.ID(), Action: cruddy.ActionView, ID: id, Query: sel}
	if err := privacy.Authorize(ctx, r.policy, op); err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, sel.Limit(1))
	if err != nil {
		return nil, cruddy.NewQueryError(r.ent.ID(), "find", err)
	}
	if len(rows) == 0 {
		return nil, cruddy.NewNotFoundErrorWithID(r.ent.ID(), id)
	}
	return rows[0], nil
}

// Search returns the list columns of the records matching filters, keyed by
// field id. Filters are applied by the entity fields; keys that match no
// filterable field are ignored.
func (r *Repository) Search(ctx context.Context, filters map[string]any, page Page) ([]map[string]any, error) {
	ctx = r.labeled(ctx, cruddy.ActionView)
	sel, err := r.searchQuery(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := r.order(sel, page.Sort); err != nil {
		return nil, err
	}
	if page.Limit > 0 {
		sel.Limit(page.Limit)
	}
	if page.Offset > 0 {
		sel.Offset(page.Offset)
	}
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, cruddy.NewQueryError(r.ent.ID(), "search", err)
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.ent.Columns(row))
	}
	return out, nil
}

// Count returns the number of records matching filters.
func (r *Repository) Count(ctx context.Context, filters map[string]any) (int64, error) {
	ctx = r.labeled(ctx, cruddy.ActionView)
	sel, err := r.searchQuery(ctx, filters)
	if err != nil {
		return 0, err
	}
	query, args := sel.Count().Query()
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, cruddy.NewQueryError(r.ent.ID(), "count", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, cruddy.NewQueryError(r.ent.ID(), "count", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, cruddy.NewQueryError(r.ent.ID(), "count", err)
	}
	return n, nil
}

func (r *Repository) searchQuery(ctx context.Context, filters map[string]any) (*sql.Selector, error) {
	sel := sql.Select().From(r.ent.Table()).SetDialect(r.drv.Dialect())
	r.ent.ApplyFilters(sel, filters)
	op := privacy.Operation{Entity: r.ent.ID(), Action: cruddy.ActionView, Query: sel}
	if err := privacy.Authorize(ctx, r.policy, op); err != nil {
		return nil, err
	}
	return sel, nil
}

func (r *Repository) order(sel *sql.Selector, sort string) error {
	if sort == "" {
		sel.OrderBy(r.ent.PrimaryKey())
		return nil
	}
	id, desc := strings.CutPrefix(sort, "-")
	f, ok := r.ent.Field(id)
	if !ok {
		return fmt.Errorf("repository: %s: unknown sort field %q", r.ent.ID(), id)
	}
	if c, ok := f.(interface{ Class() string }); ok && c.Class() == field.ClassComputed {
		return fmt.Errorf("repository: %s: cannot sort by computed field %q", r.ent.ID(), id)
	}
	if desc {
		sel.OrderDesc(id)
	} else {
		sel.OrderBy(id)
	}
	if id != r.ent.PrimaryKey() {
		sel.OrderBy(r.ent.PrimaryKey())
	}
	return nil
}

// labeled names the entity and action of the statements issued with ctx.
func (r *Repository) labeled(ctx context.Context, action cruddy.Action) context.Context {
	return sql.WithLabels(ctx, sql.Labels{Entity: r.ent.ID(), Action: action.String()})
}

func (r *Repository) selectID(id any) *sql.Selector {
	sel := sql.Select().From(r.ent.Table()).SetDialect(r.drv.Dialect())
	sel.Where(sql.FieldEQ(r.ent.PrimaryKey(), id))
	return sel
}

func (r *Repository) query(ctx context.Context, sel *sql.Selector) ([]record.Map, error) {
	query, args := sel.Query()
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return record.ScanRows(rows)
}

func (r *Repository) validate(action cruddy.Action, input map[string]any) error {
	if r.validator == nil {
		return nil
	}
	return r.validator.Validate(action, input)
}

func (r *Repository) mutationError(action cruddy.Action, err error) error {
	switch {
	case cruddy.IsNotFound(err):
		return err
	case sql.IsConstraintError(err):
		r.logger.Warn("repository: constraint violation", "entity", r.ent.ID(), "action", action, "error", err)
		return cruddy.NewConstraintError(err.Error(), err)
	default:
		return cruddy.NewMutationError(r.ent.ID(), action, err)
	}
}
