package sql

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/cruddy/dialect"
)

// Labels name the entity and action a statement runs for. The repository
// attaches them to the context of every statement it issues.
type Labels struct {
	Entity string
	Action string
}

type labelsKey struct{}

// WithLabels returns a context carrying l.
func WithLabels(ctx context.Context, l Labels) context.Context {
	return context.WithValue(ctx, labelsKey{}, l)
}

// LabelsFromContext returns the labels of ctx, zero when unset.
func LabelsFromContext(ctx context.Context) Labels {
	l, _ := ctx.Value(labelsKey{}).(Labels)
	return l
}

// StatsSnapshot is a point-in-time copy of statement counters.
type StatsSnapshot struct {
	Queries  int64
	Execs    int64
	Duration time.Duration
	Slow     int64
	Errors   int64
}

// String returns a one-line summary.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s slow=%d errors=%d",
		s.Queries, s.Execs, s.Duration, s.Slow, s.Errors)
}

type counters struct {
	queries, execs, duration, slow, errors atomic.Int64
}

func (c *counters) add(isQuery bool, elapsed time.Duration, slow bool, err error) {
	if isQuery {
		c.queries.Add(1)
	} else {
		c.execs.Add(1)
	}
	c.duration.Add(int64(elapsed))
	if slow {
		c.slow.Add(1)
	}
	if err != nil {
		c.errors.Add(1)
	}
}

func (c *counters) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:  c.queries.Load(),
		Execs:    c.execs.Load(),
		Duration: time.Duration(c.duration.Load()),
		Slow:     c.slow.Load(),
		Errors:   c.errors.Load(),
	}
}

// SlowQuery describes a statement that ran longer than the threshold.
type SlowQuery struct {
	Labels
	Query    string
	Args     []any
	Duration time.Duration
}

// SlowQueryHook is called for every slow statement.
type SlowQueryHook func(ctx context.Context, q SlowQuery)

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow statement threshold. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold.Store(int64(d))
	}
}

// WithSlowQueryHook sets the hook called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.hook = hook
	}
}

// WithSlowQueryLog logs slow statements with their entity and action to
// logger, or to slog.Default when logger is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, q SlowQuery) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.WarnContext(ctx, "slow query detected",
			"entity", q.Entity, "action", q.Action,
			"duration", q.Duration, "query", q.Query, "args", q.Args)
	})
}

// StatsDriver counts the statements of a Driver, in total and per entity
// label, and reports slow ones.
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	repo := repository.New(stats, users)
type StatsDriver struct {
	*Driver
	threshold atomic.Int64
	hook      SlowQueryHook
	total     counters
	entities  sync.Map // entity id -> *counters
}

// NewStatsDriver wraps drv.
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv}
	s.threshold.Store(int64(100 * time.Millisecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.threshold.Store(int64(threshold))
}

// Stats returns the counters of all statements.
func (d *StatsDriver) Stats() StatsSnapshot { return d.total.snapshot() }

// EntityStats returns the counters of the statements labeled with entity.
func (d *StatsDriver) EntityStats(entity string) StatsSnapshot {
	c, ok := d.entities.Load(entity)
	if !ok {
		return StatsSnapshot{}
	}
	return c.(*counters).snapshot()
}

// Entities returns the sorted entity labels seen so far.
func (d *StatsDriver) Entities() []string {
	var ids []string
	d.entities.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	slices.Sort(ids)
	return ids
}

// Query runs a query and counts it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.observe(ctx, query, args, true, start, err)
	return err
}

// Exec runs a statement and counts it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.observe(ctx, query, args, false, start, err)
	return err
}

// Tx begins a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, d: d}, nil
}

func (d *StatsDriver) observe(ctx context.Context, query string, args any, isQuery bool, start time.Time, err error) {
	elapsed := time.Since(start)
	slow := elapsed > time.Duration(d.threshold.Load())
	d.total.add(isQuery, elapsed, slow, err)
	labels := LabelsFromContext(ctx)
	if labels.Entity != "" {
		c, _ := d.entities.LoadOrStore(labels.Entity, &counters{})
		c.(*counters).add(isQuery, elapsed, slow, err)
	}
	if slow && d.hook != nil {
		argv, _ := args.([]any)
		d.hook(ctx, SlowQuery{Labels: labels, Query: query, Args: argv, Duration: elapsed})
	}
}

type statsTx struct {
	dialect.Tx
	d *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.d.observe(ctx, query, args, true, start, err)
	return err
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.d.observe(ctx, query, args, false, start, err)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
)
