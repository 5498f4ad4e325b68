// SPDX-License-Identifier: GPL-3.0-or-later

package asynctable

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/common/model"
	"github.com/sourcegraph/conc/pool"

	"github.com/netdata/netdata/go/promtable/logger"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

var ErrStopped = errors.New("runner is stopped")

const (
	defaultConcurrency  = 4
	defaultQueryTimeout = 30 * time.Second
)

// RunnerOptions configure a Runner. Concurrency limits the number of row queries
// of one batch running at once. OnChange is called on the runner goroutine after
// every state change.
type RunnerOptions struct {
	Concurrency  int
	QueryTimeout time.Duration
	Metrics      *Metrics
	Logger       *logger.Logger
	OnChange     func(View)
}

// Runner owns a Table and runs its queries. All table access happens on the
// goroutine executing Run; queries run on worker goroutines and their results
// are sent back to it.
type Runner[T, F any] struct {
	*logger.Logger

	name        string
	table       *Table[T, F]
	querier     Querier
	concurrency int
	timeout     time.Duration
	metrics     *Metrics
	onChange    func(View)

	ctx     context.Context
	cmds    chan func()
	results chan queryResult
	done    chan struct{}
	pending int
}

type queryResult struct {
	root  *RootRequest
	rows  *RowRequest
	refID string
	vec   model.Vector
	err   error
}

func NewRunner[T, F any](name string, table *Table[T, F], querier Querier, opts RunnerOptions) *Runner[T, F] {
	log := opts.Logger
	if log == nil {
		log = logger.New()
	}

	return &Runner[T, F]{
		Logger:      log.With("table", name),
		name:        name,
		table:       table,
		querier:     querier,
		concurrency: cmpOr(opts.Concurrency, defaultConcurrency),
		timeout:     cmpOr(opts.QueryTimeout, defaultQueryTimeout),
		metrics:     opts.Metrics,
		onChange:    opts.OnChange,
		cmds:        make(chan func()),
		results:     make(chan queryResult),
		done:        make(chan struct{}),
	}
}

// Run issues the first root query and processes commands and query results until ctx is done.
func (r *Runner[T, F]) Run(ctx context.Context) {
	defer close(r.done)

	r.ctx = ctx
	r.Debugf("starting, sorting '%s'", r.table.Sorting())
	r.issueRoot(r.table.Refresh())
	r.notify()

	for {
		select {
		case <-ctx.Done():
			r.Debug("stopped")
			return
		case fn := <-r.cmds:
			fn()
		case res := <-r.results:
			r.apply(res)
		}
		r.notify()
	}
}

func (r *Runner[T, F]) Refresh(ctx context.Context) error {
	return r.call(ctx, func() error {
		r.issueRoot(r.table.Refresh())
		return nil
	})
}

func (r *Runner[T, F]) SetFilters(ctx context.Context, filters F) error {
	return r.call(ctx, func() error {
		r.issueRoot(r.table.SetFilters(filters))
		return nil
	})
}

// SetFilterValues decodes named filter values into the table filters and applies them.
func (r *Runner[T, F]) SetFilterValues(ctx context.Context, values map[string]string) error {
	filters, err := DecodeFilters[F](values)
	if err != nil {
		return err
	}
	return r.SetFilters(ctx, filters)
}

func (r *Runner[T, F]) Sort(ctx context.Context, columnID string, dir promql.Order) error {
	return r.call(ctx, func() error {
		req, err := r.table.Sort(columnID, dir)
		if err != nil {
			return err
		}
		if req != nil {
			r.Debugf("remote sort by '%s' %s", columnID, dir)
			r.issueRoot(*req)
		}
		return nil
	})
}

func (r *Runner[T, F]) Expand(ctx context.Context, id string) error {
	return r.call(ctx, func() error {
		req, err := r.table.Expand(id)
		if err != nil {
			return err
		}
		r.issueRows(req)
		return nil
	})
}

func (r *Runner[T, F]) Collapse(ctx context.Context, id string) error {
	return r.call(ctx, func() error {
		return r.table.Collapse(id)
	})
}

func (r *Runner[T, F]) SetWindow(ctx context.Context, offset, limit int) error {
	return r.call(ctx, func() error {
		r.issueRows(r.table.SetWindow(offset, limit))
		return nil
	})
}

// View returns the current view of the table.
func (r *Runner[T, F]) View(ctx context.Context) (View, error) {
	var v View
	err := r.call(ctx, func() error {
		v = r.view()
		return nil
	})
	return v, err
}

// Rows returns a snapshot of all rows.
func (r *Runner[T, F]) Rows(ctx context.Context) ([]Row[T], error) {
	var rows []Row[T]
	err := r.call(ctx, func() error {
		rows = r.table.Rows()
		return nil
	})
	return rows, err
}

func (r *Runner[T, F]) call(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)

	select {
	case r.cmds <- func() { errCh <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}
}

func (r *Runner[T, F]) issueRoot(req RootRequest) {
	r.pending++
	r.Debugf("root query gen %d: %s", req.Gen, req.Query.Expr)

	go func() {
		vec, err := r.query(r.ctx, "root", req.Query)
		r.send(queryResult{root: &req, refID: req.Query.RefID, vec: vec, err: err})
	}()
}

func (r *Runner[T, F]) issueRows(req *RowRequest) {
	if req == nil {
		return
	}
	r.pending += len(req.Queries)
	r.Debugf("row queries seq %d: %d queries for %d rows", req.Seq, len(req.Queries), len(req.RowIDs))

	go func() {
		p := pool.New().WithMaxGoroutines(r.concurrency)
		for _, q := range req.Queries {
			p.Go(func() {
				vec, err := r.query(r.ctx, "row", q)
				r.send(queryResult{rows: req, refID: q.RefID, vec: vec, err: err})
			})
		}
		p.Wait()
	}()
}

func (r *Runner[T, F]) query(ctx context.Context, kind string, q Query) (model.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	vec, err := r.querier.Query(ctx, q.Expr)
	r.metrics.observeQuery(r.name, kind, time.Since(now), err)

	if err != nil && ctx.Err() == nil {
		r.Warningf("%s query '%s' failed: %v", kind, q.RefID, err)
	}
	return vec, err
}

func (r *Runner[T, F]) send(res queryResult) {
	select {
	case r.results <- res:
	case <-r.done:
	}
}

func (r *Runner[T, F]) apply(res queryResult) {
	r.pending--

	if res.root != nil {
		req, ok := r.table.ApplyRoot(res.root.Gen, res.vec, res.err)
		if !ok {
			r.Debugf("dropping superseded root result gen %d", res.root.Gen)
			r.metrics.observeStale(r.name, "root")
			return
		}
		r.Debugf("root result gen %d: %d rows", res.root.Gen, r.table.Len())
		r.issueRows(req)
		return
	}

	if res.rows.Epoch != r.table.Epoch() {
		r.Debugf("dropping row result '%s' from epoch %d", res.refID, res.rows.Epoch)
		r.metrics.observeStale(r.name, "row")
		return
	}
	r.table.ApplyRows(*res.rows, res.refID, res.vec, res.err)
}

func (r *Runner[T, F]) view() View {
	v := r.table.View()
	v.Table = r.name
	v.Pending = r.pending
	return v
}

func (r *Runner[T, F]) notify() {
	r.metrics.setState(r.name, r.table.Len(), r.pending)
	if r.onChange != nil {
		r.onChange(r.view())
	}
}

func cmpOr[V int | time.Duration](v, def V) V {
	if v <= 0 {
		return def
	}
	return v
}
