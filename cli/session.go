// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/netdata/netdata/go/promtable/logger"
	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/kubetables"
)

// ErrReopen is returned by Settle when the config can only be applied to a new Session.
var ErrReopen = errors.New("config change requires reopening the table")

// Session keeps one table open and moves it to the state a Config describes.
type Session struct {
	*logger.Logger

	cfg      Config
	viewer   kubetables.Viewer
	changes  chan asynctable.View
	applied  bool
	filters  map[string]string
	sorting  asynctable.SortingState
	window   int
	expanded []string
}

func NewSession(cfg Config, q asynctable.Querier, metrics *asynctable.Metrics, log *logger.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New()
	}

	s := &Session{
		Logger:  log,
		cfg:     cfg,
		changes: make(chan asynctable.View, 1),
	}

	opts := cfg.TableOptions(metrics, log)
	opts.Runner.OnChange = s.onChange

	v, err := kubetables.Open(cfg.Table, opts, q)
	if err != nil {
		return nil, err
	}
	s.viewer = v
	s.sorting = opts.Sorting

	return s, nil
}

// Run runs the table until ctx is done.
func (s *Session) Run(ctx context.Context) {
	s.viewer.Run(ctx)
}

func (s *Session) Config() Config {
	return s.cfg
}

// NeedsReopen reports whether cfg can only be applied to a new Session.
func (s *Session) NeedsReopen(cfg Config) bool {
	return s.cfg.needsReopen(cfg)
}

// Settle applies the filters, sorting, window and expanded rows of cfg and
// waits until the table has no queries in flight.
func (s *Session) Settle(ctx context.Context, cfg Config) (asynctable.View, error) {
	if err := cfg.Validate(); err != nil {
		return asynctable.View{}, err
	}
	if cfg.needsReopen(s.cfg) {
		return asynctable.View{}, ErrReopen
	}

	if !s.applied || !maps.Equal(s.filters, cfg.Filters) {
		if len(cfg.Filters) > 0 || s.applied {
			if err := s.viewer.SetFilterValues(ctx, cfg.Filters); err != nil {
				return asynctable.View{}, err
			}
		}
		s.filters = maps.Clone(cfg.Filters)
	}
	s.applied = true

	if sorting, _ := cfg.Sorting(); sorting.ColumnID != "" && sorting != s.sorting {
		if err := s.viewer.Sort(ctx, sorting.ColumnID, sorting.Direction); err != nil {
			return asynctable.View{}, err
		}
		s.sorting = sorting
	}

	if cfg.PageSize != s.window {
		if err := s.viewer.SetWindow(ctx, 0, cfg.PageSize); err != nil {
			return asynctable.View{}, err
		}
		s.window = cfg.PageSize
	}

	if _, err := s.wait(ctx); err != nil {
		return asynctable.View{}, err
	}
	s.cfg = cfg

	if !s.expand(ctx, cfg.Expand) {
		return s.viewer.View(ctx)
	}
	return s.wait(ctx)
}

// expand expands the ids and collapses rows expanded before but no longer
// listed. It reports whether any row was expanded.
func (s *Session) expand(ctx context.Context, ids []string) bool {
	for _, id := range s.expanded {
		if slices.Contains(ids, id) {
			continue
		}
		if err := s.viewer.Collapse(ctx, id); err != nil {
			s.Debugf("collapse '%s': %v", id, err)
		}
	}

	var expanded []string
	for _, id := range ids {
		if err := s.viewer.Expand(ctx, id); err != nil {
			s.Warningf("expand '%s': %v", id, err)
			continue
		}
		expanded = append(expanded, id)
	}
	s.expanded = expanded

	return len(expanded) > 0
}

// wait returns the first view without pending queries. Views delivered
// before the call are never returned: the view request is handled by the
// runner after every preceding command.
func (s *Session) wait(ctx context.Context) (asynctable.View, error) {
	v, err := s.viewer.View(ctx)
	if err != nil {
		return v, err
	}
	for v.Pending > 0 {
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case v = <-s.changes:
		}
	}
	return v, nil
}

// onChange keeps only the latest view. It runs on the runner goroutine,
// the only sender.
func (s *Session) onChange(v asynctable.View) {
	select {
	case <-s.changes:
	default:
	}
	s.changes <- v
}
