// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
)

// QueryRecord is one query sent to the backend.
type QueryRecord struct {
	Expr    string
	Samples int
	Took    time.Duration
	Err     error
}

// Recorder is a Querier keeping a record of every query passed to the wrapped Querier.
type Recorder struct {
	querier asynctable.Querier

	mu      sync.Mutex
	records []QueryRecord
}

func NewRecorder(q asynctable.Querier) *Recorder {
	return &Recorder{querier: q}
}

func (r *Recorder) Query(ctx context.Context, expr string) (model.Vector, error) {
	now := time.Now()
	vec, err := r.querier.Query(ctx, expr)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, QueryRecord{
		Expr:    expr,
		Samples: len(vec),
		Took:    time.Since(now),
		Err:     err,
	})

	return vec, err
}

// Take returns the records collected so far and starts a new collection.
func (r *Recorder) Take() []QueryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.records
	r.records = nil
	return records
}
