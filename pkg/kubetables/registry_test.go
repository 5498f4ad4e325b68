// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
)

type nopQuerier struct{}

func (nopQuerier) Query(context.Context, string) (model.Vector, error) { return nil, nil }

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"alerts", "daemonsets", "namespaces"}, Names())

	for _, name := range Names() {
		assert.True(t, IsTable(name))
		assert.NotEmpty(t, Help(name))
	}
	assert.False(t, IsTable("pods"))
}

func TestOpen(t *testing.T) {
	tests := map[string]struct {
		table     string
		opts      Options
		wantErr   bool
		wantErrIs error
	}{
		"alerts":     {table: "alerts"},
		"daemonsets": {table: "daemonsets"},
		"namespaces": {table: "namespaces"},
		"initial sorting": {
			table: "namespaces",
			opts:  Options{Sorting: asynctable.SortingState{ColumnID: "memory_usage", Direction: "desc"}},
		},
		"unknown table": {
			table:     "pods",
			wantErr:   true,
			wantErrIs: ErrUnknownTable,
		},
		"unknown sort column": {
			table:     "daemonsets",
			opts:      Options{Sorting: asynctable.SortingState{ColumnID: "cpu_usage"}},
			wantErr:   true,
			wantErrIs: asynctable.ErrUnknownColumn,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := Open(test.table, test.opts, nopQuerier{})

			if test.wantErr {
				require.Error(t, err)
				if test.wantErrIs != nil {
					assert.True(t, errors.Is(err, test.wantErrIs))
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}
}

func TestOpen_ViewBeforeRun(t *testing.T) {
	v, err := Open("namespaces", Options{}, nopQuerier{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = v.View(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
