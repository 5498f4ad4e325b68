// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/common/model"

	"github.com/netdata/netdata/go/promtable/pkg/web"
)

type (
	// Prometheus is a client for the instant query endpoint of the Prometheus HTTP API.
	Prometheus interface {
		// Query evaluates expr at the server's current time.
		Query(ctx context.Context, expr string) (model.Vector, error)
		QueryAt(ctx context.Context, expr string, ts time.Time) (model.Vector, error)
	}

	prometheus struct {
		client  *http.Client
		request web.RequestConfig
	}
)

const queryPath = "/api/v1/query"

// maxErrorBody limits how much of a failed response is read looking for an API error.
const maxErrorBody = 64 << 10

// New creates a Prometheus instance. request.URL is the server base URL.
func New(client *http.Client, request web.RequestConfig) Prometheus {
	return &prometheus{
		client:  client,
		request: request,
	}
}

func (p *prometheus) Query(ctx context.Context, expr string) (model.Vector, error) {
	return p.QueryAt(ctx, expr, time.Time{})
}

func (p *prometheus) QueryAt(ctx context.Context, expr string, ts time.Time) (model.Vector, error) {
	form := url.Values{"query": {expr}}
	if !ts.IsZero() {
		form.Set("time", formatTime(ts))
	}

	req, err := web.NewFormRequest(p.request, queryPath, form)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	var vec model.Vector

	err = web.DoHTTP(p.client).OnNokCode(func(resp *http.Response) (bool, error) {
		bs, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if apiErr := parseAPIError(bs); apiErr != nil {
			return false, apiErr
		}
		return false, nil
	}).Request(req, func(body io.Reader) error {
		v, err := decodeQueryResponse(body)
		vec = v
		return err
	})
	if err != nil {
		return nil, err
	}

	return vec, nil
}

func formatTime(ts time.Time) string {
	return strconv.FormatFloat(float64(ts.UnixMilli())/1e3, 'f', -1, 64)
}
