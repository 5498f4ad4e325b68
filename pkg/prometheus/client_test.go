// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdata/netdata/go/promtable/pkg/web"
)

const (
	respVector = `{
  "status": "success",
  "data": {
    "resultType": "vector",
    "result": [
      {"metric": {"namespace": "kube-system", "spoke": "eu-1"}, "value": [1700000000.5, "0.25"]},
      {"metric": {"namespace": "default", "spoke": "eu-1"}, "value": [1700000000.5, "0"]}
    ]
  }
}`
	respEmpty   = `{"status":"success","data":{"resultType":"vector","result":[]}}`
	respScalar  = `{"status":"success","data":{"resultType":"scalar","result":[1700000000,"42"]}}`
	respMatrix  = `{"status":"success","data":{"resultType":"matrix","result":[]}}`
	respBadData = `{"status":"error","errorType":"bad_data","error":"1:5: parse error: unexpected end of input"}`
)

func TestPrometheus_Query(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		wantErr string
		check   func(t *testing.T, vec model.Vector)
	}{
		"vector": {
			status: http.StatusOK,
			body:   respVector,
			check: func(t *testing.T, vec model.Vector) {
				require.Len(t, vec, 2)
				assert.Equal(t, model.LabelValue("kube-system"), vec[0].Metric["namespace"])
				assert.Equal(t, model.SampleValue(0.25), vec[0].Value)
				assert.Equal(t, model.Time(1700000000500), vec[0].Timestamp)
			},
		},
		"empty vector": {
			status: http.StatusOK,
			body:   respEmpty,
			check: func(t *testing.T, vec model.Vector) {
				assert.Empty(t, vec)
			},
		},
		"scalar": {
			status: http.StatusOK,
			body:   respScalar,
			check: func(t *testing.T, vec model.Vector) {
				require.Len(t, vec, 1)
				assert.Empty(t, vec[0].Metric)
				assert.Equal(t, model.SampleValue(42), vec[0].Value)
			},
		},
		"unsupported result type": {
			status:  http.StatusOK,
			body:    respMatrix,
			wantErr: "unsupported result type 'matrix'",
		},
		"bad data": {
			status:  http.StatusBadRequest,
			body:    respBadData,
			wantErr: "bad_data: 1:5: parse error",
		},
		"error status with 200": {
			status:  http.StatusOK,
			body:    respBadData,
			wantErr: "bad_data",
		},
		"not json": {
			status:  http.StatusOK,
			body:    "<html>hello</html>",
			wantErr: "invalid JSON",
		},
		"bad gateway": {
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			wantErr: "returned HTTP status code: 502",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var gotMethod, gotQuery, gotContentType, gotPath string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotContentType = r.Header.Get("Content-Type")
				_ = r.ParseForm()
				gotQuery = r.PostForm.Get("query")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			}))
			defer srv.Close()

			prom := New(srv.Client(), web.RequestConfig{URL: srv.URL})

			vec, err := prom.Query(context.Background(), `group by (namespace) (kube_namespace_status_phase)`)

			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, "/api/v1/query", gotPath)
			assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
			assert.Equal(t, `group by (namespace) (kube_namespace_status_phase)`, gotQuery)

			if test.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
				return
			}
			require.NoError(t, err)
			test.check(t, vec)
		})
	}
}

func TestPrometheus_QueryAt(t *testing.T) {
	var gotTime, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotTime = r.PostForm.Get("time")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(respEmpty))
	}))
	defer srv.Close()

	prom := New(srv.Client(), web.RequestConfig{
		URL:      srv.URL + "/prometheus",
		Username: "user",
		Password: "pass",
	})

	_, err := prom.QueryAt(context.Background(), "up", time.UnixMilli(1700000000250))
	require.NoError(t, err)

	assert.Equal(t, "1700000000.25", gotTime)
	assert.Equal(t, "Basic dXNlcjpwYXNz", gotAuth)
}

func TestPrometheus_Query_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	prom := New(srv.Client(), web.RequestConfig{URL: srv.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := prom.Query(ctx, "up")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
