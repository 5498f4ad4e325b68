// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/http2"

	"github.com/netdata/netdata/go/promtable/pkg/confopt"
	"github.com/netdata/netdata/go/promtable/pkg/tlscfg"
)

// ErrRedirectAttempted is returned for a redirect response when redirects are not followed.
var ErrRedirectAttempted = errors.New("redirect")

const defaultMaxConnsPerHost = 8

// ClientConfig controls the connection to the query backend.
type ClientConfig struct {
	// Timeout bounds a whole query, dialing and TLS handshake included. Zero means no limit.
	Timeout confopt.Duration `yaml:"timeout,omitempty" json:"timeout"`

	// NotFollowRedirect fails a redirected query with ErrRedirectAttempted.
	NotFollowRedirect bool `yaml:"not_follow_redirects,omitempty" json:"not_follow_redirects"`

	// ProxyURL overrides HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	ProxyURL string `yaml:"proxy_url,omitempty" json:"proxy_url"`

	tlscfg.TLSConfig `yaml:",inline" json:""`

	// ForceHTTP2 talks HTTP/2 to the backend, cleartext (h2c) for http URLs.
	// The proxy is not used in this mode.
	ForceHTTP2 bool `yaml:"force_http2,omitempty" json:"force_http2"`

	// MaxConnsPerHost is the number of idle connections kept to the backend.
	// Row queries run in parallel, so it should not be below their concurrency.
	// Values below 8 are raised to 8.
	MaxConnsPerHost int `yaml:"max_conns_per_host,omitempty" json:"max_conns_per_host"`
}

// NewHTTPClient returns the client queries are sent with.
func NewHTTPClient(cfg ClientConfig) (*http.Client, error) {
	tlsConfig, err := tlscfg.NewTLSConfig(cfg.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("create TLS config: %v", err)
	}

	dialer := &net.Dialer{Timeout: cfg.Timeout.Duration()}

	var transport http.RoundTripper
	if cfg.ForceHTTP2 {
		transport = newHTTP2Transport(tlsConfig, dialer)
	} else {
		proxy, err := proxyFunc(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		transport = &http.Transport{
			Proxy:               proxy,
			DialContext:         dialer.DialContext,
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: cfg.Timeout.Duration(),
			MaxIdleConnsPerHost: max(cfg.MaxConnsPerHost, defaultMaxConnsPerHost),
		}
	}

	return &http.Client{
		Timeout:       cfg.Timeout.Duration(),
		Transport:     transport,
		CheckRedirect: redirectFunc(cfg.NotFollowRedirect),
	}, nil
}

// http2Transport sends https requests over TLS and http requests over h2c.
type http2Transport struct {
	tls *http2.Transport
	h2c *http2.Transport
}

func newHTTP2Transport(tlsConfig *tls.Config, dialer *net.Dialer) *http2Transport {
	return &http2Transport{
		tls: &http2.Transport{TLSClientConfig: tlsConfig},
		h2c: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
}

func (t *http2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "https" {
		return t.tls.RoundTrip(req)
	}
	return t.h2c.RoundTrip(req)
}

func (t *http2Transport) CloseIdleConnections() {
	t.tls.CloseIdleConnections()
	t.h2c.CloseIdleConnections()
}

func proxyFunc(rawURL string) (func(*http.Request) (*url.URL, error), error) {
	if rawURL == "" {
		return http.ProxyFromEnvironment, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy URL '%s': %v", rawURL, err)
	}
	return http.ProxyURL(u), nil
}

func redirectFunc(notFollow bool) func(*http.Request, []*http.Request) error {
	if !notFollow {
		return nil
	}
	return func(*http.Request, []*http.Request) error { return ErrRedirectAttempted }
}
