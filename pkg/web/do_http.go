// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"fmt"
	"io"
	"net/http"
)

// DoHTTP wraps an *http.Client for a single request/response exchange.
func DoHTTP(cl *http.Client) *Client {
	return &Client{cl: cl}
}

type Client struct {
	cl        *http.Client
	onNokCode func(resp *http.Response) (bool, error)
}

// OnNokCode installs a hook invoked for non-2xx responses.
// Returning true continues with body parsing, a non-nil error is returned as is,
// otherwise the request fails with a generic status error.
func (c *Client) OnNokCode(fn func(resp *http.Response) (bool, error)) *Client {
	c.onNokCode = fn
	return c
}

// Request sends req and passes the body of a successful response to parse.
func (c *Client) Request(req *http.Request, parse func(body io.Reader) error) error {
	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("error on HTTP request to '%s': %w", req.URL, err)
	}
	defer CloseBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ok, err := c.handleNokCode(resp)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("'%s' returned HTTP status code: %d", req.URL, resp.StatusCode)
		}
	}

	if parse == nil {
		return nil
	}
	if err := parse(resp.Body); err != nil {
		return fmt.Errorf("error on parsing response from '%s': %w", req.URL, err)
	}
	return nil
}

func (c *Client) handleNokCode(resp *http.Response) (bool, error) {
	if c.onNokCode == nil {
		return false, nil
	}
	return c.onNokCode(resp)
}

// CloseBody drains and closes the response body so the connection can be reused.
func CloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
