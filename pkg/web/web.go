// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"errors"
	"fmt"
	"net/url"
)

// HTTPConfig is the backend section of the config file: the request sent for
// every query and the client it is sent with.
type HTTPConfig struct {
	RequestConfig `yaml:",inline" json:""`
	ClientConfig  `yaml:",inline" json:""`
}

// Validate checks that URL is an absolute http or https URL.
func (c HTTPConfig) Validate() error {
	if c.URL == "" {
		return errors.New("'url' not set")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid 'url': %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid 'url' scheme '%s' (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid 'url' '%s': no host", c.URL)
	}
	return nil
}
