// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"

	"github.com/netdata/netdata/go/promtable/logger"
	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/confopt"
	"github.com/netdata/netdata/go/promtable/pkg/kubetables"
	"github.com/netdata/netdata/go/promtable/pkg/web"
)

const (
	defaultURL     = "http://127.0.0.1:9090"
	defaultTimeout = 10 * time.Second
	defaultTable   = "namespaces"
)

// Config is the promtable configuration file.
// Supported configuration file formats: YAML.
type Config struct {
	Prometheus   web.HTTPConfig    `yaml:"prometheus"`
	Table        string            `yaml:"table"`
	Filters      map[string]string `yaml:"filters,omitempty"`
	Sort         string            `yaml:"sort,omitempty"`
	Expand       []string          `yaml:"expand,omitempty"`
	PageSize     int               `yaml:"page_size,omitempty"`
	Concurrency  int               `yaml:"concurrency,omitempty"`
	QueryTimeout confopt.Duration  `yaml:"query_timeout,omitempty"`
	RateInterval confopt.Duration  `yaml:"rate_interval,omitempty"`
	ClusterLabel string            `yaml:"cluster_label,omitempty"`
	AlertLabels  map[string]string `yaml:"alert_labels,omitempty"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Prometheus.URL = defaultURL
	cfg.Prometheus.Timeout = confopt.Duration(defaultTimeout)
	cfg.Table = defaultTable
	return cfg
}

// LoadConfig reads the config file at path on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("expand config path '%s': %v", path, err)
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config '%s': %w", path, err)
	}
	return cfg, nil
}

// Apply overrides the config with the options set on the command line.
func (c *Config) Apply(opt *Option) {
	if opt.URL != "" {
		c.Prometheus.URL = opt.URL
	}
	if opt.Table != "" {
		c.Table = opt.Table
	}
	if opt.Sort != "" {
		c.Sort = opt.Sort
	}
	if len(opt.Filters) > 0 {
		filters := maps.Clone(c.Filters)
		if filters == nil {
			filters = make(map[string]string)
		}
		maps.Copy(filters, opt.Filters)
		c.Filters = filters
	}
	if len(opt.Expand) > 0 {
		c.Expand = slices.Clone(opt.Expand)
	}
}

func (c Config) Validate() error {
	if err := c.Prometheus.Validate(); err != nil {
		return fmt.Errorf("prometheus: %w", err)
	}
	if !kubetables.IsTable(c.Table) {
		return fmt.Errorf("%w '%s' (available: %v)", kubetables.ErrUnknownTable, c.Table, kubetables.Names())
	}
	if c.PageSize < 0 {
		return fmt.Errorf("invalid 'page_size' %d", c.PageSize)
	}
	if _, err := c.Sorting(); err != nil {
		return err
	}
	return nil
}

// Sorting returns the configured sorting, the zero value when not set.
func (c Config) Sorting() (asynctable.SortingState, error) {
	if c.Sort == "" {
		return asynctable.SortingState{}, nil
	}
	return asynctable.ParseSortingState(c.Sort)
}

// ClientConfig returns the backend client config with room for every row
// query run at once.
func (c Config) ClientConfig() web.ClientConfig {
	cc := c.Prometheus.ClientConfig
	cc.MaxConnsPerHost = max(cc.MaxConnsPerHost, c.Concurrency)
	return cc
}

// TableOptions returns the options the table is opened with.
func (c Config) TableOptions(metrics *asynctable.Metrics, log *logger.Logger) kubetables.Options {
	sorting, _ := c.Sorting()

	return kubetables.Options{
		ClusterLabel: c.ClusterLabel,
		AlertLabels:  c.AlertLabels,
		RateWindow:   c.RateInterval.Duration(),
		Sorting:      sorting,
		Runner: asynctable.RunnerOptions{
			Concurrency:  c.Concurrency,
			QueryTimeout: c.QueryTimeout.Duration(),
			Metrics:      metrics,
			Logger:       log,
		},
	}
}

// needsReopen reports whether moving from c to other requires a new table.
func (c Config) needsReopen(other Config) bool {
	return c.Table != other.Table ||
		!reflect.DeepEqual(c.Prometheus, other.Prometheus) ||
		c.ClusterLabel != other.ClusterLabel ||
		c.RateInterval != other.RateInterval ||
		c.Concurrency != other.Concurrency ||
		c.QueryTimeout != other.QueryTimeout ||
		!maps.Equal(c.AlertLabels, other.AlertLabels)
}
