// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"github.com/jessevdk/go-flags"
)

const Name = "promtable"

// Option defines command line options.
type Option struct {
	Config        string            `short:"c" long:"config" description:"config file to read"`
	URL           string            `short:"u" long:"url" description:"Prometheus base URL, overrides the config"`
	Table         string            `short:"t" long:"table" description:"table to show (alerts, daemonsets, namespaces)"`
	Sort          string            `short:"s" long:"sort" description:"sort column and direction (column:asc|desc)"`
	Filters       map[string]string `short:"f" long:"filter" description:"filter value as name:value, repeatable"`
	Expand        []string          `short:"e" long:"expand" description:"id of a row to expand, repeatable"`
	Output        string            `short:"o" long:"output" description:"output format" choice:"table" choice:"json" choice:"queries" default:"table"`
	Watch         bool              `short:"w" long:"watch" description:"re-render when the config file changes"`
	MetricsListen string            `long:"metrics-listen" description:"address to serve the engine metrics on"`
	Debug         bool              `short:"d" long:"debug" description:"debug mode"`
	Version       bool              `short:"v" long:"version" description:"display the version and exit"`
}

// Parse returns parsed command-line flags in Option struct
func Parse(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = Name
	parser.Usage = "[OPTIONS]"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return opt, nil
}

func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}
