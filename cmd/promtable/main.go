// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/net/http/httpproxy"

	"github.com/netdata/netdata/go/promtable/cli"
	"github.com/netdata/netdata/go/promtable/logger"
	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/buildinfo"
	promclient "github.com/netdata/netdata/go/promtable/pkg/prometheus"
	"github.com/netdata/netdata/go/promtable/pkg/web"
)

func init() {
	// https://github.com/netdata/netdata/issues/8949#issuecomment-638294959
	if v := os.Getenv("TZ"); strings.HasPrefix(v, ":") {
		_ = os.Unsetenv("TZ")
	}
}

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))

	opts := parseCLI()

	if opts.Version {
		fmt.Printf("%s, version: %s\n", cli.Name, buildinfo.Version)
		return
	}

	if lvl := os.Getenv("PROMTABLE_LOG_LEVEL"); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		_ = cli.RenderError(os.Stdout, opts.Output, opts.Table, err)
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", cli.Name, err)
		os.Exit(1)
	}
}

func parseCLI() *cli.Option {
	opt, err := cli.Parse(os.Args[1:])
	if err != nil {
		if cli.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	return opt
}

type app struct {
	*logger.Logger

	opts    *cli.Option
	metrics *asynctable.Metrics

	session  *cli.Session
	recorder *cli.Recorder
	cancel   context.CancelFunc
	done     chan struct{}
}

func run(ctx context.Context, opts *cli.Option) error {
	a := &app{
		Logger: logger.New().With("component", cli.Name),
		opts:   opts,
	}

	a.Infof("%s: %s", cli.Name, buildinfo.Info())
	proxyCfg := httpproxy.FromEnvironment()
	a.Debugf("env HTTP_PROXY '%s', HTTPS_PROXY '%s'", proxyCfg.HTTPProxy, proxyCfg.HTTPSProxy)

	if opts.Watch && opts.Config == "" {
		return errors.New("--watch requires a config file")
	}

	reg := prometheus.NewRegistry()
	a.metrics = asynctable.NewMetrics(reg)
	if opts.MetricsListen != "" {
		a.serveMetrics(ctx, reg)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := a.open(ctx, cfg); err != nil {
		return err
	}
	defer a.close()

	if err := a.settleAndRender(ctx, cfg); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	changes, err := cli.WatchConfig(ctx, opts.Config, a.Logger)
	if err != nil {
		return err
	}
	a.Infof("watching '%s' for changes", opts.Config)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}

		cfg, err := a.loadConfig()
		if err != nil {
			a.Errorf("reload config: %v", err)
			continue
		}
		if a.session == nil || a.session.NeedsReopen(cfg) {
			a.close()
			if err := a.open(ctx, cfg); err != nil {
				a.Errorf("open table: %v", err)
				_ = cli.RenderError(os.Stdout, a.opts.Output, cfg.Table, err)
				continue
			}
		}
		if err := a.settleAndRender(ctx, cfg); err != nil {
			a.Errorf("%v", err)
			_ = cli.RenderError(os.Stdout, a.opts.Output, cfg.Table, err)
		}
	}
}

func (a *app) loadConfig() (cli.Config, error) {
	cfg, err := cli.LoadConfig(a.opts.Config)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(a.opts)
	return cfg, cfg.Validate()
}

// open creates the backend client and a session for cfg and starts running it.
func (a *app) open(ctx context.Context, cfg cli.Config) error {
	client, err := web.NewHTTPClient(cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("create http client: %v", err)
	}

	a.recorder = cli.NewRecorder(promclient.New(client, cfg.Prometheus.RequestConfig))

	sess, err := cli.NewSession(cfg, a.recorder, a.metrics, a.Logger)
	if err != nil {
		return err
	}
	a.Infof("table '%s' on '%s'", cfg.Table, cfg.Prometheus.URL)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() { defer close(done); sess.Run(ctx) }()

	a.session, a.cancel, a.done = sess, cancel, done
	return nil
}

func (a *app) close() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.session, a.cancel = nil, nil
}

func (a *app) settleAndRender(ctx context.Context, cfg cli.Config) error {
	view, err := a.session.Settle(ctx, cfg)
	if err != nil {
		return err
	}
	return cli.Render(os.Stdout, a.opts.Output, view, a.recorder.Take())
}

func (a *app) serveMetrics(ctx context.Context, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              a.opts.MetricsListen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.Infof("serving metrics on '%s'", a.opts.MetricsListen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Errorf("metrics server: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
}
