package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/config"
	"github.com/vango-dev/weave/internal/demo"
	"github.com/vango-dev/weave/internal/telemetry"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
	"github.com/vango-dev/weave/pkg/stream"
)

type serveOptions struct {
	configPath string
	address    string
	app        string
	size       int
	interval   time.Duration
	sweep      time.Duration
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app over WebSocket",
		Long: `Serve a demo app and stream its edit scripts to connected clients.

The app's state advances on every tick. Clients connect to /ws, receive
a snapshot and then one patches frame per render. The rendered HTML is
served at /, health at /healthz and Prometheus metrics at /metrics.

Configuration is read from --config, or weave.json / weave.yaml in the
working directory when present.

Examples:
  weave serve
  weave serve --app list --size 200 --interval 100ms
  weave serve --config weave.yaml --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: weave.json or weave.yaml)")
	cmd.Flags().StringVarP(&opts.address, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&opts.app, "app", "counter", fmt.Sprintf("Demo app %v", demo.Names))
	cmd.Flags().IntVar(&opts.size, "size", 50, "Row count for the list app")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Tick interval")
	cmd.Flags().DurationVar(&opts.sweep, "sweep", 30*time.Second, "Edge pool cleanup interval (0 disables)")

	return cmd
}

// loadConfig reads path, or the working directory's config file, or
// falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if found, ok := config.Find("."); ok {
		return config.LoadFile(found)
	}
	return config.New(), nil
}

func runServe(parent context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be > 0")
	}

	logger := cfg.Logger(os.Stderr)

	var (
		tel     *telemetry.Telemetry
		metrics http.Handler
	)
	rtOpts := cfg.RuntimeOptions(logger)
	rtOpts = append(rtOpts, reactive.WithErrorSink(func(err error) {
		logger.Error("runtime error", "error", err)
	}))
	if cfg.Telemetry.Metrics || cfg.Telemetry.Tracing {
		tel = telemetry.New(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithTracing(cfg.Telemetry.Tracing),
		)
		rtOpts = append(rtOpts, reactive.WithObserver(tel))
		if cfg.Telemetry.Metrics {
			metrics = tel.Handler()
		}
	}
	rt := reactive.New(rtOpts...)

	// Everything below runs on this goroutine until rt.Run takes over.
	app, err := demo.New(rt, opts.app, opts.size)
	if err != nil {
		return err
	}
	renderOpts := []render.Option{render.WithLogger(logger), render.WithName(app.Name)}
	hubOpts := []stream.Option{stream.WithConfig(cfg.HubConfig()), stream.WithLogger(logger)}
	if tel != nil {
		renderOpts = append(renderOpts, render.WithObserver(tel))
		hubOpts = append(hubOpts, stream.WithObserver(tel))
		tel.TrackPool(rt.Pool())
	}
	root := render.New(rt, app.View, renderOpts...)
	if tel != nil {
		root.OnPatch(tel.CountPatches)
	}
	root.Mount()
	hub := stream.NewHub(root, hubOpts...)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- rt.Run(ctx)
	}()
	go tick(ctx, rt, app, opts.interval)
	if opts.sweep > 0 {
		go sweep(ctx, rt, opts.sweep, func(evicted int) {
			if evicted > 0 {
				logger.Debug("edge pool cleanup", "evicted", evicted)
			}
		})
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           hub.Router(metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	printBanner()
	success("Serving %s on %s", app.Name, cfg.Server.Address)
	info("ws:      /ws")
	info("html:    /")
	info("health:  /healthz")
	if metrics != nil {
		info("metrics: /metrics")
	}
	info("mode:    %s flush, tick every %s", rt.Mode(), opts.interval)
	fmt.Println()

	select {
	case err := <-serveErr:
		stop()
		<-loopDone
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("\n  Shutting down...")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		warn("shutdown: %v", err)
	}
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// tick advances app on the runtime loop every interval.
func tick(ctx context.Context, rt *reactive.Runtime, app *demo.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !rt.Dispatch(app.Tick) {
				return
			}
		}
	}
}

// sweep evicts edges whose owner scope was collected, on the runtime loop
// every interval. done receives each eviction count.
func sweep(ctx context.Context, rt *reactive.Runtime, interval time.Duration, done func(evicted int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := rt.Dispatch(func() {
				done(rt.Pool().Cleanup())
			})
			if !ok {
				return
			}
		}
	}
}
