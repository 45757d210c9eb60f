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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/indigo-web/sonnet"
	"github.com/indigo-web/sonnet/config"
	"github.com/indigo-web/sonnet/http/status"
	"github.com/indigo-web/sonnet/internal/metrics"
	"github.com/indigo-web/sonnet/router"
)

const metricsShutdownTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   `sonnet [-c sonnet.json] [-a :8088] [-r ./src]`,
	Short: "Serve a tiny poetry site over HTTP/1.1",
	Long: `
Serve a tiny poetry site over HTTP/1.1.

Connections are served strictly one at a time. Known routes are /, two logos under
/images/, two poems under /poem/ and the /cs50 redirect. Anything else gets the 404 page.

Start on the default port: sonnet --root=./src
`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	registerFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(routesCmd)
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "JSON config file; flags override its values")
	flags.StringP("addr", "a", "", "address to listen on (default \":8088\")")
	flags.StringP("root", "r", "", "directory site files are resolved against (default \"./src\")")
	flags.Duration("read-timeout", 0, "close connections silent for longer than this, 0 disables (default 1m30s)")
	flags.Bool("proxy-protocol", false, "expect PROXY protocol headers from a load balancer")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Bool("debug", false, "log every request head and silent disconnects")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := newLogger(debug)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app := sonnet.New(cfg).Logger(logger).Metrics(reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := app.Serve(router.Default(cfg))
		if errors.Is(err, status.ErrShutdown) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		app.Stop()
		return nil
	})

	if metricsAddr, _ := cmd.Flags().GetString("metrics-addr"); len(metricsAddr) > 0 {
		serveMetrics(ctx, g, logger, metricsAddr, reg)
	}

	if err = g.Wait(); err != nil {
		logger.Error("server failed", zap.Error(err))
		return err
	}

	return nil
}

func serveMetrics(ctx context.Context, g *errgroup.Group, logger *zap.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// loadConfig takes defaults, applies the config file if any and then explicitly set flags.
func loadConfig(cmd *cobra.Command) (cfg *config.Config, err error) {
	flags := cmd.Flags()
	cfg = config.Default()

	if path, _ := flags.GetString("config"); len(path) > 0 {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if flags.Changed("addr") {
		cfg.NET.Addr, _ = flags.GetString("addr")
	}

	if flags.Changed("root") {
		cfg.Files.Root, _ = flags.GetString("root")
	}

	if flags.Changed("read-timeout") {
		timeout, _ := flags.GetDuration("read-timeout")
		cfg.NET.ReadTimeout = config.Duration(timeout)
	}

	if flags.Changed("proxy-protocol") {
		cfg.NET.ProxyProtocol, _ = flags.GetBool("proxy-protocol")
	}

	return cfg, cfg.Validate()
}
