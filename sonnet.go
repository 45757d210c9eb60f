package sonnet

import (
	"fmt"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/indigo-web/sonnet/config"
	"github.com/indigo-web/sonnet/http/status"
	"github.com/indigo-web/sonnet/internal/metrics"
	"github.com/indigo-web/sonnet/internal/server"
	"github.com/indigo-web/sonnet/router"
	"github.com/indigo-web/sonnet/transport"
)

// App binds the listener and serves connections one by one until stopped.
type App struct {
	cfg     *config.Config
	hooks   hooks
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	stopped   bool
	transport *transport.TCP
}

// New returns a new App instance. Passing nil config means using defaults.
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	return &App{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// Logger replaces the default no-op logger.
func (a *App) Logger(logger *zap.Logger) *App {
	a.logger = logger
	return a
}

// Metrics registers the server metrics in the registerer.
func (a *App) Metrics(reg prometheus.Registerer) *App {
	a.metrics = metrics.New(reg)
	return a
}

// NotifyOnStart calls the callback at the moment the listener is bound, right before the
// first connection is accepted. The callback receives the actual bound address.
func (a *App) NotifyOnStart(cb func(addr net.Addr)) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback after the listener was closed. It's guaranteed that at
// this moment no connection is being served anymore.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the listener and blocks serving connections. Failing to bind is returned
// as is, because there's nothing left to do then. After Stop, status.ErrShutdown is
// returned.
func (a *App) Serve(routes router.Table) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	tcp := transport.NewTCP(a.logger)
	if err := tcp.Bind(a.cfg.NET.Addr); err != nil {
		return fmt.Errorf("bind %s: %w", a.cfg.NET.Addr, err)
	}

	if !a.setTransport(tcp) {
		tcp.Close()
		return status.ErrShutdown
	}

	a.logger.Info("server started. Listening for connections",
		zap.Stringer("addr", tcp.Addr()),
		zap.Strings("routes", routes.Paths()),
		zap.Bool("proxy_protocol", a.cfg.NET.ProxyProtocol),
	)

	if a.hooks.OnStart != nil {
		a.hooks.OnStart(tcp.Addr())
	}

	srv := server.New(a.cfg, routes, a.logger, a.metrics)
	err := tcp.Listen(a.cfg.NET, srv.Serve)
	tcp.Close()
	a.logger.Info("server stopped")
	callIfNotNil(a.hooks.OnStop)

	if err == nil {
		return status.ErrShutdown
	}

	return err
}

func (a *App) setTransport(tcp *transport.TCP) (ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	a.transport = tcp
	return true
}

// Stop makes Serve return after the connection currently being served, if any. Stop may
// be called before Serve, in which case Serve returns immediately.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// may be still working
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	if a.transport != nil {
		a.transport.Stop()
	}
}

type hooks struct {
	OnStart func(net.Addr)
	OnStop  func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
