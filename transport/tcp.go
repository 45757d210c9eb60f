package transport

import (
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/pires/go-proxyproto"
	"go.uber.org/zap"

	"github.com/indigo-web/sonnet/config"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

var _ Transport = new(TCP)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP serves connections strictly one by one: the next connection is accepted only after
// the callback for the previous one returned and the connection was closed.
type TCP struct {
	l      listener
	accept net.Listener
	stop   *atomic.Bool
	logger *zap.Logger
}

func NewTCP(logger *zap.Logger) *TCP {
	tcp := newTCP(nil, logger)
	return &tcp
}

func newTCP(l listener, logger *zap.Logger) TCP {
	if logger == nil {
		logger = zap.NewNop()
	}

	return TCP{
		l:      l,
		accept: l,
		stop:   new(atomic.Bool),
		logger: logger,
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.l, t.accept = l, l
	return nil
}

// Addr returns the address the listener is actually bound to. Useful when binding
// to the port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	if cfg.ProxyProtocol {
		t.accept = &proxyproto.Listener{Listener: t.l}
	}

	var backoff time.Duration

	for !t.stop.Load() {
		err := t.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod.Std()))
		if err != nil {
			return err
		}

		conn, err := t.accept.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, net.ErrClosed):
				if t.stop.Load() {
					return nil
				}

				return err
			}

			backoff = nextBackoff(backoff)
			t.logger.Warn("accept failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}

		backoff = 0
		serve(conn, cb)
	}

	return nil
}

func serve(conn net.Conn, cb func(net.Conn)) {
	defer func() {
		_ = conn.Close()
	}()

	cb(conn)
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return minAcceptBackoff
	}

	return min(current*2, maxAcceptBackoff)
}

// Stop makes Listen return after the connection currently in flight (if any) is served.
// The call isn't blocking.
func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Close() {
	_ = t.l.Close()
}
