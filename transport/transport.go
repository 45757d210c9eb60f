package transport

import (
	"net"

	"github.com/indigo-web/sonnet/config"
)

// Transport accepts connections and hands them over to the callback.
type Transport interface {
	Bind(addr string) error
	Addr() net.Addr
	Listen(cfg config.NET, cb func(conn net.Conn)) error
	Stop()
	Close()
}
