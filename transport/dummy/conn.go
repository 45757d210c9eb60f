package dummy

import (
	"io"
	"net"
	"strings"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is an in-memory net.Conn. Reads are served from the request it was created with,
// writes are journaled into Data unless the conn is nop.
type Conn struct {
	Data   []byte
	Closes int
	reader io.Reader
	nop    bool
}

func NewConn(request string) *Conn {
	return &Conn{reader: strings.NewReader(request)}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.reader == nil {
		return 0, io.EOF
	}

	return c.reader.Read(b)
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.Closes++
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8088}
}

func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}
