package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/sonnet/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with piece by piece and reports io.EOF
// afterwards, unless looped. It also tracks all the written data, making it thereby a
// universal mock suitable for most of the tests.
type Client struct {
	closed   bool
	loop     bool
	pointer  int
	written  []byte
	data     [][]byte
	readErr  error
	writeErr error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			if c.readErr != nil {
				return nil, c.readErr
			}

			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *Client) Conn() net.Conn {
	return new(Conn).Nop()
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// LoopReads makes the client start over once the data is exhausted.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailReads replaces the final io.EOF with the passed error.
func (c *Client) FailReads(err error) *Client {
	c.readErr = err
	return c
}

// FailWrites makes every write fail with the passed error.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

// Written returns everything written so far.
func (c *Client) Written() []byte {
	return c.written
}

func (c *Client) Closed() bool {
	return c.closed
}
