package server

import (
	"errors"
	"io"
	"syscall"
)

// isPeerClosed reports whether the error means the client has gone away. That's normal
// for clients that close the connection as soon as they got enough.
func isPeerClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe)
}
