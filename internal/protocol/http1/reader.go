package http1

import (
	"errors"
	"io"
	"net"

	"github.com/indigo-web/sonnet/http/status"
	"github.com/indigo-web/sonnet/internal/buffer"
	"github.com/indigo-web/sonnet/transport"
)

// ReadHead reads lines from the client until an empty one. A line is terminated by
// either \n, \r or \r\n. Lines are stored into the buffer, each followed by a single \n,
// so the result is the head normalized to bare LFs. Everything received after the empty
// line is ignored, as bodies aren't supported.
//
// Possible errors:
//   - status.ErrCloseConnection: the client disconnected without sending anything.
//   - status.ErrBadRequest: the client disconnected in the middle of the head.
//   - status.ErrRequestTimeout: the client was silent for too long.
//   - status.ErrHeaderFieldsTooLarge: the head doesn't fit into the buffer.
//   - any other error returned by the transport.
func ReadHead(client transport.Client, head *buffer.Buffer) ([]byte, error) {
	var (
		received bool
		// sawCR is set if the last processed byte was \r, so the \n right after it
		// must not be treated as one more line terminator
		sawCR bool
	)

	for {
		data, err := client.Read()
		received = received || len(data) > 0

		checkpoint := 0
		for i, c := range data {
			if c != '\r' && c != '\n' {
				sawCR = false
				continue
			}

			if c == '\n' && sawCR {
				sawCR = false
				checkpoint = i + 1
				continue
			}

			sawCR = c == '\r'

			if i == checkpoint && (head.Len() == 0 || head.Last() == '\n') {
				// empty line
				return head.Bytes(), nil
			}

			if !head.Append(data[checkpoint:i]) || !head.AppendByte('\n') {
				return nil, status.ErrHeaderFieldsTooLarge
			}

			checkpoint = i + 1
		}

		if !head.Append(data[checkpoint:]) {
			return nil, status.ErrHeaderFieldsTooLarge
		}

		if err != nil {
			return nil, readError(err, received)
		}
	}
}

func readError(err error, received bool) error {
	var netErr net.Error

	switch {
	case errors.Is(err, io.EOF):
		if received {
			return status.ErrBadRequest
		}

		return status.ErrCloseConnection
	case errors.As(err, &netErr) && netErr.Timeout():
		return status.ErrRequestTimeout
	default:
		return err
	}
}
