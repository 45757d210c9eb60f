package construct

import (
	"net"

	"github.com/indigo-web/sonnet/config"
	"github.com/indigo-web/sonnet/internal/buffer"
	"github.com/indigo-web/sonnet/internal/protocol/http1"
	"github.com/indigo-web/sonnet/transport"
)

func Client(cfg config.NET, conn net.Conn) transport.Client {
	readBuff := make([]byte, cfg.ReadBufferSize)

	return transport.NewClient(conn, cfg.ReadTimeout.Std(), readBuff)
}

func HeadBuffer(cfg config.Headers) *buffer.Buffer {
	return buffer.New(cfg.HeadPrealloc, cfg.MaxHeadSize)
}

func Serializer(client transport.Client) *http1.Serializer {
	// responses are assembled as a whole, so there's no point in preallocating. The buffer
	// grows to fit the largest file served on this connection
	return http1.NewSerializer(client, nil)
}
