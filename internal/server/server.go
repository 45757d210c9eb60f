package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/dchest/uniuri"
	"go.uber.org/zap"

	"github.com/indigo-web/sonnet/config"
	"github.com/indigo-web/sonnet/http/mime"
	"github.com/indigo-web/sonnet/http/status"
	"github.com/indigo-web/sonnet/internal/construct"
	"github.com/indigo-web/sonnet/internal/metrics"
	"github.com/indigo-web/sonnet/internal/protocol/http1"
	"github.com/indigo-web/sonnet/router"
	"github.com/indigo-web/sonnet/transport"
)

const connIDLength = 8

// Server answers a single request per connection. It holds only read-only state, all the
// per-request data lives in an exchange.
type Server struct {
	cfg          *config.Config
	routes       router.Table
	notFoundPage string
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

func New(cfg *config.Config, routes router.Table, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		cfg:          cfg,
		routes:       routes,
		notFoundPage: cfg.Files.Resolve(cfg.Files.NotFound),
		logger:       logger,
		metrics:      m,
	}
}

type exchange struct {
	client      transport.Client
	serializer  *http1.Serializer
	log         *zap.Logger
	request     http1.Request
	contentType mime.ContentType
}

// Serve reads the request, responds to it and returns. Closing the connection is up to
// the caller. Errors never escape: they're logged and the connection is abandoned.
func (s *Server) Serve(conn net.Conn) {
	client := construct.Client(s.cfg.NET, conn)
	ex := &exchange{
		client:     client,
		serializer: construct.Serializer(client),
		log: s.logger.With(
			zap.String("conn", uniuri.NewLen(connIDLength)),
			zap.Stringer("remote", conn.RemoteAddr()),
		),
	}

	defer func() {
		if r := recover(); r != nil {
			ex.log.Error("panic while serving the connection", zap.Any("panic", r), zap.Stack("stack"))
			s.metrics.ConnectionError(metrics.KindTransport)
		}
	}()

	ex.log.Debug("client connected")
	s.handle(ex)
}

func (s *Server) handle(ex *exchange) {
	head, err := http1.ReadHead(ex.client, construct.HeadBuffer(s.cfg.Headers))
	if err != nil {
		s.onReadError(ex, err)
		return
	}

	ex.request, err = http1.ParseRequest(head)
	ex.contentType = mime.Classify(ex.request.Path)
	if err != nil {
		s.malformed(ex, err)
		return
	}

	ex.log.Debug("request received", zap.String("head", ex.request.Head))

	action, found := s.routes.Dispatch(ex.request.Path)
	if !found {
		s.notFound(ex)
		return
	}

	switch a := action.(type) {
	case router.ServeFile:
		s.sendFile(ex, a.Path)
	case router.Redirect:
		s.redirect(ex, a.URL)
	default:
		ex.log.Error("route has an unknown action", zap.String("type", fmt.Sprintf("%T", a)))
		s.notFound(ex)
	}
}

func (s *Server) onReadError(ex *exchange, err error) {
	switch status.CodeOf(err) {
	case status.CloseConnection:
		ex.log.Debug("client disconnected without sending a request")
	case status.RequestTimeout:
		ex.log.Debug("client is silent for too long, closing the connection")
		s.metrics.ConnectionError(metrics.KindTimeout)
	case status.BadRequest, status.RequestHeaderFieldsTooLarge:
		ex.contentType = mime.Classify(ex.request.Path)
		s.malformed(ex, err)
	default:
		if isPeerClosed(err) {
			ex.log.Debug("client closed the connection while sending the request", zap.Error(err))
			s.metrics.ConnectionError(metrics.KindPeerClosed)
			return
		}

		ex.log.Warn("cannot read the request", zap.Error(err))
		s.metrics.ConnectionError(metrics.KindTransport)
	}
}

// malformed responds to requests without a resource path the same way as to unknown ones.
func (s *Server) malformed(ex *exchange, err error) {
	ex.log.Warn("malformed request", zap.Error(err), zap.String("head", ex.request.Head))
	s.metrics.ConnectionError(metrics.KindMalformed)
	s.notFound(ex)
}

func (s *Server) sendFile(ex *exchange, path string) {
	body, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ex.log.Warn("file of a known route is missing", zap.String("file", path))
		s.notFound(ex)
		return
	case err != nil:
		ex.log.Error("cannot read the file", zap.String("file", path), zap.Error(err))
		s.metrics.ConnectionError(metrics.KindFile)
		return
	}

	s.respond(ex, status.OK, body)
}

// notFound sends the error page labelled with the content type of the original request.
func (s *Server) notFound(ex *exchange) {
	body, err := os.ReadFile(s.notFoundPage)
	if err != nil {
		ex.log.Error("cannot read the not found page", zap.String("file", s.notFoundPage), zap.Error(err))
		s.metrics.ConnectionError(metrics.KindFile)
		return
	}

	s.respond(ex, status.NotFound, body)
}

func (s *Server) redirect(ex *exchange, url string) {
	n, err := ex.serializer.Redirect(url)
	s.written(ex, status.Found, n, err, zap.String("location", url))
}

func (s *Server) respond(ex *exchange, code status.Code, body []byte) {
	n, err := ex.serializer.Respond(code, ex.contentType, body)
	s.written(ex, code, n, err, zap.Stringer("content_type", ex.contentType))
}

func (s *Server) written(ex *exchange, code status.Code, n int, err error, fields ...zap.Field) {
	if err != nil {
		if isPeerClosed(err) {
			ex.log.Debug("client closed the connection before the response was fully sent", zap.Error(err))
			s.metrics.ConnectionError(metrics.KindPeerClosed)
			return
		}

		ex.log.Error("cannot write the response", zap.Error(err))
		s.metrics.ConnectionError(metrics.KindTransport)
		return
	}

	s.metrics.Response(code, n)
	ex.log.Info("served", append(fields,
		zap.String("method", ex.request.Method),
		zap.String("path", ex.request.Path),
		zap.Uint16("status", uint16(code)),
		zap.Int("bytes", n),
		zap.String("host", ex.request.Host),
		zap.String("user_agent", ex.request.UserAgent),
	)...)
}
