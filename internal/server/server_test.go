package server

import (
	"bufio"
	"bytes"
	"io"
	"net"
	stdhttp "net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/indigo-web/sonnet/config"
	"github.com/indigo-web/sonnet/internal/metrics"
	"github.com/indigo-web/sonnet/router"
	"github.com/indigo-web/sonnet/transport/dummy"
)

var site = map[string]string{
	"main-page.html":             "<h1>Main page</h1>",
	"404.html":                   "<h1>Not found</h1>",
	"poem/sonnet-18.html":        "<p>Shall I compare thee to a summer's day?</p>",
	"poem/the-new-colossus.html": "<p>Not like the brazen giant of Greek fame</p>",
	"images/java-logo.png":       "\x89PNG\r\n\x1a\njava",
	"images/javascript-logo.png": "\x89PNG\r\n\x1a\njavascript",
}

func writeSite(t *testing.T) string {
	root := t.TempDir()
	for name, content := range site {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

type testServer struct {
	*Server
	cfg  *config.Config
	logs *observer.ObservedLogs
	reg  *prometheus.Registry
	m    *metrics.Metrics
}

func newTestServer(t *testing.T) testServer {
	cfg := config.Default()
	cfg.Files.Root = writeSite(t)
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	return testServer{
		Server: New(cfg, router.Default(cfg), zap.New(core), m),
		cfg:    cfg,
		logs:   logs,
		reg:    reg,
		m:      m,
	}
}

func (ts testServer) do(t *testing.T, request string) (*stdhttp.Response, []byte) {
	conn := dummy.NewConn(request)
	ts.Serve(conn)
	require.NotEmpty(t, conn.Data, "no response was written")

	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(conn.Data)), nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func get(path string) string {
	return "GET " + path + " HTTP/1.1\r\nHost: localhost:8088\r\nUser-Agent: test\r\n\r\n"
}

func TestServe(t *testing.T) {
	ts := newTestServer(t)

	t.Run("static files", func(t *testing.T) {
		for path, file := range map[string]string{
			"/":                           "main-page.html",
			"/images/java-logo.png":       "images/java-logo.png",
			"/images/javascript-logo.png": "images/javascript-logo.png",
			"/poem/sonnet-18.html":        "poem/sonnet-18.html",
			"/poem/the-new-colossus.html": "poem/the-new-colossus.html",
		} {
			resp, body := ts.do(t, get(path))
			require.Equal(t, 200, resp.StatusCode, path)
			require.Equal(t, "OK", resp.Status[len("200 "):], path)
			require.Equal(t, int64(len(site[file])), resp.ContentLength, path)
			require.Equal(t, site[file], string(body), path)
		}
	})

	t.Run("content types", func(t *testing.T) {
		resp, _ := ts.do(t, get("/images/java-logo.png"))
		require.Equal(t, "image/png; charset=UTF-8", resp.Header.Get("Content-Type"))

		resp, _ = ts.do(t, get("/poem/sonnet-18.html"))
		require.Equal(t, "text/html; charset=UTF-8", resp.Header.Get("Content-Type"))

		resp, _ = ts.do(t, get("/"))
		require.Equal(t, "text/html; charset=UTF-8", resp.Header.Get("Content-Type"))
	})

	t.Run("redirect", func(t *testing.T) {
		resp, body := ts.do(t, get("/cs50"))
		require.Equal(t, 302, resp.StatusCode)
		require.Equal(t,
			"https://www.youtube.com/watch?v=LfaMVlDaQ24&ab_channel=freeCodeCamp.org",
			resp.Header.Get("Location"),
		)
		require.Empty(t, body)
	})

	t.Run("not found", func(t *testing.T) {
		for _, path := range []string{"/nonexistent", "/cs50/", "/POEM/sonnet-18.html", "/?a=b"} {
			resp, body := ts.do(t, get(path))
			require.Equal(t, 404, resp.StatusCode, path)
			require.Equal(t, site["404.html"], string(body), path)
			require.Equal(t, "text/html; charset=UTF-8", resp.Header.Get("Content-Type"), path)
		}
	})

	t.Run("not found keeps the content type of the request", func(t *testing.T) {
		resp, body := ts.do(t, get("/images/python-logo.png"))
		require.Equal(t, 404, resp.StatusCode)
		require.Equal(t, "image/png; charset=UTF-8", resp.Header.Get("Content-Type"))
		require.Equal(t, site["404.html"], string(body))
	})

	t.Run("malformed request line", func(t *testing.T) {
		for _, request := range []string{"GET\r\n\r\n", "\r\n", "GET / HTTP/1.1\r\nHost: loc"} {
			resp, body := ts.do(t, request)
			require.Equal(t, 404, resp.StatusCode, request)
			require.Equal(t, site["404.html"], string(body), request)
		}
	})

	t.Run("bare LF request", func(t *testing.T) {
		resp, _ := ts.do(t, "GET /poem/sonnet-18.html HTTP/1.0\n\n")
		require.Equal(t, 200, resp.StatusCode)
	})

	require.Equal(t, 3, ts.logs.FilterMessage("malformed request").Len())
	require.Equal(t, 9, ts.logs.FilterMessage("served").FilterField(zap.Uint16("status", 200)).Len())

	// one series per status code: 200, 302 and 404
	series, err := testutil.GatherAndCount(ts.reg, "sonnet_responses_total")
	require.NoError(t, err)
	require.Equal(t, 3, series)
}

// brokenConn fails every write the way a socket does after the peer has gone away.
type brokenConn struct {
	*dummy.Conn
	err error
}

func (b brokenConn) Write([]byte) (int, error) {
	return 0, &net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", b.err)}
}

func TestServeErrors(t *testing.T) {
	t.Run("peer closed while writing", func(t *testing.T) {
		for _, errno := range []error{syscall.EPIPE, syscall.ECONNRESET} {
			ts := newTestServer(t)
			ts.Serve(brokenConn{Conn: dummy.NewConn(get("/poem/sonnet-18.html")), err: errno})

			entries := ts.logs.FilterMessage("client closed the connection before the response was fully sent")
			require.Equal(t, 1, entries.Len(), errno)
			require.Equal(t, zapcore.DebugLevel, entries.All()[0].Level)
			require.Zero(t, ts.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
		}
	})

	t.Run("other write errors", func(t *testing.T) {
		ts := newTestServer(t)
		ts.Serve(brokenConn{Conn: dummy.NewConn(get("/")), err: syscall.ENOBUFS})
		require.Equal(t, 1, ts.logs.FilterMessage("cannot write the response").Len())
	})

	t.Run("missing file of a known route", func(t *testing.T) {
		ts := newTestServer(t)
		require.NoError(t, os.Remove(filepath.Join(ts.cfg.Files.Root, "poem", "sonnet-18.html")))

		resp, body := ts.do(t, get("/poem/sonnet-18.html"))
		require.Equal(t, 404, resp.StatusCode)
		require.Equal(t, site["404.html"], string(body))
		require.Equal(t, 1, ts.logs.FilterMessage("file of a known route is missing").Len())
	})

	t.Run("missing not found page", func(t *testing.T) {
		ts := newTestServer(t)
		require.NoError(t, os.Remove(filepath.Join(ts.cfg.Files.Root, "404.html")))

		conn := dummy.NewConn(get("/nonexistent"))
		ts.Serve(conn)
		require.Empty(t, conn.Data)
		require.Equal(t, 1, ts.logs.FilterMessage("cannot read the not found page").Len())
	})

	t.Run("disconnect without a request", func(t *testing.T) {
		ts := newTestServer(t)
		conn := dummy.NewConn("")
		ts.Serve(conn)
		require.Empty(t, conn.Data)
		require.Equal(t, 1, ts.logs.FilterMessage("client disconnected without sending a request").Len())
	})

	t.Run("timeout", func(t *testing.T) {
		ts := newTestServer(t)
		ts.cfg.NET.ReadTimeout = config.Duration(10 * time.Millisecond)
		server, peer := net.Pipe()
		defer peer.Close()

		ts.Serve(server)
		require.Equal(t, 1, ts.logs.FilterMessage("client is silent for too long, closing the connection").Len())
	})

	t.Run("too large head", func(t *testing.T) {
		ts := newTestServer(t)
		ts.cfg.Headers.HeadPrealloc = 16
		ts.cfg.Headers.MaxHeadSize = 32

		resp, _ := ts.do(t, get("/poem/the-new-colossus.html"))
		require.Equal(t, 404, resp.StatusCode)
	})
}

func TestIsPeerClosed(t *testing.T) {
	require.True(t, isPeerClosed(&net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}))
	require.True(t, isPeerClosed(&net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}))
	require.True(t, isPeerClosed(io.ErrClosedPipe))
	require.False(t, isPeerClosed(io.EOF))
	require.False(t, isPeerClosed(os.ErrDeadlineExceeded))
}
