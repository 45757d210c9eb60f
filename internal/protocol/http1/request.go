package http1

import (
	"bytes"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"

	"github.com/indigo-web/sonnet/http/status"
)

// Request is what is known about a request after its head was read. Strings point into
// the head buffer, so a Request must not outlive the connection it came from.
type Request struct {
	// Head is the raw head with every line terminated by a single \n.
	Head   string
	Method string
	Path   string
	Proto  string
	// Host and UserAgent are gathered for logging only.
	Host      string
	UserAgent string
}

// ParseRequest extracts the resource path out of the request line. The line is split by
// spaces and the second token is the path. Less than two tokens is a malformed request.
// Headers aren't validated, only Host and User-Agent are picked up if present.
func ParseRequest(head []byte) (Request, error) {
	request := Request{Head: uf.B2S(head)}

	requestLine, headers, _ := bytes.Cut(head, []byte{'\n'})
	tokens := strings.Split(uf.B2S(requestLine), " ")
	if len(tokens) < 2 || len(tokens[1]) == 0 {
		return request, status.ErrBadRequestLine
	}

	request.Method, request.Path = tokens[0], tokens[1]
	if len(tokens) > 2 {
		request.Proto = tokens[2]
	}

	for len(headers) > 0 {
		var line []byte
		line, headers, _ = bytes.Cut(headers, []byte{'\n'})
		key, value, found := bytes.Cut(line, []byte{':'})
		if !found {
			continue
		}

		switch k := uf.B2S(bytes.TrimSpace(key)); {
		case strcomp.EqualFold(k, "host"):
			request.Host = uf.B2S(bytes.TrimSpace(value))
		case strcomp.EqualFold(k, "user-agent"):
			request.UserAgent = uf.B2S(bytes.TrimSpace(value))
		}
	}

	return request, nil
}
