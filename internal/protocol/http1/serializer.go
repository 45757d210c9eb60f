package http1

import (
	"strconv"

	"github.com/indigo-web/sonnet/http/mime"
	"github.com/indigo-web/sonnet/http/status"
	"github.com/indigo-web/sonnet/transport"
)

const protocol = "HTTP/1.1 "

// Serializer renders responses into its buffer and writes each of them in a single
// call to the client.
type Serializer struct {
	client transport.Client
	buff   []byte
}

func NewSerializer(client transport.Client, buff []byte) *Serializer {
	return &Serializer{
		client: client,
		buff:   buff[:0],
	}
}

// Respond writes a response with the status code, content type and body. The body is
// always sized, so the Content-Length is just its length.
func (s *Serializer) Respond(code status.Code, contentType mime.ContentType, body []byte) (n int, err error) {
	s.appendStatus(code)
	s.appendKnownHeader("Content-Type: ", contentType.Header())
	s.appendKnownHeader("Content-Length: ", strconv.Itoa(len(body)))
	s.crlf()
	s.buff = append(s.buff, body...)

	return s.flush()
}

// Redirect writes a bodiless 302 Found response pointing to the location.
func (s *Serializer) Redirect(location string) (n int, err error) {
	s.appendStatus(status.Found)
	s.appendKnownHeader("Location: ", location)
	s.crlf()

	return s.flush()
}

func (s *Serializer) appendStatus(code status.Code) {
	s.buff = append(s.buff, protocol...)
	s.buff = append(s.buff, status.StringCode(code)...)
	s.buff = append(s.buff, ' ')
	s.buff = append(s.buff, status.Text(code)...)
	s.crlf()
}

func (s *Serializer) appendKnownHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, '\r', '\n')
}

func (s *Serializer) flush() (n int, err error) {
	n, err = s.client.Write(s.buff)
	s.buff = s.buff[:0]

	return n, err
}
