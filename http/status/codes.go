package status

import "strconv"

type (
	Code   uint16
	Status string
)

// HTTP status codes the server is able to respond with. See net/http/status.go for the
// complete registry.
const (
	OK Code = 200 // RFC 9110, 15.3.1

	Found Code = 302 // RFC 9110, 15.4.3

	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	NotFound                    Code = 404 // RFC 9110, 15.5.5
	RequestTimeout              Code = 408 // RFC 9110, 15.5.9
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5

	InternalServerError Code = 500 // RFC 9110, 15.6.1

	// CloseConnection isn't a real status code. It marks errors after which the connection
	// must be closed without writing anything back.
	CloseConnection Code = 0
)

// KnownCodes lists every code Text has a reason phrase for.
var KnownCodes = []Code{
	OK, Found, BadRequest, NotFound, RequestTimeout, RequestHeaderFieldsTooLarge,
	InternalServerError,
}

var stringCodes = func() map[Code]string {
	m := make(map[Code]string, len(KnownCodes))
	for _, code := range KnownCodes {
		m[code] = strconv.Itoa(int(code))
	}

	return m
}()

// StringCode returns the decimal representation of the code. Known codes are served from
// a precomputed table.
func StringCode(code Code) string {
	if s, ok := stringCodes[code]; ok {
		return s
	}

	return strconv.Itoa(int(code))
}

// Text returns a text for the HTTP status code. It returns "Unknown Status Code"
// if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Found:
		return "Found"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case RequestTimeout:
		return "Request Timeout"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	default:
		return "Unknown Status Code"
	}
}
