package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrShutdown        = errors.New("shutdown")
	ErrCloseConnection = NewError(CloseConnection, "actively closing the connection")

	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrBadRequestLine       = NewError(BadRequest, "malformed request line")
	ErrNotFound             = NewError(NotFound, "not found")
	ErrRequestTimeout       = NewError(RequestTimeout, "request timeout")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
)

// CodeOf extracts the status code carried by err. Errors that aren't HTTPError are
// reported as InternalServerError.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}
