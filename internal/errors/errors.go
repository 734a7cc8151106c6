package errors

import "fmt"

type Fields map[string]interface{}

// APIError is an error with an attached application code, user-facing message
// and expected HTTP status. Route handlers return these and the rest layer
// formats them into a standard error response.
type APIError interface {
	error
	Code() int
	Message() string
	ExpectedHTTPStatus() int
	SetDetail(format string, args ...interface{}) APIError
	SetFields(f Fields) APIError
	GetFields() Fields
}

type apiError struct {
	code       int
	message    string
	httpStatus int
	fields     Fields
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s [%d]", e.message, e.code)
}

func (e *apiError) Code() int {
	return e.code
}

func (e *apiError) Message() string {
	return e.message
}

func (e *apiError) ExpectedHTTPStatus() int {
	return e.httpStatus
}

func (e *apiError) SetDetail(format string, args ...interface{}) APIError {
	e.message = fmt.Sprintf("%s: %s", e.message, fmt.Sprintf(format, args...))

	return e
}

func (e *apiError) SetFields(f Fields) APIError {
	if e.fields == nil {
		e.fields = Fields{}
	}

	for k, v := range f {
		e.fields[k] = v
	}

	return e
}

func (e *apiError) GetFields() Fields {
	return e.fields
}

func define(code int, message string, httpStatus int) func() APIError {
	return func() APIError {
		return &apiError{
			code:       code,
			message:    message,
			httpStatus: httpStatus,
		}
	}
}

// From wraps an arbitrary error into an APIError. Errors that already carry a
// code pass through unchanged.
func From(err error) APIError {
	switch e := err.(type) {
	case APIError:
		return e
	default:
		return ErrInternalServerError().SetFields(Fields{"cause": err.Error()})
	}
}

var (
	// 40x client errors
	ErrUnauthorized        = define(10401, "Authentication Required", 401)
	ErrBadSignature        = define(10403, "Signature Verification Failed", 401)
	ErrInsufficientScope   = define(10413, "Insufficient Privilege", 403)
	ErrUnknownRoute        = define(10404, "Unknown Route", 404)
	ErrInvalidRequest      = define(10470, "Invalid Request", 400)
	ErrMissingHeader       = define(10471, "Missing Required Header", 400)
	ErrUnknownUser         = define(10472, "Unknown User", 404)
	ErrRateLimited         = define(10429, "Rate Limited", 429)
	ErrInternalServerError = define(10500, "Internal Server Error", 500)
)
