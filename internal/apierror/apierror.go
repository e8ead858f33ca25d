// Package apierror defines the JSON error envelope returned for every failed
// function invocation and the HTTP error type that carries it through the
// gin error chain.
package apierror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Type tags the origin of an error envelope
type Type string

const (
	TypeValidation      Type = "VALIDATION_ERROR"
	TypeHandlerNotFound Type = "HANDLER_NOT_FOUND"
	TypeUnknown         Type = "UNKNOWN"
)

// FallbackDetail is used when an error's description is not a plain string
const FallbackDetail = "Framework Internal"

// Envelope is the normalized JSON error response
type Envelope struct {
	Type   Type   `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// HTTPError is an HTTP-level error raised by the dispatcher, a middleware or a
// handler. When Envelope is set the error already carries its JSON response
// and the normalizer writes it unchanged.
type HTTPError struct {
	Code        int
	Name        string
	Description interface{}
	Envelope    *Envelope
	Err         error
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status(), e.Title())
	if desc, ok := e.Description.(string); ok && desc != "" {
		msg += ": " + desc
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Cause lets pkg/errors walk through to the underlying error
func (e *HTTPError) Cause() error {
	return e.Err
}

// Status returns the HTTP status code, defaulting to 500 when unset
func (e *HTTPError) Status() int {
	if e.Envelope != nil && e.Envelope.Status != 0 {
		return e.Envelope.Status
	}
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Title returns the short name of the error
func (e *HTTPError) Title() string {
	if e.Name != "" {
		return e.Name
	}
	if text := http.StatusText(e.Status()); text != "" {
		return text
	}
	return "Unknown Error"
}

// ToEnvelope returns the prebuilt envelope, or an UNKNOWN envelope derived
// from the error's status, name and description.
func (e *HTTPError) ToEnvelope() *Envelope {
	if e.Envelope != nil {
		env := *e.Envelope
		return &env
	}

	detail := FallbackDetail
	if desc, ok := e.Description.(string); ok {
		detail = desc
	}

	return &Envelope{
		Type:   TypeUnknown,
		Title:  e.Title(),
		Status: e.Status(),
		Detail: detail,
	}
}

// New creates an HTTP error with the given status and description
func New(code int, description interface{}) *HTTPError {
	return &HTTPError{
		Code:        code,
		Description: description,
	}
}

// FromStatus creates an HTTP error carrying the standard description for code
func FromStatus(code int) *HTTPError {
	return New(code, DefaultDescription(code))
}

// Wrap turns an arbitrary error into a generic 500
func Wrap(err error) *HTTPError {
	return &HTTPError{
		Code:        http.StatusInternalServerError,
		Description: DefaultDescription(http.StatusInternalServerError),
		Err:         err,
	}
}

// From returns err as an *HTTPError, wrapping it into a 500 when it is not one
func From(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return Wrap(err)
}

// Validation creates the abort raised when a payload fails its schema
func Validation(title, detail string, cause error) *HTTPError {
	return &HTTPError{
		Code: http.StatusBadGateway,
		Err:  cause,
		Envelope: &Envelope{
			Type:   TypeValidation,
			Title:  title,
			Status: http.StatusBadGateway,
			Detail: detail,
		},
	}
}

// HandlerNotFound creates the abort raised for an unknown handler selector
func HandlerNotFound(selector string) *HTTPError {
	return &HTTPError{
		Code: http.StatusNotFound,
		Envelope: &Envelope{
			Type:   TypeHandlerNotFound,
			Title:  "Handler not found",
			Status: http.StatusNotFound,
			Detail: selector,
		},
	}
}

var descriptions = map[int]string{
	http.StatusBadRequest:            "The browser (or proxy) sent a request that this server could not understand.",
	http.StatusUnauthorized:          "The server could not verify that you are authorized to access the URL requested.",
	http.StatusForbidden:             "You don't have the permission to access the requested resource.",
	http.StatusNotFound:              "The requested URL was not found on the server. If you entered the URL manually please check your spelling and try again.",
	http.StatusMethodNotAllowed:      "The method is not allowed for the requested URL.",
	http.StatusRequestEntityTooLarge: "The data value transmitted exceeds the capacity limit.",
	http.StatusTooManyRequests:       "This user has exceeded an allotted request count. Try again later.",
	http.StatusInternalServerError:   "The server encountered an internal error and was unable to complete your request.",
	http.StatusBadGateway:            "The proxy server received an invalid response from an upstream server.",
	http.StatusServiceUnavailable:    "The server is temporarily unable to service your request.",
}

// DefaultDescription returns the standard description for an HTTP status
func DefaultDescription(code int) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return http.StatusText(code)
}
