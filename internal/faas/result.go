package faas

import "net/http"

// Header is a single response header
type Header struct {
	Name  string
	Value string
}

// Result is what a handler returns. Zero values mean: status 200, empty body,
// no extra headers. Headers, when non-nil, is used as-is; otherwise HeaderMap
// is converted to pairs.
type Result struct {
	StatusCode int
	Body       interface{}
	Headers    []Header
	HeaderMap  map[string]string
}

// JSON returns a result whose body is serialized as JSON
func JSON(status int, body interface{}) *Result {
	return &Result{StatusCode: status, Body: body}
}

// Text returns a plain string result
func Text(status int, body string) *Result {
	return &Result{StatusCode: status, Body: body}
}

// Status returns the effective status code
func (r *Result) Status() int {
	if r == nil || r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}
