// Package faas holds the types exchanged between the gateway and a function
// handler: the normalized request Event, the invocation Context and the
// handler's Result.
package faas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// BodyMode controls how a request body that is not valid JSON is exposed
type BodyMode string

const (
	// BodyModeLenient keeps an unparseable body as its raw text
	BodyModeLenient BodyMode = "lenient"
	// BodyModeStrict drops an unparseable body and reports no body
	BodyModeStrict BodyMode = "strict"
)

// ParseBodyMode parses a body mode name
func ParseBodyMode(s string) (BodyMode, error) {
	switch BodyMode(strings.ToLower(strings.TrimSpace(s))) {
	case BodyModeLenient, "":
		return BodyModeLenient, nil
	case BodyModeStrict:
		return BodyModeStrict, nil
	default:
		return "", fmt.Errorf("unknown body mode: %q", s)
	}
}

// Event is the normalized representation of an inbound HTTP request.
// Handlers must treat it as read-only.
type Event struct {
	// Body is the decoded JSON body, the raw text in lenient mode when the
	// body is not JSON, or nil when there is no usable body.
	Body    interface{}
	RawBody []byte
	HasBody bool
	Headers http.Header
	Method  string
	Query   url.Values
	Path    string
}

// NewEvent builds an Event from the request and its already-read body.
// It never fails; see BodyMode for how invalid JSON is handled.
func NewEvent(r *http.Request, raw []byte, mode BodyMode) *Event {
	body, ok := DecodeBody(raw, mode)

	return &Event{
		Body:    body,
		RawBody: raw,
		HasBody: ok,
		Headers: r.Header.Clone(),
		Method:  r.Method,
		Query:   r.URL.Query(),
		Path:    r.URL.Path,
	}
}

// Header returns the first value of the named header, case-insensitively
func (e *Event) Header(name string) string {
	return e.Headers.Get(name)
}

// DecodeBody decodes raw as a single JSON value. Numbers are kept as
// json.Number so they survive a round trip unchanged.
func DecodeBody(raw []byte, mode BodyMode) (interface{}, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body interface{}
	if err := dec.Decode(&body); err == nil {
		var extra interface{}
		if dec.Decode(&extra) == io.EOF {
			return body, true
		}
	}

	if mode == BodyModeStrict {
		return nil, false
	}
	return string(raw), true
}
