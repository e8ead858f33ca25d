// Package response converts a handler Result into the status, body and
// headers written to the client.
package response

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"function-gateway/internal/faas"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Formatted is a fully rendered handler response
type Formatted struct {
	Body        []byte
	StatusCode  int
	Headers     []faas.Header
	ContentType string
}

// Format renders result. A nil result is an empty 200. The only error comes
// from JSON serialization of a structured body.
func Format(result *faas.Result) (*Formatted, error) {
	if result == nil {
		return &Formatted{Body: []byte{}, StatusCode: 200}, nil
	}

	body, contentType, err := formatBody(result.Body)
	if err != nil {
		return nil, err
	}

	return &Formatted{
		Body:        body,
		StatusCode:  result.Status(),
		Headers:     formatHeaders(result),
		ContentType: contentType,
	}, nil
}

func formatBody(body interface{}) ([]byte, string, error) {
	switch v := body.(type) {
	case nil:
		return []byte{}, "", nil
	case string:
		return []byte(v), ContentTypeText, nil
	case json.RawMessage:
		return []byte(v), ContentTypeJSON, nil
	case []byte:
		return v, ContentTypeText, nil
	case json.Number:
		return []byte(v.String()), ContentTypeText, nil
	case fmt.Stringer:
		if !isStructured(v) {
			return []byte(v.String()), ContentTypeText, nil
		}
	}

	if !isStructured(body) {
		return []byte(fmt.Sprint(body)), ContentTypeText, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to serialize response body")
	}
	return data, ContentTypeJSON, nil
}

func isStructured(v interface{}) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// formatHeaders passes an explicit sequence through unchanged and converts a
// map into pairs sorted by name, so the same result always renders the same.
func formatHeaders(result *faas.Result) []faas.Header {
	if result.Headers != nil {
		return result.Headers
	}
	if len(result.HeaderMap) == 0 {
		return nil
	}

	names := make([]string, 0, len(result.HeaderMap))
	for name := range result.HeaderMap {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]faas.Header, 0, len(names))
	for _, name := range names {
		headers = append(headers, faas.Header{Name: name, Value: result.HeaderMap[name]})
	}
	return headers
}

// Write sends f on the gin response. Headers from the result win over the
// inferred content type.
func Write(c *gin.Context, f *Formatted) {
	h := c.Writer.Header()
	for _, header := range f.Headers {
		h.Add(header.Name, header.Value)
	}
	if h.Get("Content-Type") == "" && f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	}

	c.Status(f.StatusCode)
	c.Writer.WriteHeaderNow()
	if len(f.Body) > 0 {
		_, _ = c.Writer.Write(f.Body)
	}
}
