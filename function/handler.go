// Package function is the user-supplied part of the gateway: the main
// handler, any named handlers and routes, and the schemas guarding them.
package function

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"function-gateway/internal/apierror"
	"function-gateway/internal/dispatch"
	"function-gateway/internal/faas"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Handle is the main handler, invoked when no h query parameter is given
func Handle(ctx context.Context, event *faas.Event, fctx *faas.Context) (*faas.Result, error) {
	return faas.Text(http.StatusOK, "Hello from OpenFaaS!"), nil
}

// Echo repeats the message of a payload validated by echo_schema
func Echo(ctx context.Context, event *faas.Event, fctx *faas.Context) (*faas.Result, error) {
	payload, ok := event.Body.(map[string]interface{})
	if !ok {
		return nil, apierror.New(http.StatusBadRequest, "Expected a JSON object")
	}

	message, _ := payload["message"].(string)
	repeat := 1
	if n, ok := payload["repeat"].(json.Number); ok {
		if v, err := n.Int64(); err == nil {
			repeat = int(v)
		}
	}

	return &faas.Result{
		StatusCode: http.StatusOK,
		Body: map[string]interface{}{
			"echo":     strings.TrimSpace(strings.Repeat(message+" ", repeat)),
			"hostname": fctx.Hostname,
		},
		HeaderMap: map[string]string{"X-Echo-Repeat": strconv.Itoa(repeat)},
	}, nil
}

// Register adds the named handlers reachable through ?h=<name>
func Register(registry *dispatch.Registry) error {
	return registry.Register("echo", Echo)
}

// Routes returns fixed-path routes served next to the catch-all
func Routes() []faas.Route {
	return []faas.Route{
		{
			Method: http.MethodGet,
			Path:   "/additional_route",
			Handler: func(ctx context.Context, event *faas.Event, fctx *faas.Context) (*faas.Result, error) {
				return faas.Text(http.StatusOK, "Hello from additional_route"), nil
			},
		},
	}
}

// Schemas returns the embedded schema directory
func Schemas() fs.FS {
	sub, err := fs.Sub(schemaFiles, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}
