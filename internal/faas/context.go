package faas

import "context"

// DefaultHostname is used when no hostname is configured
const DefaultHostname = "localhost"

// Context is the per-invocation execution metadata handed to a handler
type Context struct {
	Hostname     string
	RequestID    string
	Environment  string
	FunctionName string
}

// ContextFactory builds invocation contexts from process-wide settings read
// once at startup.
type ContextFactory struct {
	Hostname     string
	Environment  string
	FunctionName string
}

// New returns the Context for one invocation
func (f ContextFactory) New(requestID string) *Context {
	hostname := f.Hostname
	if hostname == "" {
		hostname = DefaultHostname
	}

	return &Context{
		Hostname:     hostname,
		RequestID:    requestID,
		Environment:  f.Environment,
		FunctionName: f.FunctionName,
	}
}

// Handler is a function implementation. Returning an *apierror.HTTPError
// short-circuits to the error envelope with that status; any other error
// becomes a 500.
type Handler func(ctx context.Context, event *Event, fctx *Context) (*Result, error)

// Route binds a handler to a fixed method and path outside the catch-all
type Route struct {
	Method  string
	Path    string
	Handler Handler
}
