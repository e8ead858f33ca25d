// Package dispatch routes an invocation to one of the function's named
// handlers, selected by the "h" query parameter, after validating the body
// against that handler's schema.
package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
	"function-gateway/internal/faas"
)

const (
	// SelectorParam is the query parameter naming the handler to invoke
	SelectorParam = "h"
	// MainSelector is the selector used when SelectorParam is absent
	MainSelector = "main"
	// MainSchema is the schema validated before the main handler
	MainSchema = "payload_schema"
	// SchemaSuffix is appended to a selector to name its schema
	SchemaSuffix = "_schema"
)

// Validator validates a body against a named schema, applying the schema's
// defaults to the body first. Unknown names must validate successfully.
type Validator interface {
	Validate(body interface{}, name string) error
}

// Entry is a registered handler and the schema guarding it
type Entry struct {
	Name    string
	Schema  string
	Handler faas.Handler
}

// Registry maps selectors to handlers. It is populated at startup and only
// read afterwards.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates a registry whose "main" entry is main
func NewRegistry(main faas.Handler) *Registry {
	return &Registry{
		entries: map[string]Entry{
			MainSelector: {Name: MainSelector, Schema: MainSchema, Handler: main},
		},
	}
}

// Register adds a named handler guarded by the "<name>_schema" schema
func (r *Registry) Register(name string, handler faas.Handler) error {
	return r.RegisterWithSchema(name, name+SchemaSuffix, handler)
}

// RegisterWithSchema adds a named handler guarded by an explicit schema name
func (r *Registry) RegisterWithSchema(name, schema string, handler faas.Handler) error {
	if name == "" {
		return fmt.Errorf("handler name is required")
	}
	if handler == nil {
		return fmt.Errorf("handler %q is nil", name)
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("handler %q is already registered", name)
	}

	r.entries[name] = Entry{Name: name, Schema: schema, Handler: handler}
	return nil
}

// Lookup returns the entry for selector
func (r *Registry) Lookup(selector string) (Entry, bool) {
	entry, ok := r.entries[selector]
	if !ok || entry.Handler == nil {
		return Entry{}, false
	}
	return entry, true
}

// Names lists registered selectors in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name, entry := range r.entries {
		if entry.Handler != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Dispatcher selects, validates and invokes handlers
type Dispatcher struct {
	registry  *Registry
	validator Validator
}

// New creates a dispatcher. A nil validator leaves every body unconstrained.
func New(registry *Registry, validator Validator) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		validator: validator,
	}
}

// Selector returns the handler selector of event. An absent parameter
// selects "main"; a present but empty one selects "".
func Selector(event *faas.Event) string {
	if event.Query == nil || !event.Query.Has(SelectorParam) {
		return MainSelector
	}
	return event.Query.Get(SelectorParam)
}

// Dispatch invokes the handler selected by event. Failures are returned as
// *apierror.HTTPError: HANDLER_NOT_FOUND, VALIDATION_ERROR, the handler's own
// HTTP error, or a generic 500 wrapping any other handler error.
func (d *Dispatcher) Dispatch(ctx context.Context, event *faas.Event, fctx *faas.Context) (*faas.Result, error) {
	selector := Selector(event)

	entry, ok := d.registry.Lookup(selector)
	if !ok {
		return nil, apierror.HandlerNotFound(selector)
	}

	if d.validator != nil {
		if err := d.validator.Validate(event.Body, entry.Schema); err != nil {
			logrus.WithFields(logrus.Fields{
				"handler":    entry.Name,
				"schema":     entry.Schema,
				"request_id": fctx.RequestID,
				"error":      err.Error(),
			}).Warn("Payload validation failed")
			return nil, apierror.From(err)
		}
	}

	result, err := entry.Handler(ctx, event, fctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	return result, nil
}
