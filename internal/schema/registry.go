// Package schema keeps the named JSON Schema documents a function declares and
// validates request bodies against them.
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"function-gateway/internal/adapters/storage"
	"function-gateway/internal/apierror"
)

const (
	// Extension is the file extension of schema documents in a source
	Extension = ".json"

	resourcePrefix = "mem://schemas/"
)

// Schema is a compiled, named JSON Schema document
type Schema struct {
	Name string
	// ID is the schema's declared $id (or draft-4 id), if any
	ID string

	doc      interface{}
	compiled *jsonschema.Schema
}

// Registry is the read-only set of schemas known to the gateway. It is built
// once at startup and safe for concurrent use afterwards.
type Registry struct {
	draft   *jsonschema.Draft
	schemas map[string]*Schema
}

// NewRegistry creates an empty registry validating with the given draft
// (4, 6, 7, 2019 or 2020).
func NewRegistry(draft int) (*Registry, error) {
	d, err := ParseDraft(draft)
	if err != nil {
		return nil, err
	}
	return &Registry{
		draft:   d,
		schemas: make(map[string]*Schema),
	}, nil
}

// ParseDraft maps a draft number onto the validator's draft
func ParseDraft(draft int) (*jsonschema.Draft, error) {
	switch draft {
	case 4:
		return jsonschema.Draft4, nil
	case 6:
		return jsonschema.Draft6, nil
	case 7, 0:
		return jsonschema.Draft7, nil
	case 2019:
		return jsonschema.Draft2019, nil
	case 2020:
		return jsonschema.Draft2020, nil
	default:
		return nil, fmt.Errorf("unsupported JSON Schema draft: %d", draft)
	}
}

// Add compiles data and registers it under name, replacing any previous
// schema with that name.
func (r *Registry) Add(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("schema name is required")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrapf(err, "schema %s is not valid JSON", name)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = r.draft
	compiler.AssertFormat = true

	url := resourcePrefix + name + Extension
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to add schema %s", name)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return errors.Wrapf(err, "failed to compile schema %s", name)
	}

	r.schemas[name] = &Schema{
		Name:     name,
		ID:       declaredID(data),
		doc:      doc,
		compiled: compiled,
	}
	return nil
}

func declaredID(data []byte) string {
	for _, result := range gjson.GetManyBytes(data, "$id", "id") {
		if result.Type == gjson.String && result.String() != "" {
			return result.String()
		}
	}
	return ""
}

// Get returns the schema registered under name
func (r *Registry) Get(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names lists registered schema names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate applies the named schema's defaults to body and validates the
// result. An unknown name means the body is unconstrained.
func (r *Registry) Validate(body interface{}, name string) error {
	s, ok := r.schemas[name]
	if !ok {
		return nil
	}
	return s.Validate(body)
}

// Validate applies defaults to body in place, then validates it. Failures are
// returned as a VALIDATION_ERROR abort.
func (s *Schema) Validate(body interface{}) error {
	ApplyDefaults(s.doc, body)

	err := s.compiled.Validate(body)
	if err == nil {
		return nil
	}

	title := "Payload does not conform to schema"
	if s.ID != "" {
		title += " " + s.ID
	}
	return apierror.Validation(title, firstFailure(err), err)
}

// firstFailure returns the message of the first leaf failure
func firstFailure(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Message
}

// Load reads every *.json document from src and registers it under its file
// name without the extension.
func Load(ctx context.Context, src storage.SchemaSource, draft int) (*Registry, error) {
	registry, err := NewRegistry(draft)
	if err != nil {
		return nil, err
	}

	listing, err := src.List(ctx, &storage.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list schemas")
	}

	for _, file := range listing.Files {
		if !strings.HasSuffix(file.Key, Extension) {
			continue
		}

		data, err := src.Retrieve(ctx, file.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read schema %s", file.Key)
		}

		name := strings.TrimSuffix(path.Base(file.Key), Extension)
		if err := registry.Add(name, data); err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"schema": name,
			"key":    file.Key,
		}).Debug("Schema registered")
	}

	return registry, nil
}
