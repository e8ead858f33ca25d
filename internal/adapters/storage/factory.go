package storage

import (
	"fmt"
	"io/fs"
	"strings"
)

// SourceType names a schema source implementation
type SourceType string

const (
	SourceTypeLocal    SourceType = "local"
	SourceTypeEmbedded SourceType = "embedded"
)

// Factory creates SchemaSource instances based on configuration
type Factory struct {
	retryConfig *RetryConfig
	embedded    fs.FS
}

// NewFactory creates a new source factory. embedded is the file system used
// for the "embedded" source type and may be nil.
func NewFactory(retryConfig *RetryConfig, embedded fs.FS) *Factory {
	return &Factory{
		retryConfig: retryConfig,
		embedded:    embedded,
	}
}

// Create creates a SchemaSource for config, wrapped with retries when the
// factory has a retry policy.
func (f *Factory) Create(config *SourceConfig) (SchemaSource, error) {
	if config == nil {
		return nil, fmt.Errorf("schema source config is required")
	}

	var source SchemaSource
	var err error

	switch SourceType(strings.ToLower(config.Type)) {
	case SourceTypeLocal:
		source, err = NewLocalSchemaSource(config.BasePath)
	case SourceTypeEmbedded:
		if f.embedded == nil {
			return nil, ErrMissingEmbeddedFS
		}
		root := config.BasePath
		if root == "" {
			root = "."
		}
		source, err = NewFSSchemaSource(f.embedded, root)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s schema source: %w", config.Type, err)
	}

	if f.retryConfig != nil {
		source = NewRetryingSource(source, f.retryConfig)
	}

	return source, nil
}
