package storage

import (
	"context"
	"time"
)

// FileMetadata describes one stored schema document
type FileMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListOptions filters a listing
type ListOptions struct {
	Prefix     string `json:"prefix,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// ListResult is the result of a list operation
type ListResult struct {
	Files       []FileMetadata `json:"files"`
	IsTruncated bool           `json:"is_truncated"`
}

// SchemaSource is a read-only store of JSON Schema documents. Keys are
// slash-separated paths relative to the source root.
type SchemaSource interface {
	// Retrieve returns the document stored under key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// List returns the documents matching opts, sorted by key
	List(ctx context.Context, opts *ListOptions) (*ListResult, error)

	Close() error
}

// SourceConfig selects and configures a schema source
type SourceConfig struct {
	Type     string `json:"type" yaml:"type"`           // "local" or "embedded"
	BasePath string `json:"base_path" yaml:"base_path"` // directory for local sources
}
