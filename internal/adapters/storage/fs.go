package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

const defaultMaxResults = 1000

// FSSchemaSource serves schema documents from an fs.FS: a directory on disk
// or the function package's embedded files.
type FSSchemaSource struct {
	fsys fs.FS
	root string
}

// NewFSSchemaSource creates a source rooted at root inside fsys
func NewFSSchemaSource(fsys fs.FS, root string) (*FSSchemaSource, error) {
	if root == "" {
		root = "."
	}
	root = path.Clean(root)

	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, NewStorageError("Open", root, err, transient(err))
	}
	if !info.IsDir() {
		return nil, NewStorageError("Open", root, ErrInvalidKey, false)
	}

	return &FSSchemaSource{fsys: fsys, root: root}, nil
}

// NewLocalSchemaSource creates a source over a directory on disk
func NewLocalSchemaSource(basePath string) (*FSSchemaSource, error) {
	if basePath == "" {
		basePath = "."
	}
	return NewFSSchemaSource(os.DirFS(basePath), ".")
}

// Retrieve implements SchemaSource.Retrieve
func (s *FSSchemaSource) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	data, err := fs.ReadFile(s.fsys, path.Join(s.root, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound, false)
		}
		return nil, NewStorageError("Retrieve", key, err, transient(err))
	}
	return data, nil
}

// List implements SchemaSource.List
func (s *FSSchemaSource) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var files []FileMetadata
	truncated := false

	err := fs.WalkDir(s.fsys, s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		key := p
		if s.root != "." {
			key = strings.TrimPrefix(p, s.root+"/")
		}
		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			return nil
		}
		if len(files) >= maxResults {
			truncated = true
			return fs.SkipAll
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileMetadata{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", "", err, transient(err))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })

	return &ListResult{Files: files, IsTruncated: truncated}, nil
}

// Close implements SchemaSource.Close
func (s *FSSchemaSource) Close() error {
	return nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || !fs.ValidPath(key) {
		return ErrInvalidKey
	}
	return nil
}
