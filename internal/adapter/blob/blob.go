// Package blob defines the object storage abstraction used for snapshot payloads.
// Concrete drivers live in the fsstore, s3store and memstore subpackages.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// Driver identifies a blob storage backend.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// PutOptions carries optional object attributes.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	Metadata     map[string]string
	LastModified time.Time
}

// Store is a minimal S3-like object store. Keys are create-only:
// Put on an existing key fails with domain.ErrAlreadyExists.
// Missing keys surface as domain.ErrNotFound.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// NotFound wraps domain.ErrNotFound for a blob key.
func NotFound(key string) error {
	return fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
}

// AlreadyExists wraps domain.ErrAlreadyExists for a blob key.
func AlreadyExists(key string) error {
	return fmt.Errorf("blob %s: %w", key, domain.ErrAlreadyExists)
}

// CheckKey rejects empty, absolute and traversing keys.
func CheckKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("blob key: empty")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("blob key %q: absolute", key)
	case strings.Contains(key, ".."):
		return fmt.Errorf("blob key %q: contains '..'", key)
	}
	return nil
}

// CloneMetadata returns a copy of m, or nil.
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
