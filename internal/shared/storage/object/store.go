package object

import (
	"context"
	"errors"
	"io"
)

// Sentinel errors shared by all backends. Callers distinguish a missing key
// from a backend that could not answer at all.
var (
	ErrNotFound    = errors.New("object not found")
	ErrUnavailable = errors.New("object store unavailable")
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Keys are backend-agnostic relative paths; each backend maps them onto its
// own addressing scheme.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
