package storage

import (
	"context"
	"errors"
	"io"
)

/*
The storage provider interface describes the minimal set of operations needed
to keep encoded trees in an object store. Objects are written whole and read
whole; a tree is never updated in place.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when an object is not found.
var ErrObjectNotFound = errors.New("object not found")

// Provider is the interface for a storage provider.
type Provider interface {
	Put(ctx context.Context, id string, r io.Reader) error
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
	String() string
}
