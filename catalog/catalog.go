package catalog

import (
	"context"
	"errors"
	"fmt"
)

/*
The catalog is an association between tree names and the versions of each tree
held in storage. Every stored tree is immutable; writing a tree under an
existing name adds a new version rather than replacing the old one.

Losing the catalog leaves the storage objects readable but anonymous: each
object is a self-contained node stream, but nothing records which name or
version it belongs to.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrListingExists is returned when a (name, version) pair is already taken.
var ErrListingExists = errors.New("listing already exists")

// Listing describes one stored version of a named tree.
type Listing struct {
	Name        string `json:"name"`
	Version     uint64 `json:"version"`
	ObjectID    string `json:"objectId"`
	Count       int    `json:"count"`
	Height      int    `json:"height"`
	Fingerprint uint32 `json:"fingerprint"`
	Timestamp   string `json:"timestamp"`
}

// Catalog is the interface implemented by catalog backends.
type Catalog interface {
	// NextVersion returns a version number greater than any returned before.
	NextVersion(ctx context.Context) (uint64, error)
	Put(ctx context.Context, listing Listing) error
	GetLatest(ctx context.Context, name string) (Listing, error)
	Get(ctx context.Context, name string, version uint64) (Listing, error)
	// History returns every version of a tree, oldest first.
	History(ctx context.Context, name string) ([]Listing, error)
	// Names returns the names of all trees in sorted order.
	Names(ctx context.Context) ([]string, error)
}

// TreeNotFoundError is returned when no listing matches a request.
type TreeNotFoundError struct {
	Name    string
	Version uint64
}

func (e TreeNotFoundError) Error() string {
	if e.Version == 0 {
		return fmt.Sprintf("tree %s not found", e.Name)
	}
	return fmt.Sprintf("tree %s version %d not found", e.Name, e.Version)
}

func (e TreeNotFoundError) Is(target error) bool {
	_, ok := target.(TreeNotFoundError)
	return ok
}
