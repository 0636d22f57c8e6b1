package catalog

import (
	"context"
	"slices"
	"sync"
	"time"
)

/*
memcatalog is an in-memory implementation of the catalog interface. It is
suitable for tests and for short-lived sessions.
*/

////////////////////////////////////////////////////////////////////////////////

type memcatalog struct {
	listings []Listing
	version  uint64
	mtx      *sync.Mutex
}

// NewMemCatalog returns an empty in-memory catalog.
func NewMemCatalog() Catalog {
	return &memcatalog{
		listings: []Listing{},
		mtx:      &sync.Mutex{},
	}
}

func (c *memcatalog) NextVersion(_ context.Context) (uint64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.version++
	return c.version, nil
}

func (c *memcatalog) Put(_ context.Context, listing Listing) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for _, existing := range c.listings {
		if existing.Name == listing.Name && existing.Version == listing.Version {
			return ErrListingExists
		}
	}
	if listing.Timestamp == "" {
		listing.Timestamp = time.Now().UTC().Format(time.DateTime)
	}
	c.listings = append(c.listings, listing)
	return nil
}

func (c *memcatalog) GetLatest(_ context.Context, name string) (Listing, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	var latest *Listing
	for i := range c.listings {
		listing := &c.listings[i]
		if listing.Name == name && (latest == nil || listing.Version > latest.Version) {
			latest = listing
		}
	}
	if latest == nil {
		return Listing{}, TreeNotFoundError{Name: name}
	}
	return *latest, nil
}

func (c *memcatalog) Get(_ context.Context, name string, version uint64) (Listing, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	for _, listing := range c.listings {
		if listing.Name == name && listing.Version == version {
			return listing, nil
		}
	}
	return Listing{}, TreeNotFoundError{Name: name, Version: version}
}

func (c *memcatalog) History(_ context.Context, name string) ([]Listing, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	history := []Listing{}
	for _, listing := range c.listings {
		if listing.Name == name {
			history = append(history, listing)
		}
	}
	if len(history) == 0 {
		return nil, TreeNotFoundError{Name: name}
	}
	slices.SortFunc(history, func(a, b Listing) int {
		return cmpVersion(a.Version, b.Version)
	})
	return history, nil
}

func (c *memcatalog) Names(_ context.Context) ([]string, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	names := []string{}
	for _, listing := range c.listings {
		if !slices.Contains(names, listing.Name) {
			names = append(names, listing.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func cmpVersion(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
