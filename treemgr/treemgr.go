package treemgr

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wkalt/bintree/catalog"
	"github.com/wkalt/bintree/storage"
	"github.com/wkalt/bintree/tree"
	"github.com/wkalt/bintree/util"
	"github.com/wkalt/bintree/util/log"
	"golang.org/x/sync/errgroup"
)

/*
The tree manager stores named trees. Each Put encodes the tree as a node
stream, writes it to object storage under a fresh object ID, and records a new
version in the catalog. Reads resolve a name through the catalog, fetch and
decode the object, and verify it against the fingerprint recorded at write
time.

Decoded trees are cached by object ID. Stored objects are never modified, so
cache entries do not go stale; callers always receive clones, so mutating a
returned tree does not affect the cache.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrFingerprintMismatch is returned when a stored object does not match the
// fingerprint recorded in its listing.
var ErrFingerprintMismatch = errors.New("fingerprint mismatch")

// TreeManager is the main interface to the treemgr package.
type TreeManager struct {
	store      storage.Provider
	catalog    catalog.Catalog
	cache      *util.LRU[string, *tree.Node]
	decodeOpts []tree.DecodeOption
	fetchers   int
}

// NewTreeManager returns a new TreeManager.
func NewTreeManager(store storage.Provider, cat catalog.Catalog, opts ...Option) *TreeManager {
	conf := config{
		cacheSize: 64,
		fetchers:  8,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	return &TreeManager{
		store:      store,
		catalog:    cat,
		cache:      util.NewLRU[string, *tree.Node](conf.cacheSize),
		decodeOpts: conf.decodeOpts,
		fetchers:   max(conf.fetchers, 1),
	}
}

// Put stores the tree rooted at root as a new version of the named tree.
func (tm *TreeManager) Put(ctx context.Context, name string, root *tree.Node) (catalog.Listing, error) {
	if name == "" {
		return catalog.Listing{}, errors.New("tree name must not be empty")
	}
	if !root.Alive() {
		return catalog.Listing{}, tree.ErrNullTree
	}
	buf := &bytes.Buffer{}
	if _, err := tree.Encode(buf, root); err != nil {
		return catalog.Listing{}, fmt.Errorf("failed to encode tree: %w", err)
	}
	fingerprint, err := tree.Fingerprint(root)
	if err != nil {
		return catalog.Listing{}, fmt.Errorf("failed to fingerprint tree: %w", err)
	}
	size := buf.Len()
	objectID := uuid.New().String()
	ctx = log.AddTags(ctx, "tree", name, "object", objectID)
	if err := tm.store.Put(ctx, objectID, buf); err != nil {
		return catalog.Listing{}, fmt.Errorf("failed to store tree: %w", err)
	}
	version, err := tm.catalog.NextVersion(ctx)
	if err != nil {
		return catalog.Listing{}, fmt.Errorf("failed to allocate version: %w", err)
	}
	listing := catalog.Listing{
		Name:        name,
		Version:     version,
		ObjectID:    objectID,
		Count:       root.Count(),
		Height:      root.Height(),
		Fingerprint: fingerprint,
	}
	if err := tm.catalog.Put(ctx, listing); err != nil {
		if derr := tm.store.Delete(ctx, objectID); derr != nil {
			log.Warnw(ctx, "failed to remove orphaned object", "error", derr)
		}
		return catalog.Listing{}, fmt.Errorf("failed to record tree: %w", err)
	}
	tm.cache.Put(objectID, root.Clone())
	log.Infow(ctx, "stored tree",
		"version", version,
		"count", listing.Count,
		"size", util.HumanBytes(uint64(size)),
	)
	return listing, nil
}

// Get returns the latest version of the named tree.
func (tm *TreeManager) Get(ctx context.Context, name string) (*tree.Node, catalog.Listing, error) {
	listing, err := tm.catalog.GetLatest(ctx, name)
	if err != nil {
		return nil, catalog.Listing{}, fmt.Errorf("failed to resolve tree: %w", err)
	}
	root, err := tm.fetch(ctx, listing)
	if err != nil {
		return nil, catalog.Listing{}, err
	}
	return root, listing, nil
}

// GetVersion returns a specific version of the named tree.
func (tm *TreeManager) GetVersion(ctx context.Context, name string, version uint64) (*tree.Node, error) {
	listing, err := tm.catalog.Get(ctx, name, version)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tree: %w", err)
	}
	return tm.fetch(ctx, listing)
}

// GetMany returns the latest version of each named tree, in the order given.
// Trees are fetched concurrently; the first failure cancels the rest.
func (tm *TreeManager) GetMany(ctx context.Context, names []string) ([]*tree.Node, error) {
	roots := make([]*tree.Node, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(tm.fetchers)
	for i, name := range names {
		g.Go(func() error {
			root, _, err := tm.Get(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", name, err)
			}
			roots[i] = root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, root := range roots {
			root.Destroy()
		}
		return nil, err
	}
	return roots, nil
}

// History returns every stored version of the named tree, oldest first.
func (tm *TreeManager) History(ctx context.Context, name string) ([]catalog.Listing, error) {
	history, err := tm.catalog.History(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return history, nil
}

// Names returns the names of all stored trees.
func (tm *TreeManager) Names(ctx context.Context) ([]string, error) {
	names, err := tm.catalog.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	return names, nil
}

func (tm *TreeManager) fetch(ctx context.Context, listing catalog.Listing) (*tree.Node, error) {
	if cached, ok := tm.cache.Get(listing.ObjectID); ok {
		return cached.Clone(), nil
	}
	ctx = log.AddTags(ctx, "tree", listing.Name, "version", listing.Version)
	rc, err := tm.store.Get(ctx, listing.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", listing.ObjectID, err)
	}
	defer rc.Close()
	root, err := tree.Decode(rc, tm.decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode object %s: %w", listing.ObjectID, err)
	}
	fingerprint, err := tree.Fingerprint(root)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint object %s: %w", listing.ObjectID, err)
	}
	if fingerprint != listing.Fingerprint {
		root.Destroy()
		return nil, fmt.Errorf("%w: object %s has %08x, expected %08x",
			ErrFingerprintMismatch, listing.ObjectID, fingerprint, listing.Fingerprint)
	}
	log.Debugw(ctx, "loaded tree from storage", "count", listing.Count)
	tm.cache.Put(listing.ObjectID, root)
	return root.Clone(), nil
}
