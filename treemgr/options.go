package treemgr

import "github.com/wkalt/bintree/tree"

type config struct {
	cacheSize  int
	decodeOpts []tree.DecodeOption
	fetchers   int
}

// Option is an option for the tree manager.
type Option func(*config)

// WithCacheSize sets the number of decoded trees held in memory. Trees are
// cached by storage object, so every version of a tree occupies its own slot.
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.cacheSize = n
	}
}

// WithDecodeOpts passes the supplied options to the decoder when trees are
// read from storage.
func WithDecodeOpts(opts ...tree.DecodeOption) Option {
	return func(c *config) {
		c.decodeOpts = append(c.decodeOpts, opts...)
	}
}

// WithFetchers bounds the number of concurrent storage reads made by GetMany.
func WithFetchers(n int) Option {
	return func(c *config) {
		c.fetchers = n
	}
}
