package tree

import (
	"fmt"
	"os"
)

// Save writes the tree rooted at n to the file at path, replacing any
// existing content. If the file cannot be opened nothing is written, and the
// error, matching ErrCannotWrite, is returned and recorded on n.
func Save(n *Node, path string) error {
	if !n.Alive() {
		return ErrNullTree
	}
	n.resetError()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return n.setErr(fmt.Errorf("%w %s: %w", ErrCannotWrite, path, err))
	}
	if _, err := Encode(f, n); err != nil {
		_ = f.Close()
		return n.setErr(fmt.Errorf("%w %s: %w", ErrCannotWrite, path, err))
	}
	if err := f.Close(); err != nil {
		return n.setErr(fmt.Errorf("%w %s: %w", ErrCannotWrite, path, err))
	}
	return nil
}

// Load reads the tree stored in the file at path. On failure Load returns a
// placeholder single-node tree holding zero, with the error recorded on it,
// along with the error itself. An unopenable file yields an error matching
// ErrCannotRead; a malformed one an error matching ErrCorruptStream.
func Load(path string, opts ...DecodeOption) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return failed(fmt.Errorf("%w %s: %w", ErrCannotRead, path, err))
	}
	defer f.Close()
	root, err := Decode(f, opts...)
	if err != nil {
		return failed(fmt.Errorf("failed to load %s: %w", path, err))
	}
	return root, nil
}

func failed(err error) (*Node, error) {
	placeholder := New(0)
	return placeholder, placeholder.setErr(err)
}
