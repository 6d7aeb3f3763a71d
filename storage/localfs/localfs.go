// Package localfs stores snapshots as files in a directory tree keyed by CID.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/cidutil"
	"xdao.co/mycelium/storage"
)

// CAS is a local filesystem-backed content-addressable store.
//
// Objects are written to a temporary file and linked into place, so readers
// never observe a partial object. Existing objects are never overwritten.
type CAS struct {
	root string
}

var _ storage.CAS = (*CAS)(nil)

// New constructs a filesystem CAS rooted at root. The directory will be created if needed.
func New(root string) (*CAS, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{root: root}, nil
}

// Root returns the directory the store lives in.
func (c *CAS) Root() string { return c.root }

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}

	path := c.pathFor(id)
	if _, err := os.Stat(path); err == nil {
		return c.checkExisting(id, b)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return cid.Undef, err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) (cid.Cid, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cid.Undef, err
	}
	if _, err := tmp.Write(b); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Chmod(tmpName, 0o444); err != nil {
		return cleanup(err)
	}

	// Link fails if a concurrent writer got there first; the object is then
	// checked instead of replaced.
	if err := os.Link(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		if os.IsExist(err) {
			return c.checkExisting(id, b)
		}
		return cid.Undef, err
	}
	_ = os.Remove(tmpName)
	return id, nil
}

func (c *CAS) checkExisting(id cid.Cid, b []byte) (cid.Cid, error) {
	existing, err := c.Get(id)
	if err != nil || !bytes.Equal(existing, b) {
		// An unreadable or corrupted object is an immutability violation.
		return cid.Undef, storage.ErrImmutable
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := storage.CheckBytes(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

// pathFor shards objects by the last two characters of the CID string; the
// leading characters are the shared multibase/version prefix.
func (c *CAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, s)
	}
	return filepath.Join(c.root, s[len(s)-2:], s)
}
