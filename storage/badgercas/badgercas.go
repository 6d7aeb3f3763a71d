// Package badgercas stores snapshots in an embedded BadgerDB keyed by CID bytes.
package badgercas

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"xdao.co/mycelium/cidutil"
	"xdao.co/mycelium/storage"
)

// Options configures Open.
type Options struct {
	// Dir is the database directory. Required unless InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; contents are lost on Close.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
	// Logger receives badger's internal log output. Nil silences it.
	Logger *zap.Logger
}

// CAS is a BadgerDB-backed content-addressable store. It is safe for
// concurrent use.
type CAS struct {
	db *badger.DB
}

var _ storage.CAS = (*CAS)(nil)

func Open(opts Options) (*CAS, error) {
	var bo badger.Options
	switch {
	case opts.InMemory:
		bo = badger.DefaultOptions("").WithInMemory(true)
	case opts.Dir == "":
		return nil, errors.New("badgercas: directory is required")
	default:
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("badgercas: create %s: %w", opts.Dir, err)
		}
		bo = badger.DefaultOptions(opts.Dir)
	}
	bo = bo.WithSyncWrites(opts.SyncWrites).WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bo = bo.WithLogger(badgerLogger{opts.Logger.Named("badger").Sugar()})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("badgercas: open: %w", err)
	}
	return &CAS{db: db}, nil
}

func (c *CAS) Close() error { return c.db.Close() }

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	key := id.Bytes()

	err = c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case err == nil:
			return item.Value(func(existing []byte) error {
				if !bytes.Equal(existing, b) {
					return storage.ErrImmutable
				}
				return nil
			})
		case errors.Is(err, badger.ErrKeyNotFound):
			return txn.Set(key, b)
		default:
			return err
		}
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent writer stored the same key; its bytes must match ours.
		existing, gerr := c.Get(id)
		if gerr != nil || !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(id.Bytes())
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := storage.CheckBytes(id, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(id.Bytes())
		return err
	})
	return err == nil
}

// Len counts stored objects.
func (c *CAS) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		o := badger.DefaultIteratorOptions
		o.PrefetchValues = false
		it := txn.NewIterator(o)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Infof(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
