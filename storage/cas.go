package storage

import (
	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/cidutil"
)

// CAS is a minimal content-addressable storage interface for tree snapshots.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (CIDv1, raw, sha2-256).
// - Get MUST return ErrNotFound when the CID is absent.
// - Get MUST NOT return bytes that do not hash to the requested CID.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// CheckBytes returns ErrInvalidCID for an undefined id and ErrCIDMismatch when
// b does not hash to id.
func CheckBytes(id cid.Cid, b []byte) error {
	if !id.Defined() {
		return ErrInvalidCID
	}
	if !cidutil.Matches(id, b) {
		return ErrCIDMismatch
	}
	return nil
}

// getInOrder returns the first successful read. Errors other than
// ErrNotFound stop the search.
func getInOrder(id cid.Cid, adapters []CAS) ([]byte, error) {
	for _, cas := range adapters {
		if cas == nil {
			continue
		}
		b, err := cas.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func hasAny(id cid.Cid, adapters []CAS) bool {
	for _, cas := range adapters {
		if cas != nil && cas.Has(id) {
			return true
		}
	}
	return false
}
