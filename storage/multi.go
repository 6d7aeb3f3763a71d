package storage

import (
	"github.com/ipfs/go-cid"
)

// MultiCAS provides deterministic, ordered fallback across multiple CAS adapters.
//
// Reads try Adapters in slice order; callers MUST supply a fixed order.
// Put writes only to the first adapter.
type MultiCAS struct {
	Adapters []CAS
}

var _ CAS = MultiCAS{}

func (m MultiCAS) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Adapters) == 0 || m.Adapters[0] == nil {
		return cid.Undef, ErrNoBackends
	}
	return m.Adapters[0].Put(bytes)
}

func (m MultiCAS) Get(id cid.Cid) ([]byte, error) {
	return getInOrder(id, m.Adapters)
}

func (m MultiCAS) Has(id cid.Cid) bool {
	return hasAny(id, m.Adapters)
}
