package testkit

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/cidutil"
	"xdao.co/mycelium/storage"
)

// Memory is a map-backed CAS. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// Puts counts successful Put calls, including idempotent repeats.
	Puts int
}

var _ storage.CAS = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id.KeyString()]; !ok {
		m.objects[id.KeyString()] = append([]byte(nil), b...)
	}
	m.Puts++
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[id.KeyString()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id.KeyString()]
	return ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
