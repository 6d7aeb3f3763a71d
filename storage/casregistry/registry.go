package casregistry

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"sync"

	"xdao.co/mycelium/storage"
)

// OpenFunc constructs a CAS from values parsed into the flags that produced
// it. It returns an optional close function.
type OpenFunc func() (storage.CAS, func() error, error)

// Backend is a build-time plugin that can open a storage.CAS implementation.
//
// Backends typically register themselves in init():
//
//	casregistry.MustRegister(casregistry.Backend{ ... })
//
// The binary must import the backend package for registration to occur.
type Backend struct {
	Name        string
	Description string
	Usage       Usage

	// Flags declares backend-specific flags on fs and returns the OpenFunc
	// bound to them. Flag names double as casconfig keys.
	Flags func(fs *flag.FlagSet) OpenFunc
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
	// bound holds openers whose flags were declared through RegisterFlags.
	bound = map[string]OpenFunc{}
)

// Register registers a backend.
func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("casregistry: backend name is required")
	}
	if b.Flags == nil {
		return fmt.Errorf("casregistry: backend %q missing Flags", b.Name)
	}
	if b.Usage == 0 {
		return fmt.Errorf("casregistry: backend %q missing Usage", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("casregistry: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns backends matching usage, sorted by name.
func List(usage Usage) []Backend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns backend names matching usage, sorted.
func Names(usage Usage) []string {
	bs := List(usage)
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

// RegisterFlags declares flags for all backends matching usage on fs, so a
// single parse pass accepts every backend's flags. Open later uses the values
// parsed into fs.
func RegisterFlags(fs *flag.FlagSet, usage Usage) {
	for _, b := range List(usage) {
		open := b.Flags(fs)
		mu.Lock()
		bound[b.Name] = open
		mu.Unlock()
	}
}

func lookup(name string, usage Usage) (Backend, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("casregistry: unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return Backend{}, fmt.Errorf("casregistry: backend %q not supported in this binary", name)
	}
	return b, nil
}

// Open opens the named backend from flags declared through RegisterFlags.
func Open(name string, usage Usage) (storage.CAS, func() error, error) {
	if _, err := lookup(name, usage); err != nil {
		return nil, nil, err
	}
	mu.RLock()
	open, ok := bound[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("casregistry: flags for backend %q were never registered", name)
	}
	return open()
}

// OpenWithConfig opens the named backend from key/value settings. Keys are the
// backend's flag names; unknown keys are rejected. Unset keys take the flag
// defaults.
func OpenWithConfig(name string, usage Usage, cfg map[string]string) (storage.CAS, func() error, error) {
	b, err := lookup(name, usage)
	if err != nil {
		return nil, nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	open := b.Flags(fs)

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fs.Lookup(k) == nil {
			return nil, nil, fmt.Errorf("casregistry: backend %q has no setting %q", name, k)
		}
		if err := fs.Set(k, cfg[k]); err != nil {
			return nil, nil, fmt.Errorf("casregistry: backend %q setting %q: %w", name, k, err)
		}
	}
	return open()
}
