package spore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Scheme is a build-time plugin that resolves Sporeprints of one encoding.
//
// Schemes typically register themselves in init():
//
//	spore.MustRegister(spore.Scheme{ ... })
//
// The binary must import the scheme package for registration to occur.
type Scheme struct {
	// Name is the value returned by Sporeprint.Scheme for this encoding.
	Name        string
	Description string

	// Resolve builds a verification-only Spore from a Sporeprint.
	Resolve func(Sporeprint) (Spore, error)
}

var (
	mu      sync.RWMutex
	schemes = map[string]Scheme{}
)

// Register registers a scheme.
func Register(s Scheme) error {
	if s.Name == "" {
		return fmt.Errorf("spore: scheme name is required")
	}
	if s.Resolve == nil {
		return fmt.Errorf("spore: scheme %q missing Resolve", s.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := schemes[s.Name]; exists {
		return fmt.Errorf("spore: scheme %q already registered", s.Name)
	}
	schemes[s.Name] = s
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(s Scheme) {
	if err := Register(s); err != nil {
		panic(err)
	}
}

// Schemes returns registered schemes sorted by name.
func Schemes() []Scheme {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Scheme, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve reconstructs a verification-capable Spore from its Sporeprint alone.
func Resolve(sp Sporeprint) (Spore, error) {
	name := sp.Scheme()
	if name == "" || strings.TrimSpace(string(sp)) != string(sp) {
		return nil, NewError(OpResolve, "", ErrMalformedSporeprint)
	}
	mu.RLock()
	s, ok := schemes[name]
	mu.RUnlock()
	if !ok {
		return nil, NewError(OpResolve, name, ErrUnknownScheme)
	}
	return s.Resolve(sp)
}
