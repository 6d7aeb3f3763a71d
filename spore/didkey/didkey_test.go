package didkey

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"xdao.co/mycelium/spore"
)

func testSeed(b byte) []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestCreation(t *testing.T) {
	s, err := FromSeed(testSeed(7))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if !strings.HasPrefix(string(s.Sporeprint()), "did:key:z") {
		t.Fatalf("unexpected sporeprint %q", s.Sporeprint())
	}
	if s.Sporeprint().Scheme() != SchemeName {
		t.Fatalf("unexpected scheme %q", s.Sporeprint().Scheme())
	}
	again, err := FromSeed(testSeed(7))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if again.Sporeprint() != s.Sporeprint() {
		t.Fatalf("expected deterministic sporeprint")
	}
}

func TestSignVerify(t *testing.T) {
	s, err := FromSeed(testSeed(1))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	data := []byte("Hello, world!")
	sig, err := s.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) == 0 {
		t.Fatalf("empty signature")
	}
	if err := s.Verify(data, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	err = s.Verify([]byte("Hello, world?"), sig)
	if !errors.Is(err, spore.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestResolveFromSporeprint(t *testing.T) {
	s, err := FromSeed(testSeed(2))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	data := []byte("Hello, world!")
	sig, err := s.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Resolve through the registry: the result carries no private key.
	resolved, err := spore.Resolve(s.Sporeprint())
	if err != nil {
		t.Fatalf("spore.Resolve: %v", err)
	}
	if err := resolved.Verify(data, sig); err != nil {
		t.Fatalf("Verify with resolved spore: %v", err)
	}
	_, err = resolved.Sign(data)
	if !errors.Is(err, spore.ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey, got %v", err)
	}
}

func TestResolveMalformed(t *testing.T) {
	_, err := Resolve("did:key:zNotAKey")
	if !errors.Is(err, spore.ErrMalformedSporeprint) {
		t.Fatalf("expected ErrMalformedSporeprint, got %v", err)
	}
	var e *spore.Error
	if !errors.As(err, &e) || e.Op != spore.OpResolve {
		t.Fatalf("expected resolve *spore.Error, got %T", err)
	}
}
