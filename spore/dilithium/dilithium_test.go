package dilithium

import (
	"errors"
	"strings"
	"testing"

	"xdao.co/mycelium/spore"
)

type deterministicReader struct{}

func (deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0x42
	}
	return len(p), nil
}

func TestSignVerifyAndResolve(t *testing.T) {
	s, err := Generate(deterministicReader{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(string(s.Sporeprint()), "dilithium3:") {
		t.Fatalf("unexpected sporeprint prefix")
	}

	data := []byte("bafkreigh2akiscaildc")
	sig, err := s.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	resolved, err := spore.Resolve(s.Sporeprint())
	if err != nil {
		t.Fatalf("spore.Resolve: %v", err)
	}
	if err := resolved.Verify(data, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := resolved.Verify(append([]byte(nil), "other"...), sig); !errors.Is(err, spore.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if _, err := resolved.Sign(data); !errors.Is(err, spore.ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey, got %v", err)
	}
}

func TestFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	a, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	b, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if a.Sporeprint() != b.Sporeprint() {
		t.Fatalf("expected deterministic sporeprint")
	}
	if _, err := FromSeed(seed[:4]); err == nil {
		t.Fatalf("expected short seed to be rejected")
	}
}

func TestVerifyShortSignature(t *testing.T) {
	s, err := FromSeed(make([]byte, 32))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if err := s.Verify([]byte("x"), []byte{1, 2, 3}); !errors.Is(err, spore.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
