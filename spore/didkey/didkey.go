// Package didkey implements spore.Spore with Ed25519 keys identified by
// did:key sporeprints.
//
// Signatures cover sha256(data). A Spore obtained from Resolve holds only the
// public key: it verifies but refuses to sign.
package didkey

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"xdao.co/mycelium/keys"
	"xdao.co/mycelium/spore"
)

// SchemeName is the spore scheme handled by this package.
const SchemeName = "did:key"

func init() {
	spore.MustRegister(spore.Scheme{
		Name:        SchemeName,
		Description: "Ed25519 keys encoded as did:key (multibase base58btc, ed25519-pub multicodec)",
		Resolve: func(sp spore.Sporeprint) (spore.Spore, error) {
			return Resolve(sp)
		},
	})
}

// Spore is an Ed25519 capability.
type Spore struct {
	sporeprint spore.Sporeprint
	public     ed25519.PublicKey
	private    ed25519.PrivateKey
}

var _ spore.Spore = (*Spore)(nil)

// FromSeed derives a signing Spore from a 32-byte Ed25519 seed.
func FromSeed(seed []byte) (*Spore, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("didkey: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return fromPrivateKey(ed25519.NewKeyFromSeed(seed))
}

// Generate creates a signing Spore with a fresh key read from rand.
func Generate(rand io.Reader) (*Spore, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return fromPrivateKey(priv)
}

func fromPrivateKey(priv ed25519.PrivateKey) (*Spore, error) {
	pub := priv.Public().(ed25519.PublicKey)
	did, err := keys.DIDKeyFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Spore{sporeprint: spore.Sporeprint(did), public: pub, private: priv}, nil
}

// Resolve returns a verification-only Spore for a did:key sporeprint.
func Resolve(sp spore.Sporeprint) (*Spore, error) {
	pub, err := keys.PublicKeyFromDIDKey(string(sp))
	if err != nil {
		return nil, spore.NewError(spore.OpResolve, SchemeName, fmt.Errorf("%w: %v", spore.ErrMalformedSporeprint, err))
	}
	return &Spore{sporeprint: sp, public: pub}, nil
}

func (s *Spore) Sporeprint() spore.Sporeprint { return s.sporeprint }

// CanSign reports whether s holds private key material.
func (s *Spore) CanSign() bool { return len(s.private) == ed25519.PrivateKeySize }

func (s *Spore) Sign(data []byte) ([]byte, error) {
	if !s.CanSign() {
		return nil, spore.NewError(spore.OpSign, SchemeName, spore.ErrNoPrivateKey)
	}
	return keys.SignEd25519SHA256(data, s.private), nil
}

func (s *Spore) Verify(data, signature []byte) error {
	if !keys.VerifyEd25519SHA256(data, signature, s.public) {
		return spore.NewError(spore.OpVerify, SchemeName, spore.ErrInvalidSignature)
	}
	return nil
}
