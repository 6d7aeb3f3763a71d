// Package dilithium implements spore.Spore with post-quantum Dilithium3 keys.
//
// Sporeprints use the "dilithium3:" + base64(pubkey) encoding. Signatures
// cover sha3-256(data).
package dilithium

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/mycelium/keys"
	"xdao.co/mycelium/spore"
)

const (
	SchemeName = "dilithium3"
	hashAlg    = "sha3-256"
)

func init() {
	spore.MustRegister(spore.Scheme{
		Name:        SchemeName,
		Description: "Dilithium3 (post-quantum) keys encoded as dilithium3:<base64>",
		Resolve: func(sp spore.Sporeprint) (spore.Spore, error) {
			return Resolve(sp)
		},
	})
}

// Spore is a Dilithium3 capability.
type Spore struct {
	sporeprint spore.Sporeprint
	public     *mode3.PublicKey
	private    *mode3.PrivateKey
}

var _ spore.Spore = (*Spore)(nil)

// Generate creates a signing Spore with a key read from rand.
func Generate(rand io.Reader) (*Spore, error) {
	pk, sk, err := keys.GenerateDilithium3Keypair(rand)
	if err != nil {
		return nil, err
	}
	return newSpore(pk, sk)
}

// FromSeed deterministically derives a signing Spore from a 32-byte seed.
func FromSeed(seed []byte) (*Spore, error) {
	pk, sk, err := keys.Dilithium3KeypairFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("dilithium: %w", err)
	}
	return newSpore(pk, sk)
}

func newSpore(pk *mode3.PublicKey, sk *mode3.PrivateKey) (*Spore, error) {
	enc, err := keys.Dilithium3KeyFromPublicKey(pk)
	if err != nil {
		return nil, err
	}
	return &Spore{sporeprint: spore.Sporeprint(enc), public: pk, private: sk}, nil
}

// Resolve returns a verification-only Spore for a dilithium3 sporeprint.
func Resolve(sp spore.Sporeprint) (*Spore, error) {
	pk, err := keys.PublicKeyFromDilithium3Key(string(sp))
	if err != nil {
		return nil, spore.NewError(spore.OpResolve, SchemeName, fmt.Errorf("%w: %v", spore.ErrMalformedSporeprint, err))
	}
	return &Spore{sporeprint: sp, public: pk}, nil
}

func (s *Spore) Sporeprint() spore.Sporeprint { return s.sporeprint }

func (s *Spore) Sign(data []byte) ([]byte, error) {
	if s.private == nil {
		return nil, spore.NewError(spore.OpSign, SchemeName, spore.ErrNoPrivateKey)
	}
	sig, err := keys.SignDilithium3(data, hashAlg, s.private)
	if err != nil {
		return nil, spore.NewError(spore.OpSign, SchemeName, err)
	}
	return sig, nil
}

func (s *Spore) Verify(data, signature []byte) error {
	ok, err := keys.VerifyDilithium3(data, signature, hashAlg, s.public)
	if err != nil {
		return spore.NewError(spore.OpVerify, SchemeName, err)
	}
	if !ok {
		return spore.NewError(spore.OpVerify, SchemeName, spore.ErrInvalidSignature)
	}
	return nil
}
