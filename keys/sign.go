package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignEd25519SHA256 returns an Ed25519 signature over sha256(message).
func SignEd25519SHA256(message []byte, privateKey ed25519.PrivateKey) []byte {
	digest := sha256.Sum256(message)
	return ed25519.Sign(privateKey, digest[:])
}

// VerifyEd25519SHA256 reports whether sig is a valid SignEd25519SHA256 signature.
func VerifyEd25519SHA256(message, sig []byte, publicKey ed25519.PublicKey) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	digest := sha256.Sum256(message)
	return ed25519.Verify(publicKey, digest[:], sig)
}

// SignDilithium3 returns a dilithium3 signature over hash(message).
// hashAlg must be one of: sha256, sha512, sha3-256.
func SignDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	return sig, nil
}

// VerifyDilithium3 reports whether sig is a valid SignDilithium3 signature.
func VerifyDilithium3(message, sig []byte, hashAlg string, publicKey *mode3.PublicKey) (bool, error) {
	if publicKey == nil {
		return false, fmt.Errorf("missing public key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return false, err
	}
	if len(sig) != mode3.SignatureSize {
		return false, nil
	}
	return mode3.Verify(publicKey, digest, sig), nil
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// Dilithium3KeypairFromSeed deterministically derives a Dilithium3 keypair.
func Dilithium3KeypairFromSeed(seed []byte) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	if len(seed) != mode3.SeedSize {
		return nil, nil, fmt.Errorf("seed must be %d bytes", mode3.SeedSize)
	}
	var s [mode3.SeedSize]byte
	copy(s[:], seed)
	pk, sk := mode3.NewKeyFromSeed(&s)
	return pk, sk, nil
}
