package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

const (
	// DIDKeyPrefix prefixes every did:key identifier.
	DIDKeyPrefix = "did:key:"
	// Dilithium3Prefix prefixes the dilithium3 public-key encoding.
	Dilithium3Prefix = "dilithium3:"

	// ed25519-pub in the multicodec table.
	multicodecEd25519Pub = 0xed
)

// DIDKeyFromPublicKey encodes an Ed25519 public key as a did:key identifier:
// "did:key:" + multibase(base58btc, varint(0xed) || pubkey).
func DIDKeyFromPublicKey(pub ed25519.PublicKey) (string, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	prefix := varint.ToUvarint(multicodecEd25519Pub)
	buf := make([]byte, 0, len(prefix)+len(pub))
	buf = append(buf, prefix...)
	buf = append(buf, pub...)
	enc, err := multibase.Encode(multibase.Base58BTC, buf)
	if err != nil {
		return "", err
	}
	return DIDKeyPrefix + enc, nil
}

// PublicKeyFromDIDKey decodes a did:key identifier produced by DIDKeyFromPublicKey.
func PublicKeyFromDIDKey(did string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(did, DIDKeyPrefix) {
		return nil, fmt.Errorf("missing %q prefix", DIDKeyPrefix)
	}
	enc, data, err := multibase.Decode(strings.TrimPrefix(did, DIDKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid multibase: %w", err)
	}
	if enc != multibase.Base58BTC {
		return nil, fmt.Errorf("did:key must use base58btc, got %q", string(rune(enc)))
	}
	codec, n, err := varint.FromUvarint(data)
	if err != nil {
		return nil, fmt.Errorf("invalid multicodec prefix: %w", err)
	}
	if codec != multicodecEd25519Pub {
		return nil, fmt.Errorf("unsupported multicodec 0x%x", codec)
	}
	pub := data[n:]
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return ed25519.PublicKey(pub), nil
}

// Dilithium3KeyFromPublicKey encodes a Dilithium3 public key as
// "dilithium3:" + base64(pubkey).
func Dilithium3KeyFromPublicKey(pub *mode3.PublicKey) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("missing public key")
	}
	return Dilithium3Prefix + base64.StdEncoding.EncodeToString(pub.Bytes()), nil
}

// PublicKeyFromDilithium3Key decodes a key produced by Dilithium3KeyFromPublicKey.
func PublicKeyFromDilithium3Key(key string) (*mode3.PublicKey, error) {
	if !strings.HasPrefix(key, Dilithium3Prefix) {
		return nil, fmt.Errorf("missing %q prefix", Dilithium3Prefix)
	}
	raw, err := decodeBase64(strings.TrimPrefix(key, Dilithium3Prefix))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("invalid dilithium3 public key: %w", err)
	}
	return &pk, nil
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
