package spore

import "strings"

// Sporeprint is the stable public identifier of a Spore.
//
// It is comparable and usable as a map key. Holding a Sporeprint never implies
// holding signing material.
type Sporeprint string

// Bytes returns the canonical byte encoding (UTF-8) of the Sporeprint.
func (s Sporeprint) Bytes() []byte { return []byte(s) }

func (s Sporeprint) String() string { return string(s) }

// Scheme returns the scheme prefix of s, e.g. "did:key" or "dilithium3".
// The empty string is returned when s carries no recognizable prefix.
func (s Sporeprint) Scheme() string {
	str := string(s)
	if strings.HasPrefix(str, "did:") {
		rest := strings.TrimPrefix(str, "did:")
		method, _, ok := strings.Cut(rest, ":")
		if !ok {
			return ""
		}
		return "did:" + method
	}
	alg, _, ok := strings.Cut(str, ":")
	if !ok {
		return ""
	}
	return alg
}

// Spore is an identity-bearing signing/verification capability.
//
// Verify MUST work on instances obtained from Resolve, which carry no private
// key. A rejected signature is reported with an error wrapping
// ErrInvalidSignature; any other failure is a capability error.
type Spore interface {
	Sporeprint() Sporeprint
	Sign(data []byte) ([]byte, error)
	Verify(data, signature []byte) error
}
