// Package keys provides key material helpers for spores.
//
// Stable:
//   - Pure, deterministic primitives: did:key and dilithium3 public-key
//     encodings, role-seed derivation, and the pre-hashed signing helpers the
//     spore implementations are built on.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore). It is a local-first utility for
//     the CLI and is not part of the tree's hashing or signing contract.
package keys
