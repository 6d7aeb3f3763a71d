// Package spore defines the identity capability that mycelium nodes are
// stamped with and verified against.
//
// A Spore is a keypair-like unit: it names itself with a Sporeprint, signs
// bytes and verifies signatures. Implementations live in sub-packages
// (didkey, dilithium) and register a Scheme so that any Sporeprint can be
// resolved back into a verification-only Spore without private material.
package spore
