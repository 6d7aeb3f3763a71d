// Package model defines stable boundary types for API layers.
//
// A NodeDocument is the serialized snapshot of a mycelium tree. Tree identity
// (Node.Hash) is unaffected by the projection: a decoded document hashes and
// verifies exactly like the tree it was taken from. These structs are the only
// types intended for direct JSON serialization by consumers.
package model
