// Package mycelium implements a recursive, content-addressed provenance tree.
//
// A Node (a "mycelium") carries an ordered attribute set describing its origin
// (the creating spore and the creation moment) plus an ordered collection of
// children, its Hyphae. Each child is either an owned *Node or a Reference that
// names the origin sporeprint of an elided subtree.
//
// The tree supports:
//   - Hash: a Merkle-style CIDv1 digest over non-signature attributes and children.
//   - Sign / Verify: an origin signature over the digest's CID text.
//   - Scan: a depth-bounded search for an origin sporeprint below a node.
//   - Add: attaching a child and refreshing the LastUpdate moment.
//   - Prune: dropping origin-less children and collapsing duplicate origins
//     to references, keeping the most recent subtree.
//
// Pruning is lossy: a pruned node generally hashes differently from its
// unpruned form, because references contribute raw sporeprint bytes where owned
// children contribute their full digest.
//
// Nodes are not safe for concurrent mutation. Readers may share a tree; Add,
// SetAttr, Sign and Prune need exclusive access to the subtree they mutate.
package mycelium
