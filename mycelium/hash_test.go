package mycelium

import (
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/spore"
)

func buildTree(t *testing.T) (*Node, *Node, *Node) {
	t.Helper()
	clock := &tickClock{t: epoch}
	root := mustNew(t, testSpore(t, 1), WithClock(clock))
	child := mustNew(t, testSpore(t, 2), WithClock(clock))
	grandchild := mustNew(t, testSpore(t, 3), WithClock(clock))
	mustAdd(t, child, grandchild)
	mustAdd(t, root, child)
	return root, child, grandchild
}

func TestHashDeterministic(t *testing.T) {
	a, _, _ := buildTree(t)
	b, _, _ := buildTree(t)
	if mustHash(t, a) != mustHash(t, b) {
		t.Fatalf("identical trees must hash identically")
	}

	id, err := a.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if id.Version() != 1 || id.Type() != cid.Raw {
		t.Fatalf("unexpected CID prefix %+v", id.Prefix())
	}
}

func TestHashChangesWithDescendants(t *testing.T) {
	root, _, grandchild := buildTree(t)
	before := mustHash(t, root)

	grandchild.SetAttr(LastUpdate{Moment: 42})
	if mustHash(t, root) == before {
		t.Fatalf("changing a grandchild's attributes must change the root hash")
	}

	before = mustHash(t, root)
	grandchild.hyphae = append(grandchild.hyphae, Reference{Sporeprint: "did:key:x"})
	if mustHash(t, root) == before {
		t.Fatalf("changing a grandchild's hyphae must change the root hash")
	}
}

func TestHashIgnoresSignature(t *testing.T) {
	root, _, _ := buildTree(t)
	before := mustHash(t, root)
	if err := root.Sign(testSpore(t, 1)); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if mustHash(t, root) != before {
		t.Fatalf("signing must not change the hash")
	}
	root.SetAttr(OriginSignature{Signature: []byte("other")})
	if mustHash(t, root) != before {
		t.Fatalf("replacing the signature must not change the hash")
	}
}

func TestHashIsOrderSensitive(t *testing.T) {
	a := Assemble([]Attribute{OriginSpore{Sporeprint: "did:key:a"}, OriginMoment{Moment: 1}}, nil)
	b := Assemble([]Attribute{OriginMoment{Moment: 1}, OriginSpore{Sporeprint: "did:key:a"}}, nil)
	if mustHash(t, a) == mustHash(t, b) {
		t.Fatalf("attribute order is part of the digest")
	}

	x := Assemble(nil, Hyphae{Reference{Sporeprint: "did:key:1"}, Reference{Sporeprint: "did:key:2"}})
	y := Assemble(nil, Hyphae{Reference{Sporeprint: "did:key:2"}, Reference{Sporeprint: "did:key:1"}})
	if mustHash(t, x) == mustHash(t, y) {
		t.Fatalf("hyphae order is part of the digest")
	}
}

// Pruning is lossy: the hash of a pruned tree differs from the unpruned one.
func TestPruneChangesHash(t *testing.T) {
	sp := testSpore(t, 9).Sporeprint()
	root := Assemble([]Attribute{OriginSpore{Sporeprint: "did:key:root"}, OriginMoment{Moment: 1}}, Hyphae{
		originNode(sp, 10),
		originNode(sp, 20),
	})
	unpruned := root.Clone()

	root.Prune()
	if mustHash(t, root) == mustHash(t, unpruned) {
		t.Fatalf("expected pruning to change the hash")
	}

	// A reference folds raw sporeprint bytes, not the owned subtree's digest.
	owned := Assemble(nil, Hyphae{originNode(sp, 10)})
	ref := Assemble(nil, Hyphae{Reference{Sporeprint: sp}})
	if mustHash(t, owned) == mustHash(t, ref) {
		t.Fatalf("a reference must not hash like the owned node it replaces")
	}
}

// Variable-length entries are framed, so shifting bytes across an entry
// boundary changes the digest.
func TestHashFramesEntries(t *testing.T) {
	a := Assemble(nil, Hyphae{Reference{Sporeprint: "did:key:zAB"}, Reference{Sporeprint: "did:key:zC"}})
	b := Assemble(nil, Hyphae{Reference{Sporeprint: "did:key:zA"}, Reference{Sporeprint: "Bdid:key:zC"}})
	if mustHash(t, a) == mustHash(t, b) {
		t.Fatalf("re-split references must not collide")
	}

	owner, forged := ownedVersusForgedOrigin(t)
	if mustHash(t, owner) == mustHash(t, forged) {
		t.Fatalf("an owned child must not hash like an OriginSpore attribute")
	}
}

// ownedVersusForgedOrigin returns an attribute-less node holding one owned
// child, and a childless node whose OriginSpore is that child's CID bytes
// without the leading version byte.
func ownedVersusForgedOrigin(t *testing.T) (*Node, *Node) {
	t.Helper()
	child := originNode("did:key:c", 1)
	id, err := child.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	owner := Assemble(nil, Hyphae{child})
	forged := Assemble([]Attribute{
		OriginSpore{Sporeprint: spore.Sporeprint(id.Bytes()[1:])},
	}, nil)
	return owner, forged
}
