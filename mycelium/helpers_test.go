package mycelium

import (
	"crypto/ed25519"
	"testing"
	"time"

	"xdao.co/mycelium/spore"
	"xdao.co/mycelium/spore/didkey"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// tickClock advances one second on every read.
type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func testSpore(t *testing.T, b byte) *didkey.Spore {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	s, err := didkey.FromSeed(seed)
	if err != nil {
		t.Fatalf("didkey.FromSeed: %v", err)
	}
	return s
}

func mustNew(t *testing.T, s spore.Spore, opts ...Option) *Node {
	t.Helper()
	n, err := New(s, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func mustAdd(t *testing.T, parent, child *Node) {
	t.Helper()
	if err := parent.Add(child); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func mustHash(t *testing.T, n *Node) string {
	t.Helper()
	id, err := n.Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return id.String()
}

// originNode builds a childless node with the given origin.
func originNode(sp spore.Sporeprint, m Moment) *Node {
	return Assemble([]Attribute{OriginSpore{Sporeprint: sp}, OriginMoment{Moment: m}}, nil)
}

// shapeNode is a comparable projection of a tree for cmp.Diff.
type shapeNode struct {
	Origin   spore.Sporeprint
	Moment   Moment
	Ref      bool
	Children []shapeNode
}

func shapeOf(n *Node) []shapeNode {
	var out []shapeNode
	for _, h := range n.Hyphae() {
		switch c := h.(type) {
		case Reference:
			out = append(out, shapeNode{Origin: c.Sporeprint, Ref: true})
		case *Node:
			sp, _, m, _ := c.Origin()
			out = append(out, shapeNode{Origin: sp, Moment: m, Children: shapeOf(c)})
		}
	}
	return out
}
