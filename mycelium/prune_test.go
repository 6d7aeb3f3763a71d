package mycelium

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func withUpdate(n *Node, m Moment) *Node {
	n.SetAttr(LastUpdate{Moment: m})
	return n
}

func withChildren(n *Node, hs ...Hypha) *Node {
	n.hyphae = append(n.hyphae, hs...)
	return n
}

func TestPruneCollapsesOlderDuplicates(t *testing.T) {
	root := Assemble(nil, Hyphae{
		withChildren(originNode("did:key:a", 1), originNode("did:key:x", 1)),
		originNode("did:key:b", 2),
		withChildren(originNode("did:key:a", 3), originNode("did:key:y", 3)),
	})
	report := root.PruneWithReport()

	want := []shapeNode{
		{Origin: "did:key:a", Ref: true},
		{Origin: "did:key:b", Moment: 2},
		{Origin: "did:key:a", Moment: 3, Children: []shapeNode{{Origin: "did:key:y", Moment: 3}}},
	}
	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}
	if report != (PruneReport{Collapsed: 1}) {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestPruneDropsOriginlessChildren(t *testing.T) {
	root := Assemble(nil, Hyphae{
		Assemble([]Attribute{OriginSpore{Sporeprint: "did:key:g"}}, nil),
		originNode("did:key:a", 1),
		Assemble([]Attribute{OriginMoment{Moment: 9}}, nil),
		Reference{Sporeprint: "did:key:r"},
		Assemble(nil, nil),
	})
	report := root.PruneWithReport()

	want := []shapeNode{
		{Origin: "did:key:a", Moment: 1},
		{Origin: "did:key:r", Ref: true},
	}
	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}
	if report != (PruneReport{Dropped: 3}) {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestPruneIdempotent(t *testing.T) {
	root := Assemble(nil, Hyphae{
		originNode("did:key:a", 3),
		Assemble(nil, nil),
		originNode("did:key:a", 1),
		originNode("did:key:a", 2),
		Reference{Sporeprint: "did:key:a"},
	})
	root.Prune()
	firstShape := shapeOf(root)
	firstHash := mustHash(t, root)

	report := root.PruneWithReport()
	if diff := cmp.Diff(firstShape, shapeOf(root)); diff != "" {
		t.Fatalf("second prune changed shape (-first +second):\n%s", diff)
	}
	if mustHash(t, root) != firstHash {
		t.Fatalf("second prune changed the hash")
	}
	if report != (PruneReport{}) {
		t.Fatalf("second prune reported changes: %+v", report)
	}
}

func TestPruneTieKeepsFirst(t *testing.T) {
	root := Assemble(nil, Hyphae{
		withChildren(originNode("did:key:a", 5), originNode("did:key:first", 1)),
		withChildren(originNode("did:key:a", 5), originNode("did:key:second", 1)),
	})
	root.Prune()
	want := []shapeNode{
		{Origin: "did:key:a", Moment: 5, Children: []shapeNode{{Origin: "did:key:first", Moment: 1}}},
		{Origin: "did:key:a", Ref: true},
	}
	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}
}

func TestPruneLastUpdateBreaksTies(t *testing.T) {
	root := Assemble(nil, Hyphae{
		withUpdate(originNode("did:key:a", 5), 20),
		withUpdate(originNode("did:key:a", 5), 10),
		withUpdate(originNode("did:key:a", 5), 30),
	})
	root.Prune()
	hs := root.Hyphae()
	for i, h := range hs {
		_, isNode := h.(*Node)
		if isNode != (i == 2) {
			t.Fatalf("hypha %d: expected only the LastUpdate=30 child to stay owned", i)
		}
	}
	if hs[2].(*Node).lastUpdate() != 30 {
		t.Fatalf("wrong survivor")
	}
}

func TestPruneOriginMomentOutranksLastUpdate(t *testing.T) {
	root := Assemble(nil, Hyphae{
		withUpdate(originNode("did:key:a", 2), 1),
		withUpdate(originNode("did:key:a", 1), 99),
	})
	root.Prune()
	want := []shapeNode{
		{Origin: "did:key:a", Moment: 2},
		{Origin: "did:key:a", Ref: true},
	}
	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}
}

func TestPruneIsShallow(t *testing.T) {
	inner := withChildren(originNode("did:key:a", 1), originNode("did:key:x", 1), originNode("did:key:x", 2))
	root := Assemble(nil, Hyphae{inner})
	root.Prune()
	if len(inner.Hyphae()) != 2 {
		t.Fatalf("Prune must only touch direct children")
	}
	for _, h := range inner.Hyphae() {
		if _, ok := h.(Reference); ok {
			t.Fatalf("grandchildren must not be collapsed by Prune")
		}
	}
}

func TestPruneDeep(t *testing.T) {
	older := withChildren(originNode("did:key:a", 1),
		originNode("did:key:x", 1), originNode("did:key:x", 2))
	newer := withChildren(originNode("did:key:a", 2),
		originNode("did:key:y", 1), originNode("did:key:y", 2), Assemble(nil, nil))
	root := Assemble(nil, Hyphae{older, newer})

	report := root.PruneDeep()

	want := []shapeNode{
		{Origin: "did:key:a", Ref: true},
		{Origin: "did:key:a", Moment: 2, Children: []shapeNode{
			{Origin: "did:key:y", Ref: true},
			{Origin: "did:key:y", Moment: 2},
		}},
	}
	if diff := cmp.Diff(want, shapeOf(root)); diff != "" {
		t.Fatalf("unexpected shape (-want +got):\n%s", diff)
	}
	// The collapsed subtree is not visited, so its duplicate x stays uncounted.
	if report != (PruneReport{Dropped: 1, Collapsed: 2}) {
		t.Fatalf("unexpected report %+v", report)
	}
}
