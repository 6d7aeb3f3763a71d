package mycelium

import "xdao.co/mycelium/spore"

// Unbounded disables the depth limit of Scan. A hit found by an unbounded scan
// reports Unbounded as its depth.
const Unbounded = -1

// Scan searches below n (not n itself) for a child or reference whose origin
// sporeprint is target.
//
// With maxDepth >= 0, each descent spends one unit of budget; a budget of 0
// finds nothing, 1 reaches direct children only. A hit reports its distance
// from n (1 = direct child). With maxDepth < 0 the search is unbounded and a
// hit reports the sentinel Unbounded rather than a distance.
//
// Children without a full origin are skipped, including their subtrees.
// References match on their sporeprint and are never descended.
func (n *Node) Scan(target spore.Sporeprint, maxDepth int) (depth int, found bool) {
	if maxDepth < 0 {
		if _, ok := n.scan(target, Unbounded); ok {
			return Unbounded, true
		}
		return 0, false
	}
	return n.scan(target, maxDepth)
}

func (n *Node) scan(target spore.Sporeprint, budget int) (int, bool) {
	if budget == 0 {
		return 0, false
	}
	next := budget - 1
	if budget < 0 {
		next = Unbounded
	}
	for _, h := range n.hyphae {
		switch c := h.(type) {
		case Reference:
			if c.Sporeprint == target {
				return 1, true
			}
		case *Node:
			if !c.HasOrigin() {
				continue
			}
			if sp, _ := c.OriginSporeprint(); sp == target {
				return 1, true
			}
			if d, ok := c.scan(target, next); ok {
				return d + 1, true
			}
		}
	}
	return 0, false
}
