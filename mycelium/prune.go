package mycelium

import "xdao.co/mycelium/spore"

// PruneReport counts what a prune pass changed.
type PruneReport struct {
	// Dropped is the number of origin-less owned children removed.
	Dropped int
	// Collapsed is the number of owned children replaced by a Reference.
	Collapsed int
}

func (r PruneReport) add(o PruneReport) PruneReport {
	return PruneReport{Dropped: r.Dropped + o.Dropped, Collapsed: r.Collapsed + o.Collapsed}
}

// Prune garbage-collects and deduplicates n's direct children.
//
// First, owned children without a full origin are dropped; references are
// kept. Then, among owned children sharing an origin sporeprint, only the most
// recent keeps its subtree and the others become References. Recency compares
// OriginMoment, then LastUpdate; on a full tie the earlier child wins.
// Prune is idempotent.
func (n *Node) Prune() {
	n.PruneWithReport()
}

// PruneWithReport is Prune returning what changed.
func (n *Node) PruneWithReport() PruneReport {
	var report PruneReport

	kept := make(Hyphae, 0, len(n.hyphae))
	for _, h := range n.hyphae {
		if c, ok := h.(*Node); ok && !c.HasOrigin() {
			report.Dropped++
			continue
		}
		kept = append(kept, h)
	}

	type best struct {
		index  int
		origin Moment
		update Moment
	}
	seen := make(map[spore.Sporeprint]best)
	var collapse []int
	for i, h := range kept {
		c, ok := h.(*Node)
		if !ok {
			continue
		}
		sp, _, origin, _ := c.Origin()
		cur := best{index: i, origin: origin, update: c.lastUpdate()}
		prev, dup := seen[sp]
		if !dup {
			seen[sp] = cur
			continue
		}
		if cur.origin > prev.origin || (cur.origin == prev.origin && cur.update > prev.update) {
			collapse = append(collapse, prev.index)
			seen[sp] = cur
		} else {
			collapse = append(collapse, i)
		}
	}
	for _, i := range collapse {
		sp, _ := kept[i].(*Node).OriginSporeprint()
		kept[i] = Reference{Sporeprint: sp}
	}
	report.Collapsed = len(collapse)

	n.hyphae = kept
	return report
}

// PruneDeep prunes n, then every owned child that survived, recursively.
// Collapsed subtrees are not visited.
func (n *Node) PruneDeep() PruneReport {
	report := n.PruneWithReport()
	for _, h := range n.hyphae {
		if c, ok := h.(*Node); ok {
			report = report.add(c.PruneDeep())
		}
	}
	return report
}
