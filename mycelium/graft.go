package mycelium

// Add appends child as an owned hypha and refreshes LastUpdate.
//
// Before appending, any OriginSpore attribute of n naming the child's origin
// sporeprint is removed, so n never claims the origin of its own child. The
// clock is read first: a Timing error leaves n unchanged.
func (n *Node) Add(child *Node) error {
	if child == nil {
		return newError(KindInvalid, "MYC-ADD-001", "nil child")
	}
	if child == n {
		return newError(KindInvalid, "MYC-ADD-002", "node cannot be added to itself")
	}
	now, err := n.now()
	if err != nil {
		return err
	}
	if sp, ok := child.OriginSporeprint(); ok {
		n.removeAttrs(func(a Attribute) bool {
			o, ok := a.(OriginSpore)
			return ok && o.Sporeprint == sp
		})
	}
	n.hyphae = append(n.hyphae, child)
	n.SetAttr(LastUpdate{Moment: now})
	return nil
}
