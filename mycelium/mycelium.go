package mycelium

import (
	"xdao.co/mycelium/spore"
)

// Node is a provenance node: an attribute set plus its ordered Hyphae.
//
// A Node exclusively owns its attributes and its owned children. The zero
// value is a node without origin; use New to create a stamped node.
type Node struct {
	attrs  []Attribute
	hyphae Hyphae
	clock  Clock
}

// Hypha is a child slot: either an owned *Node or a Reference.
type Hypha interface {
	hypha()
}

// Reference stands in for an elided subtree, naming only its origin sporeprint.
// It owns none of the referenced subtree's data.
type Reference struct {
	Sporeprint spore.Sporeprint
}

func (*Node) hypha()     {}
func (Reference) hypha() {}

// Hyphae is the ordered collection of a node's children. Newer children are
// appended at the end.
type Hyphae []Hypha

// Option configures a Node.
type Option func(*Node)

// WithClock sets the clock used for origin and update moments.
func WithClock(c Clock) Option {
	return func(n *Node) { n.clock = c }
}

// New creates a node stamped with s's sporeprint and the current moment.
// It fails only when the clock is unavailable.
func New(s spore.Spore, opts ...Option) (*Node, error) {
	if s == nil {
		return nil, newError(KindInvalid, "MYC-NEW-001", "missing spore")
	}
	n := &Node{}
	for _, opt := range opts {
		opt(n)
	}
	now, err := n.now()
	if err != nil {
		return nil, err
	}
	n.attrs = []Attribute{
		OriginSpore{Sporeprint: s.Sporeprint()},
		OriginMoment{Moment: now},
	}
	return n, nil
}

// Assemble builds a node from existing parts without stamping an origin.
//
// Attributes are applied in order with SetAttr, so a later attribute replaces
// an earlier one of the same kind. Nil hyphae are skipped. Decoders and tests
// use this path; nodes built here may lack an origin.
func Assemble(attrs []Attribute, hyphae Hyphae, opts ...Option) *Node {
	n := &Node{}
	for _, opt := range opts {
		opt(n)
	}
	for _, a := range attrs {
		n.SetAttr(a)
	}
	for _, h := range hyphae {
		if isNilHypha(h) {
			continue
		}
		n.hyphae = append(n.hyphae, h)
	}
	return n
}

func isNilHypha(h Hypha) bool {
	if h == nil {
		return true
	}
	c, ok := h.(*Node)
	return ok && c == nil
}

// Hyphae returns the node's children in order. The returned slice is a copy;
// owned children are shared, not cloned.
func (n *Node) Hyphae() Hyphae {
	return append(Hyphae(nil), n.hyphae...)
}

// Clone returns a deep copy of n. Owned children are cloned recursively.
func (n *Node) Clone() *Node {
	c := &Node{clock: n.clock}
	for _, a := range n.attrs {
		if sig, ok := a.(OriginSignature); ok {
			a = OriginSignature{Signature: append([]byte(nil), sig.Signature...)}
		}
		c.attrs = append(c.attrs, a)
	}
	for _, h := range n.hyphae {
		if child, ok := h.(*Node); ok {
			c.hyphae = append(c.hyphae, child.Clone())
			continue
		}
		c.hyphae = append(c.hyphae, h)
	}
	return c
}

// HyphaSporeprint returns the origin sporeprint a child slot stands for.
func HyphaSporeprint(h Hypha) (spore.Sporeprint, bool) {
	switch v := h.(type) {
	case Reference:
		return v.Sporeprint, true
	case *Node:
		if v == nil {
			return "", false
		}
		return v.OriginSporeprint()
	default:
		return "", false
	}
}
