package mycelium

import (
	"encoding/binary"

	"github.com/multiformats/go-varint"

	"xdao.co/mycelium/spore"
)

// AttrKind identifies an attribute variant regardless of its payload.
type AttrKind uint8

const (
	AttrOriginSpore AttrKind = iota + 1
	AttrOriginMoment
	AttrOriginSignature
	AttrLastUpdate
)

func (k AttrKind) String() string {
	switch k {
	case AttrOriginSpore:
		return "OriginSpore"
	case AttrOriginMoment:
		return "OriginMoment"
	case AttrOriginSignature:
		return "OriginSignature"
	case AttrLastUpdate:
		return "LastUpdate"
	default:
		return "Unknown"
	}
}

// Attribute is a typed fact attached to a Node. The set of variants is closed:
// OriginSpore, OriginMoment, OriginSignature and LastUpdate.
type Attribute interface {
	Kind() AttrKind
	hashContribution() []byte
}

// OriginSpore identifies the spore which created the node.
type OriginSpore struct {
	Sporeprint spore.Sporeprint
}

// OriginMoment is the node's creation moment.
type OriginMoment struct {
	Moment Moment
}

// OriginSignature is the origin spore's signature over the node's hash text.
// It never contributes to the hash.
type OriginSignature struct {
	Signature []byte
}

// LastUpdate is the moment of the most recent Add.
type LastUpdate struct {
	Moment Moment
}

func (OriginSpore) Kind() AttrKind     { return AttrOriginSpore }
func (OriginMoment) Kind() AttrKind    { return AttrOriginMoment }
func (OriginSignature) Kind() AttrKind { return AttrOriginSignature }
func (LastUpdate) Kind() AttrKind      { return AttrLastUpdate }

func (a OriginSpore) hashContribution() []byte {
	return framed(byte(AttrOriginSpore), a.Sporeprint.Bytes())
}

func (a OriginMoment) hashContribution() []byte { return momentContribution(AttrOriginMoment, a.Moment) }

func (OriginSignature) hashContribution() []byte { return nil }

func (a LastUpdate) hashContribution() []byte { return momentContribution(AttrLastUpdate, a.Moment) }

// momentContribution is the kind tag followed by m as a big-endian u128.
func momentContribution(kind AttrKind, m Moment) []byte {
	out := make([]byte, 17)
	out[0] = byte(kind)
	binary.BigEndian.PutUint64(out[9:], uint64(m))
	return out
}

// framed is tag || uvarint(len(payload)) || payload. Every variable-length
// digest entry is framed so that adjacent entries cannot be re-split.
func framed(tag byte, payload []byte) []byte {
	out := make([]byte, 0, 1+varint.UvarintSize(uint64(len(payload)))+len(payload))
	out = append(out, tag)
	out = append(out, varint.ToUvarint(uint64(len(payload)))...)
	return append(out, payload...)
}

// HashContribution returns the bytes a contributes to its node's digest.
func HashContribution(a Attribute) []byte {
	if a == nil {
		return nil
	}
	return a.hashContribution()
}

// ShallowEqual compares attribute variants without looking at their payloads.
func ShallowEqual(a, b Attribute) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind()
}

// Attrs returns the node's attributes in insertion order.
// The returned slice is a copy.
func (n *Node) Attrs() []Attribute {
	return append([]Attribute(nil), n.attrs...)
}

// Attr returns the first attribute of the given kind.
func (n *Node) Attr(kind AttrKind) (Attribute, bool) {
	for _, a := range n.attrs {
		if a.Kind() == kind {
			return a, true
		}
	}
	return nil, false
}

// SetAttr replaces any attribute of the same kind with a, appending a at the end.
func (n *Node) SetAttr(a Attribute) {
	if a == nil {
		return
	}
	n.removeAttrs(func(x Attribute) bool { return ShallowEqual(x, a) })
	n.attrs = append(n.attrs, a)
}

func (n *Node) removeAttrs(drop func(Attribute) bool) {
	kept := n.attrs[:0]
	for _, a := range n.attrs {
		if !drop(a) {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(n.attrs); i++ {
		n.attrs[i] = nil
	}
	n.attrs = kept
}

// Origin returns the node's origin sporeprint and moment, each reported with
// its own presence flag.
func (n *Node) Origin() (sp spore.Sporeprint, hasSporeprint bool, m Moment, hasMoment bool) {
	for _, a := range n.attrs {
		switch v := a.(type) {
		case OriginSpore:
			if !hasSporeprint {
				sp, hasSporeprint = v.Sporeprint, true
			}
		case OriginMoment:
			if !hasMoment {
				m, hasMoment = v.Moment, true
			}
		}
	}
	return sp, hasSporeprint, m, hasMoment
}

// HasOrigin reports whether both OriginSpore and OriginMoment are present.
func (n *Node) HasOrigin() bool {
	var sp, m bool
	for _, a := range n.attrs {
		switch a.Kind() {
		case AttrOriginSpore:
			sp = true
		case AttrOriginMoment:
			m = true
		}
		if sp && m {
			return true
		}
	}
	return false
}

// OriginSporeprint returns the OriginSpore payload, if any.
func (n *Node) OriginSporeprint() (spore.Sporeprint, bool) {
	a, ok := n.Attr(AttrOriginSpore)
	if !ok {
		return "", false
	}
	return a.(OriginSpore).Sporeprint, true
}

// lastUpdate returns the LastUpdate moment, or zero when absent.
func (n *Node) lastUpdate() Moment {
	a, ok := n.Attr(AttrLastUpdate)
	if !ok {
		return 0
	}
	return a.(LastUpdate).Moment
}
