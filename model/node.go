package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"xdao.co/mycelium/mycelium"
	"xdao.co/mycelium/spore"
)

// FromNode projects n and its owned subtree into a document.
func FromNode(n *mycelium.Node) NodeDocument {
	attrs := n.Attrs()
	out := NodeDocument{
		Attributes: make([]AttributeDocument, 0, len(attrs)),
		Hyphae:     make([]HyphaDocument, 0),
	}
	for _, a := range attrs {
		out.Attributes = append(out.Attributes, fromAttribute(a))
	}
	for _, h := range n.Hyphae() {
		switch v := h.(type) {
		case *mycelium.Node:
			child := FromNode(v)
			out.Hyphae = append(out.Hyphae, HyphaDocument{Node: &child})
		case mycelium.Reference:
			out.Hyphae = append(out.Hyphae, HyphaDocument{Reference: string(v.Sporeprint)})
		}
	}
	return out
}

func fromAttribute(a mycelium.Attribute) AttributeDocument {
	switch v := a.(type) {
	case mycelium.OriginSpore:
		return AttributeDocument{Kind: KindOriginSpore, Sporeprint: string(v.Sporeprint)}
	case mycelium.OriginMoment:
		m := uint64(v.Moment)
		return AttributeDocument{Kind: KindOriginMoment, Moment: &m}
	case mycelium.OriginSignature:
		return AttributeDocument{Kind: KindOriginSignature, Signature: append([]byte(nil), v.Signature...)}
	case mycelium.LastUpdate:
		m := uint64(v.Moment)
		return AttributeDocument{Kind: KindLastUpdate, Moment: &m}
	default:
		return AttributeDocument{}
	}
}

// Node rebuilds the tree described by d. opts apply to every rebuilt node.
func (d NodeDocument) Node(opts ...mycelium.Option) (*mycelium.Node, error) {
	return d.node("$", opts)
}

func (d NodeDocument) node(path string, opts []mycelium.Option) (*mycelium.Node, error) {
	attrs := make([]mycelium.Attribute, 0, len(d.Attributes))
	seen := make(map[AttributeKind]bool, len(d.Attributes))
	for i, ad := range d.Attributes {
		at := path + ".attributes[" + strconv.Itoa(i) + "]"
		if seen[ad.Kind] {
			return nil, NewError(ErrInvalidDocument, at+": duplicate attribute kind "+string(ad.Kind))
		}
		seen[ad.Kind] = true
		a, err := ad.attribute(at)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}

	hyphae := make(mycelium.Hyphae, 0, len(d.Hyphae))
	for i, hd := range d.Hyphae {
		at := path + ".hyphae[" + strconv.Itoa(i) + "]"
		switch {
		case hd.Node != nil && hd.Reference != "":
			return nil, NewError(ErrInvalidDocument, at+": hypha has both node and reference")
		case hd.Node != nil:
			child, err := hd.Node.node(at+".node", opts)
			if err != nil {
				return nil, err
			}
			hyphae = append(hyphae, child)
		case hd.Reference != "":
			hyphae = append(hyphae, mycelium.Reference{Sporeprint: spore.Sporeprint(hd.Reference)})
		default:
			return nil, NewError(ErrInvalidDocument, at+": hypha missing node/reference")
		}
	}
	return mycelium.Assemble(attrs, hyphae, opts...), nil
}

func (ad AttributeDocument) attribute(at string) (mycelium.Attribute, error) {
	only := func(sp, m, sig bool) error {
		if (ad.Sporeprint != "") != sp || (ad.Moment != nil) != m || (len(ad.Signature) > 0) != sig {
			return NewError(ErrInvalidDocument, at+": fields do not match kind "+string(ad.Kind))
		}
		return nil
	}
	switch ad.Kind {
	case KindOriginSpore:
		if err := only(true, false, false); err != nil {
			return nil, err
		}
		return mycelium.OriginSpore{Sporeprint: spore.Sporeprint(ad.Sporeprint)}, nil
	case KindOriginMoment:
		if err := only(false, true, false); err != nil {
			return nil, err
		}
		return mycelium.OriginMoment{Moment: mycelium.Moment(*ad.Moment)}, nil
	case KindOriginSignature:
		if err := only(false, false, true); err != nil {
			return nil, err
		}
		return mycelium.OriginSignature{Signature: append([]byte(nil), ad.Signature...)}, nil
	case KindLastUpdate:
		if err := only(false, true, false); err != nil {
			return nil, err
		}
		return mycelium.LastUpdate{Moment: mycelium.Moment(*ad.Moment)}, nil
	case "":
		return nil, NewError(ErrInvalidDocument, at+": missing attribute kind")
	default:
		return nil, NewError(ErrInvalidDocument, at+": unknown attribute kind "+string(ad.Kind))
	}
}

// Encode serializes n as a NodeDocument. Equal trees encode to equal bytes.
func Encode(n *mycelium.Node) ([]byte, error) {
	b, err := json.Marshal(FromNode(n))
	if err != nil {
		return nil, NewError(ErrInternal, err.Error())
	}
	return b, nil
}

// Decode parses a NodeDocument and rebuilds its tree. Unknown fields and
// trailing data are rejected.
func Decode(b []byte, opts ...mycelium.Option) (*mycelium.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var d NodeDocument
	if err := dec.Decode(&d); err != nil {
		return nil, NewError(ErrInvalidDocument, err.Error())
	}
	if dec.More() {
		return nil, NewError(ErrInvalidDocument, "trailing data after document")
	}
	return d.Node(opts...)
}
