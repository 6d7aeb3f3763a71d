package mycelium

import (
	"bytes"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/cidutil"
)

// Child entry tags. They lie outside the AttrKind range, so a child entry is
// never read as an attribute.
const (
	tagOwnedHypha     byte = 0x80
	tagReferenceHypha byte = 0x81
)

// Hash returns the node's content digest as a CIDv1 (raw, sha2-256).
//
// The digest input is the HashContribution of every attribute in order,
// followed, per child, by the child's own digest (owned) or the reference's
// sporeprint bytes (reference). Child entries carry a tag and a length prefix.
// OriginSignature contributes nothing, so signing does not change the hash.
// The value is always recomputed.
func (n *Node) Hash() (cid.Cid, error) {
	var buf bytes.Buffer
	for _, a := range n.attrs {
		buf.Write(a.hashContribution())
	}
	for _, h := range n.hyphae {
		switch c := h.(type) {
		case *Node:
			id, err := c.Hash()
			if err != nil {
				return cid.Undef, err
			}
			buf.Write(framed(tagOwnedHypha, id.Bytes()))
		case Reference:
			buf.Write(framed(tagReferenceHypha, c.Sporeprint.Bytes()))
		}
	}
	id, err := cidutil.CIDv1RawSHA256CID(buf.Bytes())
	if err != nil {
		return cid.Undef, wrapError(KindInternal, "MYC-HASH-001", "digest failed", err)
	}
	return id, nil
}
