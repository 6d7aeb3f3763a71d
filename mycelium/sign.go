package mycelium

import (
	"xdao.co/mycelium/spore"
)

// Sign signs the text form of the node's hash with s and stores the result as
// the OriginSignature attribute.
func (n *Node) Sign(s spore.Spore) error {
	if s == nil {
		return newError(KindInvalid, "MYC-SIG-010", "missing spore")
	}
	id, err := n.Hash()
	if err != nil {
		return err
	}
	sig, err := s.Sign([]byte(id.String()))
	if err != nil {
		return wrapError(KindCapability, "MYC-CAP-001", "sign failed", err)
	}
	n.SetAttr(OriginSignature{Signature: sig})
	return nil
}

// Verify checks the node's OriginSignature against a freshly computed hash.
//
// s needs no private key; a spore from spore.Resolve is sufficient.
// Errors are KindSignatureMissing, KindSignatureInvalid or KindCapability.
func (n *Node) Verify(s spore.Spore) error {
	if s == nil {
		return newError(KindInvalid, "MYC-SIG-010", "missing spore")
	}
	a, ok := n.Attr(AttrOriginSignature)
	if !ok {
		return newError(KindSignatureMissing, "MYC-SIG-001", "missing origin signature")
	}
	id, err := n.Hash()
	if err != nil {
		return err
	}
	err = s.Verify([]byte(id.String()), a.(OriginSignature).Signature)
	switch {
	case err == nil:
		return nil
	case spore.IsInvalidSignature(err):
		return wrapError(KindSignatureInvalid, "MYC-SIG-002", "signature invalid", err)
	default:
		return wrapError(KindCapability, "MYC-CAP-002", "verify failed", err)
	}
}

// VerifyOrigin verifies the node against the spore named by its own
// OriginSpore attribute, resolved through the spore scheme registry.
func (n *Node) VerifyOrigin() error {
	sp, ok := n.OriginSporeprint()
	if !ok {
		return newError(KindOriginMissing, "MYC-ORIGIN-001", "missing origin spore")
	}
	s, err := spore.Resolve(sp)
	if err != nil {
		return wrapError(KindCapability, "MYC-CAP-003", "resolve origin spore", err)
	}
	return n.Verify(s)
}
