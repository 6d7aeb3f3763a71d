package model

// AttributeKind names an attribute variant on the wire.
type AttributeKind string

const (
	KindOriginSpore     AttributeKind = "originSpore"
	KindOriginMoment    AttributeKind = "originMoment"
	KindOriginSignature AttributeKind = "originSignature"
	KindLastUpdate      AttributeKind = "lastUpdate"
)

// AttributeDocument is one attribute. Exactly the field matching Kind is set.
//
// JSON note: Moment is a decimal string so that nanosecond values survive
// consumers that parse numbers as float64. Signature is base64.
type AttributeDocument struct {
	Kind       AttributeKind `json:"kind"`
	Sporeprint string        `json:"sporeprint,omitempty"`
	Moment     *uint64       `json:"moment,string,omitempty"`
	Signature  []byte        `json:"signature,omitempty"`
}

// HyphaDocument is one child slot.
// Exactly one of Node or Reference MUST be set.
type HyphaDocument struct {
	Node      *NodeDocument `json:"node,omitempty"`
	Reference string        `json:"reference,omitempty"`
}

// NodeDocument is a node and its owned subtree.
type NodeDocument struct {
	Attributes []AttributeDocument `json:"attributes"`
	Hyphae     []HyphaDocument     `json:"hyphae"`
}
