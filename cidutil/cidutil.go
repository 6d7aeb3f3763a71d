// Package cidutil derives the CIDs used for node digests and stored snapshots.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	return CIDv1Raw(data, multihash.SHA2_256)
}

// CIDv1Raw returns a CIDv1 (raw) over data using the multihash function code.
func CIDv1Raw(data []byte, code uint64) (cid.Cid, error) {
	sum, err := multihash.Sum(data, code, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Matches reports whether id addresses data under id's own hash function.
func Matches(id cid.Cid, data []byte) bool {
	if !id.Defined() {
		return false
	}
	got, err := id.Prefix().Sum(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
