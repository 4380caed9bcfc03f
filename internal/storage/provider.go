// Package storage defines the offline content store used in place of a
// running IPFS node.
package storage

import "github.com/ipfs/go-cid"

// Provider is the interface for content stored by identifier.
type Provider interface {
	// Read returns the bytes stored under id.
	Read(id cid.Cid) ([]byte, error)
	// Put stores content and returns its CIDv1 (raw, sha2-256).
	Put(content []byte) (cid.Cid, error)
	// Link stores content under an externally assigned identifier,
	// e.g. a dag-json CID produced by an IPFS node.
	Link(id cid.Cid, content []byte) error
}
