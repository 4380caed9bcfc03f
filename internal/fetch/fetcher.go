// Package fetch retrieves beat content by content identifier.
//
// The core never talks to the network itself: content is obtained from an
// external process (the Kubo "ipfs" CLI) or from an offline content directory.
package fetch

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/starford/collabeat/internal/apperr"
)

// Fetcher returns the raw bytes stored under identifier.
// address and timeoutSec may be zero values; implementations substitute defaults.
type Fetcher interface {
	Fetch(ctx context.Context, identifier, address string, timeoutSec uint64) ([]byte, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, identifier, address string, timeoutSec uint64) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, identifier, address string, timeoutSec uint64) ([]byte, error) {
	return f(ctx, identifier, address, timeoutSec)
}

// ParseIdentifier validates identifier as a CID.
func ParseIdentifier(identifier string) (cid.Cid, error) {
	id, err := cid.Decode(identifier)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w %q: %v", apperr.ErrInvalidIdentifier, identifier, err)
	}
	return id, nil
}
