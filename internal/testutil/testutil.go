// Package testutil provides shared test helpers for fetchers and content stores.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/starford/collabeat/internal/apperr"
	"github.com/starford/collabeat/internal/storage"
)

// FetchCall records one StubFetcher invocation.
type FetchCall struct {
	Identifier string
	Address    string
	TimeoutSec uint64
}

// StubFetcher serves canned content by identifier and records every call.
type StubFetcher struct {
	mu      sync.Mutex
	content map[string][]byte
	errs    map[string]error
	calls   []FetchCall
}

// NewStubFetcher returns an empty StubFetcher.
func NewStubFetcher() *StubFetcher {
	return &StubFetcher{content: map[string][]byte{}, errs: map[string]error{}}
}

// Set serves data for identifier.
func (f *StubFetcher) Set(identifier string, data []byte) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[identifier] = data
	return f
}

// Fail makes fetches of identifier return err.
func (f *StubFetcher) Fail(identifier string, err error) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[identifier] = err
	return f
}

// Fetch implements fetch.Fetcher.
func (f *StubFetcher) Fetch(_ context.Context, identifier, address string, timeoutSec uint64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FetchCall{Identifier: identifier, Address: address, TimeoutSec: timeoutSec})
	if err, ok := f.errs[identifier]; ok {
		return nil, err
	}
	data, ok := f.content[identifier]
	if !ok {
		return nil, fmt.Errorf("stub: %s: %w", identifier, apperr.ErrNotFound)
	}
	return data, nil
}

// Calls returns a copy of the recorded calls.
func (f *StubFetcher) Calls() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchCall(nil), f.calls...)
}

// TestStore creates a temporary content directory with a storage.FS.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// PutContent stores data in store and returns its CID string.
func PutContent(t *testing.T, store storage.Provider, data string) string {
	t.Helper()
	id, err := store.Put([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return id.String()
}
