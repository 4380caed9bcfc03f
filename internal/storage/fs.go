package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"github.com/starford/collabeat/internal/apperr"
	"github.com/starford/collabeat/internal/checksum"
	"github.com/starford/collabeat/internal/fetch"
)

// FS implements Provider backed by a flat directory: one file per CID,
// named by the CID's canonical string form.
type FS struct {
	root string // absolute path to content directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Canonical CID strings contain no separators, so the path never leaves root.
func (f *FS) path(id cid.Cid) (string, error) {
	if !id.Defined() {
		return "", apperr.ErrInvalidIdentifier
	}
	return filepath.Join(f.root, id.String()), nil
}

// Read returns the content stored under id.
func (f *FS) Read(id cid.Cid) ([]byte, error) {
	p, err := f.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return data, nil
}

// Put stores content under its own CID. Putting the same bytes twice is a no-op.
func (f *FS) Put(content []byte) (cid.Cid, error) {
	id, err := checksum.CID(content)
	if err != nil {
		return cid.Undef, fmt.Errorf("storage: cid: %w", err)
	}
	if err := f.Link(id, content); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Link atomically writes content under id: tmp file → fsync → rename.
func (f *FS) Link(id cid.Cid, content []byte) error {
	abs, err := f.path(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".collabeat-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Fetch implements fetch.Fetcher. The address and timeout are irrelevant
// for local content and ignored.
func (f *FS) Fetch(_ context.Context, identifier, _ string, _ uint64) ([]byte, error) {
	id, err := fetch.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return f.Read(id)
}

var (
	_ Provider      = (*FS)(nil)
	_ fetch.Fetcher = (*FS)(nil)
)
