package fetch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
)

// Runner executes bin with args and returns its standard output.
type Runner func(ctx context.Context, bin string, args ...string) ([]byte, error)

// IPFS fetches content through the Kubo "ipfs" CLI ("ipfs dag get").
//
// Timeouts are passed to the CLI via --timeout and enforced there.
// Defaults can be replaced at runtime; each Fetch reads one consistent snapshot.
type IPFS struct {
	bin      string
	run      Runner
	defaults atomic.Pointer[Defaults]
}

// IPFSOptions configures an IPFS fetcher.
type IPFSOptions struct {
	// Bin is the path to the ipfs binary. If empty, "ipfs" is used.
	Bin string
	// Defaults applied to empty address / zero timeout. Zero fields fall back
	// to the built-in values.
	Defaults Defaults
	// Runner overrides process execution (tests).
	Runner Runner
}

// NewIPFS creates an IPFS fetcher.
func NewIPFS(opts IPFSOptions) *IPFS {
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	run := opts.Runner
	if run == nil {
		run = execRunner
	}
	f := &IPFS{bin: bin, run: run}
	f.SetDefaults(opts.Defaults)
	return f
}

// SetDefaults replaces the address/timeout defaults.
func (f *IPFS) SetDefaults(d Defaults) {
	f.defaults.Store(&d)
}

// Defaults returns the current defaults.
func (f *IPFS) Defaults() Defaults {
	return *f.defaults.Load()
}

// Fetch implements Fetcher.
func (f *IPFS) Fetch(ctx context.Context, identifier, address string, timeoutSec uint64) ([]byte, error) {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	addr, t := f.Defaults().Resolve(address, timeoutSec)
	out, err := f.run(ctx, f.bin, DagGetArgs(id.String(), addr, t)...)
	if err != nil {
		return nil, fmt.Errorf("ipfs dag get %s: %w", id, err)
	}
	return out, nil
}

func execRunner(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		s := strings.TrimSpace(string(ee.Stderr))
		if s == "" {
			return nil, fmt.Errorf("ipfs: %v", err)
		}
		return nil, fmt.Errorf("ipfs: %s", s)
	}
	return nil, err
}
