// Package ipfs stores snapshots in a local IPFS repository through the Kubo
// "ipfs" command. It needs no daemon and embeds no network client.
//
// Blocks are written raw with sha2-256 and CIDv1, so the CIDs match every
// other backend. Bytes read back are checked against the requested CID.
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/mycelium/cidutil"
	"xdao.co/mycelium/storage"
)

type CAS struct {
	bin     string
	env     []string
	timeout time.Duration
}

var _ storage.CAS = (*CAS)(nil)

type Options struct {
	// Bin is the ipfs binary. Defaults to "ipfs" on PATH.
	Bin string
	// Env replaces the command environment when non-nil (e.g. to set
	// IPFS_PATH).
	Env []string
	// Timeout bounds each command when non-zero.
	Timeout time.Duration
}

func New(opts Options) *CAS {
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	return &CAS{bin: bin, env: opts.Env, timeout: opts.Timeout}
}

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	out, err := c.run(data,
		"block", "put",
		"--quiet",
		"--cid-codec=raw",
		"--mhtype=sha2-256",
		"--mhlen=32",
		"--cid-version=1",
	)
	if err != nil {
		return cid.Undef, err
	}
	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("ipfs: unexpected block put output: %w", err)
	}
	if !got.Equals(id) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	out, err := c.run(nil, "--offline", "block", "get", id.String())
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := storage.CheckBytes(id, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Has reports whether the local repo holds id. It never fetches from the
// network.
func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := c.run(nil, "--offline", "block", "stat", id.String())
	return err == nil
}

func (c *CAS) run(stdin []byte, args ...string) ([]byte, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.bin, args...)
	if c.env != nil {
		cmd.Env = c.env
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if msg := strings.TrimSpace(string(ee.Stderr)); msg != "" {
			return nil, fmt.Errorf("ipfs: %s", msg)
		}
	}
	return nil, fmt.Errorf("ipfs: %w", err)
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found")
}
