// Package ctags implements the `foundry ctags FILE` command named in
// , grounded on the original GNOME source's ctags plugin
// service (foundry-cli-builtin-ctags.c): index a file and write its raw
// tag data to stdout. Rather than the original's bundled ctags plugin,
// this shells out to a real `ctags` binary on PATH, mirroring pkg/lsp
// and pkg/dap's exec.CommandContext usage for external tool processes.
package ctags

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/containifyci/foundry/pkg/ferr"
)

// Indexer runs a ctags binary against a file and returns its raw tag
// output.
type Indexer struct {
	binary string // defaults to "ctags" when empty
}

// NewIndexer constructs an Indexer. An empty binary resolves "ctags" on
// PATH at Index time.
func NewIndexer(binary string) *Indexer {
	if binary == "" {
		binary = "ctags"
	}
	return &Indexer{binary: binary}
}

// Index runs `ctags -f - FILE` and returns its stdout bytes, mirroring
// plugin_ctags_service_index's single-file indexing. Returns NotFound if
// the ctags binary isn't present on PATH or ctags writes no output, Io
// if running ctags fails.
func (idx *Indexer) Index(ctx context.Context, file string) ([]byte, error) {
	if _, err := exec.LookPath(idx.binary); err != nil {
		return nil, ferr.Wrap(ferr.NotFound, err, "ctags binary not found on PATH")
	}
	cmd := exec.CommandContext(ctx, idx.binary, "-f", "-", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, ferr.Wrap(ferr.Io, err, "ctags failed: "+stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, ferr.New(ferr.NotFound, "no ctags data available")
	}
	return stdout.Bytes(), nil
}
