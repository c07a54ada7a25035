package actions

import (
	"context"
	"fmt"
	"io"

	"go.trai.ch/matrix/internal/adapters/fs"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/zerr"
)

// StateDir is the directory name the dispatcher keeps its own files in.
// Checkout never copies it into a workspace.
const StateDir = ".matrix"

// Checkout copies the source tree into the job workspace.
type Checkout struct {
	copier *fs.Copier
}

// NewCheckout creates a Checkout.
func NewCheckout(copier *fs.Copier) *Checkout {
	return &Checkout{copier: copier}
}

// Run copies jc.SourceDir into the workspace working directory.
func (c *Checkout) Run(ctx context.Context, jc *domain.JobContext, _ domain.Step, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if jc.SourceDir == "" {
		return zerr.New("checkout requires a source directory")
	}

	n, err := c.copier.CopyTree(jc.SourceDir, jc.Workspace.Workdir, []string{StateDir})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "checkout failed"), "source", jc.SourceDir)
	}

	_, _ = fmt.Fprintf(out, "Copied %d file(s) from %s\n", n, jc.SourceDir)
	return nil
}
