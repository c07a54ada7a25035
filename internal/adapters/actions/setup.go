package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
)

// Setup provisions a language runtime found on the host for later steps.
type Setup struct {
	locator ports.ToolLocator
}

// NewSetup creates a Setup.
func NewSetup(locator ports.ToolLocator) *Setup {
	return &Setup{locator: locator}
}

// Run locates the runtime requested by "<tool>-version" (or "version"),
// links its aliases into the workspace tool directory and puts that
// directory first on PATH. It exports "<tool>Location" as the install prefix.
func (s *Setup) Run(ctx context.Context, jc *domain.JobContext, step domain.Step, out io.Writer) error {
	name := step.SetupTool()
	version, ok := step.With[name+"-version"]
	if !ok {
		version = step.With["version"]
	}

	tool, err := s.locator.Locate(ctx, name, version)
	if err != nil {
		return err
	}

	if err := linkAliases(jc.Workspace.ToolDir, tool); err != nil {
		return zerr.With(err, "tool", name)
	}

	binDir := filepath.Dir(tool.Path)
	jc.PrependPath(binDir)
	if jc.Workspace.ToolDir != "" {
		jc.PrependPath(jc.Workspace.ToolDir)
	}
	jc.ExportEnv(name+"Location", filepath.Dir(binDir))

	_, _ = fmt.Fprintf(out, "Using %s %s at %s\n", tool.Name, tool.Version, tool.Path)
	return nil
}

func linkAliases(dir string, tool domain.Tool) error {
	if dir == "" || len(tool.Aliases) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create tool directory")
	}

	for _, alias := range tool.Aliases {
		link := filepath.Join(dir, alias)
		if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
			return zerr.With(zerr.Wrap(err, "failed to replace tool shim"), "path", link)
		}
		if err := os.Symlink(tool.Path, link); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create tool shim"), "path", link)
		}
	}
	return nil
}
