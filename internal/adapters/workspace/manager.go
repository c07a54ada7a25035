// Package workspace provides ephemeral job workspaces on the local disk.
package workspace

import (
	"os"
	"path/filepath"
	"regexp"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/zerr"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Manager implements ports.WorkspaceProvider with temporary directories.
type Manager struct {
	root string
}

// NewManager creates a Manager that creates workspaces below root.
// An empty root uses the system temporary directory.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Create prepares a fresh workspace for the job.
func (m *Manager) Create(jobID string) (domain.Workspace, error) {
	if m.root != "" {
		if err := os.MkdirAll(m.root, 0o750); err != nil {
			return domain.Workspace{}, zerr.With(zerr.Wrap(err, "failed to create workspace root"), "path", m.root)
		}
	}

	root, err := os.MkdirTemp(m.root, "matrix-"+unsafeChars.ReplaceAllString(jobID, "_")+"-")
	if err != nil {
		return domain.Workspace{}, zerr.With(zerr.Wrap(err, "failed to create workspace"), "job", jobID)
	}

	ws := domain.Workspace{
		Root:    root,
		Workdir: filepath.Join(root, "work"),
		ToolDir: filepath.Join(root, "tools"),
	}
	for _, dir := range []string{ws.Workdir, ws.ToolDir} {
		if err := os.Mkdir(dir, 0o750); err != nil {
			_ = os.RemoveAll(root)
			return domain.Workspace{}, zerr.With(zerr.Wrap(err, "failed to create workspace"), "path", dir)
		}
	}
	return ws, nil
}

// Remove discards the workspace and everything in it.
func (m *Manager) Remove(ws domain.Workspace) error {
	if ws.Root == "" {
		return nil
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove workspace"), "path", ws.Root)
	}
	return nil
}
