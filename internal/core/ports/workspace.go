package ports

import "go.trai.ch/matrix/internal/core/domain"

// WorkspaceProvider creates the isolated directories jobs run in.
//
//go:generate go run go.uber.org/mock/mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks
type WorkspaceProvider interface {
	// Create prepares a fresh workspace for the job.
	Create(jobID string) (domain.Workspace, error)

	// Remove discards the workspace and everything in it.
	Remove(ws domain.Workspace) error
}
