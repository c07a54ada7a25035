package ports

import "go.trai.ch/matrix/internal/core/domain"

// ConfigLoader defines the interface for loading workflow definitions.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the workflow file at path and returns the decoded workflow.
	Load(path string) (*domain.Workflow, error)
}
