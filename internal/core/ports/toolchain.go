package ports

import (
	"context"

	"go.trai.ch/matrix/internal/core/domain"
)

// ToolLocator finds language runtimes installed on the host.
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type ToolLocator interface {
	// Locate returns an installed tool whose version satisfies the requested
	// version (e.g. "3.6" matches 3.6.15). An empty version accepts any.
	Locate(ctx context.Context, tool, version string) (domain.Tool, error)
}
