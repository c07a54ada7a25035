// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/matrix/internal/core/domain"
)

// Executor defines the interface for running step scripts.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and streams its output to stdout and stderr.
	//
	// It returns an error carrying the exit code in its metadata when the
	// script exits unsuccessfully.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
