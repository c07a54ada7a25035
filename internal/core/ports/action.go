package ports

import (
	"context"
	"io"

	"go.trai.ch/matrix/internal/core/domain"
)

// Action is a reusable step implementation referenced by "uses".
type Action interface {
	// Run executes step within the job context, writing progress to out.
	// Actions may extend the context (PATH, exported variables) for later steps.
	Run(ctx context.Context, jc *domain.JobContext, step domain.Step, out io.Writer) error
}

// ActionRegistry resolves action references.
//
//go:generate go run go.uber.org/mock/mockgen -source=action.go -destination=mocks/mock_action.go -package=mocks
type ActionRegistry interface {
	// Lookup returns the action for a "uses" reference such as "actions/checkout@v2".
	Lookup(uses string) (Action, error)
}
