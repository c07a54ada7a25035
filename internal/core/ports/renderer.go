package ports

import (
	"io"

	"go.trai.ch/matrix/internal/core/domain"
)

// Renderer presents run progress to the user. Implementations must be safe
// for concurrent use since jobs report from their own goroutines.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	OnPlan(plan *domain.Plan)
	OnJobStart(job *domain.Job)
	OnStepStart(job *domain.Job, step domain.Step)
	// JobOutput returns the writer step output of job is streamed to.
	JobOutput(job *domain.Job) io.Writer
	OnStepComplete(job *domain.Job, result domain.StepResult)
	OnJobComplete(result domain.JobResult)
	OnRunComplete(result *domain.RunResult)
}

// RendererFactory builds a renderer for the requested output mode.
type RendererFactory interface {
	// New returns a renderer that streams step output to stdout and progress
	// to stderr. Mode is one of "auto", "linear" or "plain".
	New(stdout, stderr io.Writer, mode string) Renderer
}
