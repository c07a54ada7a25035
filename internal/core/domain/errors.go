package domain

import "go.trai.ch/zerr"

var (
	// ErrEmptyAxis is returned when a matrix axis declares no values.
	ErrEmptyAxis = zerr.New("matrix axis has no values")

	// ErrDuplicateAxisValue is returned when a matrix axis lists the same value twice.
	ErrDuplicateAxisValue = zerr.New("duplicate matrix axis value")

	// ErrDuplicateCombination is returned when matrix expansion yields the same combination twice.
	ErrDuplicateCombination = zerr.New("duplicate matrix combination")

	// ErrUnknownReference is returned when an expression references an undeclared value.
	ErrUnknownReference = zerr.New("unknown expression reference")

	// ErrNotTriggered is returned when a workflow does not declare the dispatched event.
	ErrNotTriggered = zerr.New("workflow is not triggered by event")

	// ErrGroupNotFound is returned when a requested job group is not declared in the workflow.
	ErrGroupNotFound = zerr.New("job group not found")

	// ErrInvalidWorkflow is returned when validation reports at least one error finding.
	ErrInvalidWorkflow = zerr.New("invalid workflow")

	// ErrNoRunner is returned when no runner serves the label a job asks for.
	ErrNoRunner = zerr.New("no runner serves label")

	// ErrUnknownAction is returned when a step uses an action that is not available.
	ErrUnknownAction = zerr.New("unknown action")

	// ErrStepFailed is returned when a step command exits unsuccessfully.
	ErrStepFailed = zerr.New("step failed")

	// ErrJobTimeout is returned when a job exceeds its timeout.
	ErrJobTimeout = zerr.New("job timed out")

	// ErrJobCancelled is returned when a job is cancelled before it completes.
	ErrJobCancelled = zerr.New("job cancelled")

	// ErrRunFailed is returned when at least one job of a run did not succeed.
	ErrRunFailed = zerr.New("workflow run failed")

	// ErrToolNotFound is returned when no installed tool satisfies a requested version.
	ErrToolNotFound = zerr.New("tool not found")

	// ErrUnsupportedTool is returned when a setup action targets a tool with no known layout.
	ErrUnsupportedTool = zerr.New("unsupported tool")

	// ErrUnsupportedShell is returned when a step asks for a shell that cannot be invoked.
	ErrUnsupportedShell = zerr.New("unsupported shell")
)
