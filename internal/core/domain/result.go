package domain

import (
	"errors"
	"time"

	"go.trai.ch/zerr"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	Status   Status
	ExitCode int
	// Signal names the signal that terminated the step's process, if any.
	Signal   string
	Started  time.Time
	Finished time.Time
	Err      error
}

// Duration returns how long the step ran.
func (r StepResult) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// JobResult is the outcome of one job and its steps.
type JobResult struct {
	JobID       string
	Name        string
	Group       string
	RunsOn      string
	Combination Combination
	Status      Status
	Steps       []StepResult
	Started     time.Time
	Finished    time.Time
	Err         error
}

// Duration returns how long the job ran.
func (r JobResult) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// FailedStep returns the step that failed the job, if any.
func (r JobResult) FailedStep() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return StepResult{}, false
}

// RunResult aggregates the job results of one dispatched plan.
type RunResult struct {
	Workflow string
	Event    string
	Jobs     []JobResult
	Started  time.Time
	Finished time.Time
}

// Status is succeeded iff every job succeeded. Otherwise it is failed when
// any job failed, and cancelled when jobs were only cancelled.
func (r *RunResult) Status() Status {
	status := StatusSucceeded
	for _, j := range r.Jobs {
		switch j.Status {
		case StatusSucceeded:
		case StatusCancelled:
			if status == StatusSucceeded {
				status = StatusCancelled
			}
		default:
			return StatusFailed
		}
	}
	return status
}

// Count returns the number of jobs with the given status.
func (r *RunResult) Count(status Status) int {
	n := 0
	for _, j := range r.Jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Err returns nil when the run succeeded, and otherwise ErrRunFailed
// joined with the error of every job that did not succeed.
func (r *RunResult) Err() error {
	if r.Status() == StatusSucceeded {
		return nil
	}
	errs := []error{ErrRunFailed}
	for _, j := range r.Jobs {
		if j.Status == StatusSucceeded {
			continue
		}
		err := j.Err
		if err == nil {
			err = zerr.New(string(j.Status))
		}
		errs = append(errs, zerr.With(zerr.Wrap(err, "job did not succeed"), "job", j.Name))
	}
	return errors.Join(errs...)
}
