// Package dispatcher runs the jobs of an expanded plan.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.trai.ch/matrix/internal/adapters/telemetry" //nolint:depguard // default recorder
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Options configures a single Run.
type Options struct {
	// Parallelism bounds the number of jobs running at once. Zero means runtime.NumCPU().
	Parallelism int
	// AnyRunner runs jobs whatever label they ask for.
	AnyRunner bool
	// KeepWorkspace leaves job workspaces on disk after the run.
	KeepWorkspace bool
	// SourceDir is the tree checkout copies into each workspace.
	SourceDir string
	// Runner is the host jobs are matched against. The zero value means domain.HostRunner().
	Runner domain.Runner
	// Renderer receives progress. Nil discards it.
	Renderer ports.Renderer
	// Telemetry records jobs and steps. Nil records nothing.
	Telemetry ports.Telemetry
}

func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.NumCPU()
	}
	if o.Runner.OS == "" {
		o.Runner = domain.HostRunner()
	}
	if o.Renderer == nil {
		o.Renderer = discardRenderer{}
	}
	if o.Telemetry == nil {
		o.Telemetry = telemetry.NewNoOp()
	}
	return o
}

// Dispatcher executes plans. Jobs run concurrently, each in its own
// workspace, while the steps of a job run one after another.
type Dispatcher struct {
	executor   ports.Executor
	actions    ports.ActionRegistry
	workspaces ports.WorkspaceProvider
	logger     ports.Logger

	mu        sync.RWMutex
	jobStatus map[string]domain.Status
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	executor ports.Executor,
	actions ports.ActionRegistry,
	workspaces ports.WorkspaceProvider,
	logger ports.Logger,
) *Dispatcher {
	return &Dispatcher{
		executor:   executor,
		actions:    actions,
		workspaces: workspaces,
		logger:     logger,
		jobStatus:  make(map[string]domain.Status),
	}
}

// Status returns the current status of the job with the given id.
func (d *Dispatcher) Status(jobID string) domain.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.jobStatus[jobID]
}

func (d *Dispatcher) updateStatus(jobID string, status domain.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobStatus[jobID] = status
}

// group holds the scheduling state shared by the jobs of one job group.
type group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	slots  *semaphore.Weighted
}

// Run dispatches every job of plan and waits for all of them.
//
// Job failures are reported in the result and never returned as an error.
// A failing job cancels its siblings only when its group opted into
// fail-fast. Run returns an error only when ctx is cancelled, together with
// the partial result.
func (d *Dispatcher) Run(ctx context.Context, plan *domain.Plan, opts Options) (*domain.RunResult, error) {
	opts = opts.withDefaults()

	for i := range plan.Jobs {
		d.updateStatus(plan.Jobs[i].ID, domain.StatusPending)
	}
	opts.Renderer.OnPlan(plan)

	result := &domain.RunResult{
		Workflow: plan.Workflow,
		Event:    plan.Event,
		Jobs:     make([]domain.JobResult, len(plan.Jobs)),
		Started:  time.Now(),
	}

	groups := make(map[string]*group)
	for i := range plan.Jobs {
		job := &plan.Jobs[i]
		if _, ok := groups[job.Group]; ok {
			continue
		}
		gctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)
		g := &group{ctx: gctx, cancel: cancel}
		if job.MaxParallel > 0 {
			g.slots = semaphore.NewWeighted(int64(job.MaxParallel))
		}
		groups[job.Group] = g
	}

	slots := semaphore.NewWeighted(int64(opts.Parallelism))
	var eg errgroup.Group
	for i := range plan.Jobs {
		job := &plan.Jobs[i]
		g := groups[job.Group]
		eg.Go(func() error {
			res := d.schedule(g, slots, job, opts)
			result.Jobs[i] = res

			if res.Status == domain.StatusFailed && job.FailFast {
				d.logger.Debug(fmt.Sprintf("fail-fast: cancelling group %s after %s failed", job.Group, job.Name))
				g.cancel(domain.ErrJobCancelled)
			}
			return nil
		})
	}
	_ = eg.Wait()

	result.Finished = time.Now()
	opts.Renderer.OnRunComplete(result)

	if err := ctx.Err(); err != nil {
		return result, zerr.Wrap(err, "run cancelled")
	}
	return result, nil
}

// schedule waits for a group slot and a run slot, then runs job.
func (d *Dispatcher) schedule(g *group, slots *semaphore.Weighted, job *domain.Job, opts Options) domain.JobResult {
	if g.slots != nil {
		if err := g.slots.Acquire(g.ctx, 1); err != nil {
			return d.cancelled(job, opts)
		}
		defer g.slots.Release(1)
	}
	if err := slots.Acquire(g.ctx, 1); err != nil {
		return d.cancelled(job, opts)
	}
	defer slots.Release(1)

	if g.ctx.Err() != nil {
		return d.cancelled(job, opts)
	}
	return d.runJob(g.ctx, job, opts)
}

// cancelled reports a job that never started.
func (d *Dispatcher) cancelled(job *domain.Job, opts Options) domain.JobResult {
	now := time.Now()
	res := newJobResult(job, now)
	res.Finished = now
	res.Status = domain.StatusCancelled
	res.Err = zerr.With(domain.ErrJobCancelled, "job", job.Name)
	for _, step := range job.Steps {
		res.Steps = append(res.Steps, domain.StepResult{Name: step.DisplayName(), Status: domain.StatusSkipped})
	}

	d.updateStatus(job.ID, domain.StatusCancelled)
	opts.Renderer.OnJobComplete(res)
	return res
}

func newJobResult(job *domain.Job, started time.Time) domain.JobResult {
	return domain.JobResult{
		JobID:       job.ID,
		Name:        job.Name,
		Group:       job.Group,
		RunsOn:      job.RunsOn,
		Combination: job.Combination,
		Started:     started,
	}
}

func (d *Dispatcher) runJob(ctx context.Context, job *domain.Job, opts Options) domain.JobResult {
	res := newJobResult(job, time.Now())
	d.updateStatus(job.ID, domain.StatusRunning)
	opts.Renderer.OnJobStart(job)

	ctx, vertex := opts.Telemetry.Record(ctx, job.ID, job.Name)
	d.logger.Debug(fmt.Sprintf("dispatching job %s (%s)", job.Name, job.ID))

	res.Steps, res.Err = d.execute(ctx, job, opts)
	res.Status = jobStatus(res.Steps, res.Err)
	res.Finished = time.Now()

	vertex.Complete(res.Err)
	d.updateStatus(job.ID, res.Status)
	opts.Renderer.OnJobComplete(res)
	return res
}

func jobStatus(steps []domain.StepResult, err error) domain.Status {
	if err == nil {
		return domain.StatusSucceeded
	}
	for _, s := range steps {
		if s.Status == domain.StatusCancelled {
			return domain.StatusCancelled
		}
	}
	return domain.StatusFailed
}

// execute prepares the workspace of job and runs its steps in order. The
// first step that does not succeed marks every later step skipped.
func (d *Dispatcher) execute(ctx context.Context, job *domain.Job, opts Options) ([]domain.StepResult, error) {
	skipAll := func(from int) []domain.StepResult {
		out := make([]domain.StepResult, 0, len(job.Steps)-from)
		for _, step := range job.Steps[from:] {
			out = append(out, domain.StepResult{Name: step.DisplayName(), Status: domain.StatusSkipped})
		}
		return out
	}

	if !opts.AnyRunner && !opts.Runner.Serves(job.RunsOn) {
		err := zerr.With(zerr.With(domain.ErrNoRunner, "label", job.RunsOn), "os", opts.Runner.OS)
		return skipAll(0), err
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, job.Timeout, domain.ErrJobTimeout)
		defer cancel()
	}

	ws, err := d.workspaces.Create(job.ID)
	if err != nil {
		return skipAll(0), zerr.Wrap(err, "failed to create workspace")
	}
	defer d.cleanup(job, ws, opts)

	jc := domain.NewJobContext(job, ws, opts.SourceDir)
	out := opts.Renderer.JobOutput(job)

	steps := make([]domain.StepResult, 0, len(job.Steps))
	for i := range job.Steps {
		sr := d.runStep(ctx, jc, i, out, opts)
		opts.Renderer.OnStepComplete(job, sr)
		steps = append(steps, sr)

		if sr.Status != domain.StatusSucceeded {
			for _, skipped := range skipAll(i + 1) {
				opts.Renderer.OnStepComplete(job, skipped)
				steps = append(steps, skipped)
			}
			return steps, sr.Err
		}
	}
	return steps, nil
}

func (d *Dispatcher) cleanup(job *domain.Job, ws domain.Workspace, opts Options) {
	if opts.KeepWorkspace {
		d.logger.Info(fmt.Sprintf("kept workspace of %s at %s", job.Name, ws.Root))
		return
	}
	if err := d.workspaces.Remove(ws); err != nil {
		d.logger.Warn(fmt.Sprintf("failed to remove workspace %s: %v", ws.Root, err))
	}
}

func (d *Dispatcher) runStep(ctx context.Context, jc *domain.JobContext, i int, out io.Writer, opts Options) domain.StepResult {
	step := jc.Job.Steps[i]
	sr := domain.StepResult{Name: step.DisplayName(), Started: time.Now()}
	opts.Renderer.OnStepStart(jc.Job, step)

	sctx, vertex := opts.Telemetry.Record(ctx, jc.Job.ID+"/"+strconv.Itoa(i), sr.Name)
	err := d.dispatchStep(sctx, jc, step, out)
	vertex.Complete(err)
	sr.Finished = time.Now()

	switch {
	case err == nil:
		sr.Status = domain.StatusSucceeded
	case ctx.Err() != nil:
		cause := context.Cause(ctx)
		if errors.Is(cause, domain.ErrJobTimeout) {
			sr.Status = domain.StatusFailed
			sr.Err = zerr.With(zerr.With(domain.ErrJobTimeout, "timeout", jc.Job.Timeout.String()), "step", sr.Name)
		} else {
			sr.Status = domain.StatusCancelled
			sr.Err = zerr.With(domain.ErrJobCancelled, "step", sr.Name)
		}
	default:
		sr.Status = domain.StatusFailed
		if sig, ok := metadata[string](err, "signal"); ok {
			sr.Signal = sig
		} else {
			sr.ExitCode = exitCode(err)
		}
		sr.Err = zerr.With(zerr.Wrap(err, domain.ErrStepFailed.Error()), "step", sr.Name)
	}
	return sr
}

func (d *Dispatcher) dispatchStep(ctx context.Context, jc *domain.JobContext, step domain.Step, out io.Writer) error {
	if step.Kind() == domain.StepKindRun {
		return d.executor.Execute(ctx, jc.Command(step), out, out)
	}

	action, err := d.actions.Lookup(step.Uses)
	if err != nil {
		return err
	}
	return action.Run(ctx, jc, step, out)
}

// metadata returns the first value stored under key anywhere in the chain of err.
func metadata[T any](err error, key string) (T, bool) {
	for err != nil {
		if zErr, ok := err.(*zerr.Error); ok {
			if v, ok := zErr.Metadata()[key].(T); ok {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	var zero T
	return zero, false
}

// exitCode extracts the exit status of a failed command. Failures that are
// not process exits report 1.
func exitCode(err error) int {
	if code, ok := metadata[int](err, "exit_code"); ok && code > 0 {
		return code
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

type discardRenderer struct{}

func (discardRenderer) OnPlan(*domain.Plan) {}

func (discardRenderer) OnJobStart(*domain.Job) {}

func (discardRenderer) OnStepStart(*domain.Job, domain.Step) {}

func (discardRenderer) JobOutput(*domain.Job) io.Writer { return io.Discard }

func (discardRenderer) OnStepComplete(*domain.Job, domain.StepResult) {}

func (discardRenderer) OnJobComplete(domain.JobResult) {}

func (discardRenderer) OnRunComplete(*domain.RunResult) {}
