// Package app implements the application layer for matrix.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/matrix/internal/engine/dispatcher"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	dispatcher   *dispatcher.Dispatcher
	store        ports.ReportStore
	renderers    ports.RendererFactory
	journals     ports.TelemetryFactory
	logger       ports.Logger
	newRunID     func() string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	disp *dispatcher.Dispatcher,
	store ports.ReportStore,
	renderers ports.RendererFactory,
	journals ports.TelemetryFactory,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		dispatcher:   disp,
		store:        store,
		renderers:    renderers,
		journals:     journals,
		logger:       logger,
		newRunID:     uuid.NewString,
	}
}

// WithRunID replaces the run id generator. Used for testing.
func (a *App) WithRunID(fn func() string) *App {
	a.newRunID = fn
	return a
}

// RunOptions configures a workflow run.
type RunOptions struct {
	WorkflowPath string
	Event        string
	// Groups restricts the run to these job groups. Empty means all.
	Groups        []string
	Parallelism   int
	AnyRunner     bool
	KeepWorkspace bool
	// SourceDir is copied into job workspaces by checkout. Empty means the working directory.
	SourceDir string
	// ReportPath receives the JSON run report when set.
	ReportPath string
	// JournalPath receives the progress journal of jobs and steps when set.
	JournalPath string
	// Output is the renderer mode: "auto", "linear" or "plain".
	Output string
	Stdout io.Writer
	Stderr io.Writer
}

// Plan loads the workflow and expands the jobs event dispatches, without running them.
func (a *App) Plan(path, event string, groups []string) (*domain.Plan, error) {
	wf, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workflow")
	}
	return expand(wf, event, groups)
}

func expand(wf *domain.Workflow, event string, groups []string) (*domain.Plan, error) {
	plan, err := domain.ExpandWorkflow(wf, event)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to expand workflow")
	}
	return plan.Filter(groups...)
}

// Validate loads the workflow and checks it for structural problems.
func (a *App) Validate(path string) (domain.Findings, error) {
	wf, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workflow")
	}
	return domain.Validate(wf), nil
}

// Report reads a run report written by an earlier run.
func (a *App) Report(path string) (*domain.RunReport, error) {
	return a.store.Read(path)
}

// Run validates the workflow, dispatches the jobs of opts.Event and writes
// the run report. It returns an error wrapping domain.ErrRunFailed when any
// job did not succeed.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.RunResult, error) {
	wf, err := a.configLoader.Load(opts.WorkflowPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workflow")
	}

	findings := domain.Validate(wf)
	for _, f := range findings {
		a.logger.Warn(f.String())
	}
	if findings.HasErrors() {
		return nil, zerr.With(domain.ErrInvalidWorkflow, "errors", len(findings.Errors()))
	}

	plan, err := expand(wf, opts.Event, opts.Groups)
	if err != nil {
		return nil, err
	}

	sourceDir, err := resolveSourceDir(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	telemetry, err := a.journals.Open(opts.JournalPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := telemetry.Close(); err != nil {
			a.logger.Error(zerr.With(zerr.Wrap(err, "failed to close journal"), "path", opts.JournalPath))
		}
	}()

	runID := a.newRunID()
	a.logger.Debug(fmt.Sprintf("run %s: %d job(s) from %s", runID, len(plan.Jobs), opts.WorkflowPath))

	result, runErr := a.dispatcher.Run(ctx, plan, dispatcher.Options{
		Parallelism:   opts.Parallelism,
		AnyRunner:     opts.AnyRunner,
		KeepWorkspace: opts.KeepWorkspace,
		SourceDir:     sourceDir,
		Renderer:      a.renderers.New(opts.Stdout, opts.Stderr, opts.Output),
		Telemetry:     telemetry,
	})

	if opts.ReportPath != "" && result != nil {
		report := domain.NewRunReport(runID, plan.Fingerprint, result)
		if err := a.store.Write(opts.ReportPath, &report); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to write run report"))
		}
	}

	if runErr != nil {
		return result, runErr
	}
	return result, result.Err()
}

func resolveSourceDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve source directory"), "path", dir)
	}
	return abs, nil
}
