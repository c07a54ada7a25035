package dispatcher_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports/mocks"
	"go.trai.ch/matrix/internal/engine/dispatcher"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	executor   *mocks.MockExecutor
	actions    *mocks.MockActionRegistry
	workspaces *mocks.MockWorkspaceProvider
	d          *dispatcher.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	f := &fixture{
		executor:   mocks.NewMockExecutor(ctrl),
		actions:    mocks.NewMockActionRegistry(ctrl),
		workspaces: mocks.NewMockWorkspaceProvider(ctrl),
	}
	f.d = dispatcher.NewDispatcher(f.executor, f.actions, f.workspaces, logger)
	return f
}

// expectWorkspaces makes every job get a workspace that is removed afterwards.
func (f *fixture) expectWorkspaces() {
	f.workspaces.EXPECT().Create(gomock.Any()).DoAndReturn(func(id string) (domain.Workspace, error) {
		return domain.Workspace{Root: "/ws/" + id, Workdir: "/ws/" + id + "/work", ToolDir: "/ws/" + id + "/tools"}, nil
	}).AnyTimes()
	f.workspaces.EXPECT().Remove(gomock.Any()).Return(nil).AnyTimes()
}

func newJob(group, name, runsOn string, env map[string]string, steps ...domain.Step) domain.Job {
	return domain.Job{
		ID:     group + "-" + name,
		Group:  group,
		Name:   name,
		RunsOn: runsOn,
		Env:    env,
		Steps:  steps,
	}
}

var (
	installStep = domain.Step{Name: "Install tox", Run: "python -m pip install --upgrade pip tox"}
	toxStep     = domain.Step{Name: "Run tox", Run: "tox"}
)

// referencePlan is the five job push plan of a tox project.
func referencePlan() *domain.Plan {
	return &domain.Plan{
		Workflow: "CI",
		Event:    "push",
		Jobs: []domain.Job{
			newJob("tests", "tests (3.6, ubuntu-latest)", "ubuntu-latest", nil, installStep, toxStep),
			newJob("tests", "tests (3.6, windows-latest)", "windows-latest", nil, installStep, toxStep),
			newJob("tests", "tests (3.6, macos-latest)", "macos-latest", nil, installStep, toxStep),
			newJob("other", "other (3.6, build)", "ubuntu-latest", map[string]string{"TOXENV": "build"}, installStep, toxStep),
			newJob("other", "other (3.6, check)", "ubuntu-latest", map[string]string{"TOXENV": "check"}, installStep, toxStep),
		},
	}
}

func exitError(code int) error {
	return zerr.With(zerr.Wrap(errors.New("exit status"), "command failed"), "exit_code", code)
}

func TestDispatcher_Run_OneJobFailsOthersIndependent(t *testing.T) {
	f := newFixture(t)
	f.expectWorkspaces()

	plan := referencePlan()
	var mu sync.Mutex
	scripts := make(map[string][]string)

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			mu.Lock()
			scripts[cmd.Dir] = append(scripts[cmd.Dir], cmd.Script)
			mu.Unlock()
			if cmd.Dir == "/ws/tests-tests (3.6, windows-latest)/work" && cmd.Script == "tox" {
				return exitError(1)
			}
			return nil
		}).Times(10)

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{Parallelism: 3, AnyRunner: true})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 5)

	assert.Equal(t, domain.StatusFailed, result.Status())
	assert.Equal(t, 4, result.Count(domain.StatusSucceeded))
	assert.Equal(t, 1, result.Count(domain.StatusFailed))

	failed := result.Jobs[1]
	assert.Equal(t, "tests (3.6, windows-latest)", failed.Name)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	step, ok := failed.FailedStep()
	require.True(t, ok)
	assert.Equal(t, "Run tox", step.Name)
	assert.Equal(t, 1, step.ExitCode)
	assert.ErrorContains(t, failed.Err, domain.ErrStepFailed.Error())

	for i, j := range result.Jobs {
		if i == 1 {
			continue
		}
		assert.Equal(t, domain.StatusSucceeded, j.Status, j.Name)
		require.Len(t, j.Steps, 2)
	}

	for _, dir := range []string{"/ws/other-other (3.6, build)/work", "/ws/tests-tests (3.6, ubuntu-latest)/work"} {
		assert.Equal(t, []string{installStep.Run, toxStep.Run}, scripts[dir], "steps run in order")
	}

	statuses := f.d.JobStatusMap()
	assert.Len(t, statuses, 5)
	assert.Equal(t, domain.StatusFailed, statuses[plan.Jobs[1].ID])
	assert.Equal(t, domain.StatusSucceeded, f.d.Status(plan.Jobs[0].ID))
	assert.True(t, errors.Is(result.Err(), domain.ErrRunFailed))
}

func TestDispatcher_Run_FailingStepSkipsRemaining(t *testing.T) {
	f := newFixture(t)
	f.expectWorkspaces()

	plan := &domain.Plan{Jobs: []domain.Job{
		newJob("lint", "lint", "", nil, installStep, toxStep, domain.Step{Name: "Upload", Run: "true"}),
	}}

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(exitError(3))

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{})
	require.NoError(t, err)

	job := result.Jobs[0]
	require.Len(t, job.Steps, 3)
	assert.Equal(t, domain.StatusFailed, job.Steps[0].Status)
	assert.Equal(t, 3, job.Steps[0].ExitCode)
	assert.Equal(t, domain.StatusSkipped, job.Steps[1].Status)
	assert.Equal(t, domain.StatusSkipped, job.Steps[2].Status)
}

func TestDispatcher_Run_SignaledStep(t *testing.T) {
	f := newFixture(t)
	f.expectWorkspaces()

	plan := &domain.Plan{Jobs: []domain.Job{newJob("lint", "lint", "", nil, toxStep)}}
	signaled := zerr.With(zerr.Wrap(errors.New("signal: killed"), "command terminated"), "signal", "killed")
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(zerr.Wrap(signaled, "tox"))

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{})
	require.NoError(t, err)

	step := result.Jobs[0].Steps[0]
	assert.Equal(t, domain.StatusFailed, step.Status)
	assert.Equal(t, "killed", step.Signal)
	assert.Zero(t, step.ExitCode)
}

func TestDispatcher_Run_NoRunner(t *testing.T) {
	f := newFixture(t)
	f.workspaces.EXPECT().Create("tests-linux").Return(domain.Workspace{Root: "/ws"}, nil)
	f.workspaces.EXPECT().Remove(domain.Workspace{Root: "/ws"}).Return(nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	plan := &domain.Plan{Jobs: []domain.Job{
		newJob("tests", "linux", "ubuntu-latest", nil, toxStep),
		newJob("tests", "windows", "windows-latest", nil, toxStep),
	}}

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{Runner: domain.NewRunner("linux")})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSucceeded, result.Jobs[0].Status)
	assert.Equal(t, domain.StatusFailed, result.Jobs[1].Status)
	assert.ErrorContains(t, result.Jobs[1].Err, domain.ErrNoRunner.Error())
	assert.Equal(t, domain.StatusSkipped, result.Jobs[1].Steps[0].Status)
}

func TestDispatcher_Run_UsesActions(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	f.expectWorkspaces()

	checkout := mocks.NewMockAction(ctrl)
	setup := mocks.NewMockAction(ctrl)

	steps := []domain.Step{
		{Uses: "actions/checkout@v2"},
		{Uses: "actions/setup-python@v2", With: map[string]string{"python-version": "3.6"}},
		toxStep,
	}
	plan := &domain.Plan{Jobs: []domain.Job{newJob("tests", "tests", "", nil, steps...)}}

	gomock.InOrder(
		f.actions.EXPECT().Lookup("actions/checkout@v2").Return(checkout, nil),
		checkout.EXPECT().Run(gomock.Any(), gomock.Any(), steps[0], gomock.Any()).
			DoAndReturn(func(_ context.Context, jc *domain.JobContext, _ domain.Step, _ io.Writer) error {
				assert.Equal(t, "/src", jc.SourceDir)
				return nil
			}),
		f.actions.EXPECT().Lookup("actions/setup-python@v2").Return(setup, nil),
		setup.EXPECT().Run(gomock.Any(), gomock.Any(), steps[1], gomock.Any()).
			DoAndReturn(func(_ context.Context, jc *domain.JobContext, _ domain.Step, _ io.Writer) error {
				jc.PrependPath("/opt/python/3.6/bin")
				return nil
			}),
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
				assert.Contains(t, cmd.ToolEnv, "PATH=/opt/python/3.6/bin")
				return nil
			}),
	)

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{SourceDir: "/src"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, result.Status())
}

func TestDispatcher_Run_UnknownAction(t *testing.T) {
	f := newFixture(t)
	f.expectWorkspaces()
	f.actions.EXPECT().Lookup("actions/cache@v4").Return(nil, zerr.With(domain.ErrUnknownAction, "action", "actions/cache@v4"))

	plan := &domain.Plan{Jobs: []domain.Job{newJob("tests", "tests", "", nil, domain.Step{Uses: "actions/cache@v4"}, toxStep)}}

	result, err := f.d.Run(context.Background(), plan, dispatcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, result.Jobs[0].Status)
	assert.ErrorContains(t, result.Jobs[0].Err, domain.ErrUnknownAction.Error())
	assert.Equal(t, domain.StatusSkipped, result.Jobs[0].Steps[1].Status)
}

func TestDispatcher_Run_KeepWorkspace(t *testing.T) {
	f := newFixture(t)
	f.workspaces.EXPECT().Create(gomock.Any()).Return(domain.Workspace{Root: "/ws"}, nil)
	f.workspaces.EXPECT().Remove(gomock.Any()).Times(0)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	plan := &domain.Plan{Jobs: []domain.Job{newJob("tests", "tests", "", nil, toxStep)}}
	_, err := f.d.Run(context.Background(), plan, dispatcher.Options{KeepWorkspace: true})
	require.NoError(t, err)
}

func TestDispatcher_Run_RendererEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	f.expectWorkspaces()
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), io.Discard, io.Discard).Return(nil)

	plan := &domain.Plan{Jobs: []domain.Job{newJob("tests", "tests", "", nil, toxStep)}}
	job := &plan.Jobs[0]

	r := mocks.NewMockRenderer(ctrl)
	gomock.InOrder(
		r.EXPECT().OnPlan(plan),
		r.EXPECT().OnJobStart(job),
		r.EXPECT().JobOutput(job).Return(io.Discard),
		r.EXPECT().OnStepStart(job, toxStep),
		r.EXPECT().OnStepComplete(job, gomock.Any()),
		r.EXPECT().OnJobComplete(gomock.Any()),
		r.EXPECT().OnRunComplete(gomock.Any()),
	)

	_, err := f.d.Run(context.Background(), plan, dispatcher.Options{Renderer: r})
	require.NoError(t, err)
}

func TestDispatcher_Run_FailFastCancelsGroup(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		plan := &domain.Plan{Jobs: []domain.Job{
			newJob("tests", "fail", "", map[string]string{"MODE": "fail"}, toxStep),
			newJob("tests", "slow", "", map[string]string{"MODE": "slow"}, toxStep),
			newJob("other", "ok", "", map[string]string{"MODE": "slow"}, toxStep),
		}}
		plan.Jobs[0].FailFast = true
		plan.Jobs[1].FailFast = true

		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, cmd domain.Command, _, _ io.Writer) error {
				if cmd.Env["MODE"] == "fail" {
					time.Sleep(time.Second)
					return exitError(1)
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Minute):
					return nil
				}
			}).Times(3)

		result, err := f.d.Run(context.Background(), plan, dispatcher.Options{Parallelism: 3})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusFailed, result.Jobs[0].Status)
		assert.Equal(t, domain.StatusCancelled, result.Jobs[1].Status)
		assert.ErrorContains(t, result.Jobs[1].Err, domain.ErrJobCancelled.Error())
		assert.Equal(t, domain.StatusSucceeded, result.Jobs[2].Status, "other groups are not cancelled")
	})
}

func TestDispatcher_Run_WithoutFailFastSiblingsContinue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		plan := &domain.Plan{Jobs: []domain.Job{
			newJob("tests", "fail", "", map[string]string{"MODE": "fail"}, toxStep),
			newJob("tests", "slow", "", map[string]string{"MODE": "slow"}, toxStep),
		}}

		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, cmd domain.Command, _, _ io.Writer) error {
				if cmd.Env["MODE"] == "fail" {
					return exitError(1)
				}
				time.Sleep(time.Minute)
				return ctx.Err()
			}).Times(2)

		result, err := f.d.Run(context.Background(), plan, dispatcher.Options{Parallelism: 2})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, result.Jobs[0].Status)
		assert.Equal(t, domain.StatusSucceeded, result.Jobs[1].Status)
	})
}

func TestDispatcher_Run_MaxParallel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		plan := &domain.Plan{}
		for _, name := range []string{"a", "b", "c"} {
			job := newJob("tests", name, "", nil, toxStep)
			job.MaxParallel = 1
			plan.Jobs = append(plan.Jobs, job)
		}
		plan.Jobs = append(plan.Jobs, newJob("other", "d", "", nil, toxStep))

		var running, peak atomic.Int32
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
				if cmd.Dir == "/ws/other-d/work" {
					return nil
				}
				n := running.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(time.Second)
				running.Add(-1)
				return nil
			}).Times(4)

		start := time.Now()
		result, err := f.d.Run(context.Background(), plan, dispatcher.Options{Parallelism: 4})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusSucceeded, result.Status())
		assert.Equal(t, int32(1), peak.Load())
		assert.Equal(t, 3*time.Second, time.Since(start))
	})
}

func TestDispatcher_Run_Parallelism(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		plan := &domain.Plan{}
		for _, name := range []string{"a", "b", "c", "d"} {
			plan.Jobs = append(plan.Jobs, newJob("tests", name, "", nil, toxStep))
		}

		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, io.Writer, io.Writer) error {
				time.Sleep(time.Second)
				return nil
			}).Times(4)

		start := time.Now()
		_, err := f.d.Run(context.Background(), plan, dispatcher.Options{Parallelism: 2})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, time.Since(start))
	})
}

func TestDispatcher_Run_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		job := newJob("tests", "hang", "", nil, toxStep, installStep)
		job.Timeout = 10 * time.Minute
		plan := &domain.Plan{Jobs: []domain.Job{job}}

		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ domain.Command, _, _ io.Writer) error {
				<-ctx.Done()
				return ctx.Err()
			})

		start := time.Now()
		result, err := f.d.Run(context.Background(), plan, dispatcher.Options{})
		require.NoError(t, err)

		assert.Equal(t, 10*time.Minute, time.Since(start))
		assert.Equal(t, domain.StatusFailed, result.Jobs[0].Status)
		assert.ErrorContains(t, result.Jobs[0].Err, domain.ErrJobTimeout.Error())
		assert.Equal(t, domain.StatusSkipped, result.Jobs[0].Steps[1].Status)
	})
}

func TestDispatcher_Run_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectWorkspaces()

		plan := &domain.Plan{Jobs: []domain.Job{
			newJob("tests", "a", "", nil, toxStep),
			newJob("tests", "b", "", nil, toxStep),
		}}

		ctx, cancel := context.WithCancel(context.Background())
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ domain.Command, _, _ io.Writer) error {
				<-ctx.Done()
				return ctx.Err()
			})

		go func() {
			time.Sleep(time.Second)
			cancel()
		}()

		result, err := f.d.Run(ctx, plan, dispatcher.Options{Parallelism: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)

		require.Len(t, result.Jobs, 2)
		assert.Equal(t, domain.StatusCancelled, result.Jobs[0].Status)
		assert.Equal(t, domain.StatusCancelled, result.Jobs[1].Status)
		assert.Equal(t, domain.StatusCancelled, result.Status())
	})
}
