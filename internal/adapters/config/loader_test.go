package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/matrix/internal/adapters/config"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(log)
}

func TestLoader_Load_ReferenceWorkflow(t *testing.T) {
	wf, err := newLoader(t).Load(filepath.Join("testdata", "workflow.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "CI", wf.Name)
	assert.Equal(t, []string{"push", "pull_request"}, wf.Triggers)
	assert.Len(t, wf.Fingerprint, 16)

	require.Len(t, wf.Groups, 2)
	tests, other := wf.Groups[0], wf.Groups[1]

	assert.Equal(t, "tests", tests.ID)
	assert.Equal(t, "${{ matrix.os }}", tests.RunsOn)
	assert.Equal(t, []domain.Axis{
		{Name: "python-version", Values: []string{"3.6"}},
		{Name: "os", Values: []string{"ubuntu-latest", "windows-latest", "macos-latest"}},
	}, tests.Strategy.Matrix.Axes)
	require.Len(t, tests.Steps, 4)
	assert.Equal(t, "actions/checkout@v2", tests.Steps[0].Uses)
	assert.Equal(t, "${{ matrix.python-version }}", tests.Steps[1].With["python-version"])
	assert.Equal(t, "tox", tests.Steps[3].Run)

	assert.Equal(t, "other", other.ID)
	assert.Equal(t, map[string]string{"TOXENV": "${{ matrix.toxenv }}"}, other.Env)

	plan, err := domain.ExpandWorkflow(wf, "push")
	require.NoError(t, err)
	assert.Len(t, plan.Jobs, 5)
	assert.Empty(t, domain.Validate(wf))
}

func TestParse_VersionScalarsKeptVerbatim(t *testing.T) {
	wf, err := config.Parse([]byte(`
on: push
jobs:
  tests:
    strategy:
      matrix:
        python-version: [3.10, "3.9", 3.12.1]
    steps:
      - run: tox
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"push"}, wf.Triggers)
	assert.Equal(t, []string{"3.10", "3.9", "3.12.1"}, wf.Groups[0].Strategy.Matrix.Axes[0].Values)
}

func TestParse_JobsKeepDeclarationOrder(t *testing.T) {
	wf, err := config.Parse([]byte(`
on: {push: {branches: [main]}, workflow_dispatch: {}}
jobs:
  zeta: {steps: [{run: "true"}]}
  alpha: {steps: [{run: "true"}]}
  mid: {steps: [{run: "true"}]}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"push", "workflow_dispatch"}, wf.Triggers)

	ids := make([]string, 0, len(wf.Groups))
	for _, g := range wf.Groups {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
}

func TestParse_StrategyAndIncludeExclude(t *testing.T) {
	wf, err := config.Parse([]byte(`
on: push
env:
  SHARED: workflow
  MODE: workflow
jobs:
  build:
    name: build ${{ matrix.os }}
    timeout-minutes: 15
    env:
      MODE: job
    strategy:
      fail-fast: true
      max-parallel: 2
      matrix:
        os: [linux, windows]
        include:
          - os: windows
            shell: pwsh
        exclude:
          - os: linux
    steps:
      - run: make
        shell: bash
        working-directory: src
`))
	require.NoError(t, err)

	g := wf.Groups[0]
	assert.Equal(t, "build ${{ matrix.os }}", g.Name)
	assert.Equal(t, 15*time.Minute, g.Timeout)
	assert.True(t, g.Strategy.FailFast)
	assert.Equal(t, 2, g.Strategy.MaxParallel)
	assert.Equal(t, map[string]string{"SHARED": "workflow", "MODE": "job"}, g.Env)
	assert.Equal(t, []domain.Combination{{{Key: "os", Value: "windows"}, {Key: "shell", Value: "pwsh"}}}, g.Strategy.Matrix.Include)
	assert.Equal(t, []domain.Combination{{{Key: "os", Value: "linux"}}}, g.Strategy.Matrix.Exclude)
	assert.Equal(t, "bash", g.Steps[0].Shell)
	assert.Equal(t, "src", g.Steps[0].WorkingDirectory)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no jobs", content: "on: push\n", want: domain.ErrInvalidWorkflow.Error()},
		{name: "jobs not a mapping", content: "on: push\njobs: [a, b]\n", want: "jobs must be a mapping"},
		{
			name:    "nested axis value",
			content: "on: push\njobs:\n  t:\n    strategy:\n      matrix:\n        os: [{name: linux}]\n",
			want:    "matrix values must be scalars",
		},
		{name: "malformed yaml", content: "on: [push\n", want: "failed to parse workflow file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := newLoader(t).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read workflow file")
}

func TestLoader_Load_FingerprintTracksContent(t *testing.T) {
	loader := newLoader(t)
	a, err := loader.Load(writeWorkflow(t, "on: push\njobs:\n  a: {steps: [{run: tox}]}\n"))
	require.NoError(t, err)
	b, err := loader.Load(writeWorkflow(t, "on: push\njobs:\n  a: {steps: [{run: tox -e docs}]}\n"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
}
