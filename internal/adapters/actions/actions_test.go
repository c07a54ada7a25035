package actions_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/matrix/internal/adapters/actions"
	"go.trai.ch/matrix/internal/adapters/fs"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newJobContext(t *testing.T, source string) *domain.JobContext {
	t.Helper()
	root := t.TempDir()
	ws := domain.Workspace{
		Root:    root,
		Workdir: filepath.Join(root, "work"),
		ToolDir: filepath.Join(root, "tools"),
	}
	require.NoError(t, os.MkdirAll(ws.Workdir, 0o750))
	return domain.NewJobContext(&domain.Job{ID: "tests-1", Name: "tests"}, ws, source)
}

func newRegistry(t *testing.T, locator *mocks.MockToolLocator) *actions.Registry {
	t.Helper()
	return actions.NewRegistry(
		actions.NewCheckout(fs.NewCopier(fs.NewWalker())),
		actions.NewSetup(locator),
	)
}

func TestRegistry_Lookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := newRegistry(t, mocks.NewMockToolLocator(ctrl))

	for _, uses := range []string{"actions/checkout@v2", "actions/checkout", "actions/setup-python@v2", "actions/setup-node"} {
		a, err := reg.Lookup(uses)
		require.NoError(t, err, uses)
		assert.NotNil(t, a, uses)
	}

	for _, uses := range []string{"actions/cache@v4", "actions/setup-", "docker://alpine"} {
		_, err := reg.Lookup(uses)
		require.Error(t, err, uses)
		assert.ErrorContains(t, err, domain.ErrUnknownAction.Error())
	}
}

func TestCheckout_CopiesSourceTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "tox.ini"), []byte("[tox]\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "src", "pkg"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "src", "pkg", "__init__.py"), nil, 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(src, actions.StateDir), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, actions.StateDir, "report.json"), []byte("{}"), 0o600))

	ctrl := gomock.NewController(t)
	reg := newRegistry(t, mocks.NewMockToolLocator(ctrl))
	checkout, err := reg.Lookup("actions/checkout@v2")
	require.NoError(t, err)

	jc := newJobContext(t, src)
	var out bytes.Buffer
	require.NoError(t, checkout.Run(context.Background(), jc, domain.Step{Uses: "actions/checkout@v2"}, &out))

	assert.FileExists(t, filepath.Join(jc.Workspace.Workdir, "tox.ini"))
	assert.FileExists(t, filepath.Join(jc.Workspace.Workdir, "src", "pkg", "__init__.py"))
	assert.NoFileExists(t, filepath.Join(jc.Workspace.Workdir, actions.StateDir, "report.json"))
	assert.Contains(t, out.String(), "Copied 2 file(s)")
}

func TestCheckout_RequiresSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	checkout, err := newRegistry(t, mocks.NewMockToolLocator(ctrl)).Lookup("actions/checkout")
	require.NoError(t, err)

	err = checkout.Run(context.Background(), newJobContext(t, ""), domain.Step{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestSetup_ProvisionsRuntime(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	prefix := t.TempDir()
	bin := filepath.Join(prefix, "bin", "python3.6")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0o750))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o700)) //nolint:gosec // test fixture

	ctrl := gomock.NewController(t)
	locator := mocks.NewMockToolLocator(ctrl)
	locator.EXPECT().
		Locate(gomock.Any(), "python", "3.6").
		Return(domain.Tool{Name: "python", Version: "3.6.15", Path: bin, Aliases: []string{"python", "python3"}}, nil)

	setup, err := newRegistry(t, locator).Lookup("actions/setup-python@v2")
	require.NoError(t, err)

	jc := newJobContext(t, "")
	step := domain.Step{Uses: "actions/setup-python@v2", With: map[string]string{"python-version": "3.6"}}
	var out bytes.Buffer
	require.NoError(t, setup.Run(context.Background(), jc, step, &out))

	for _, alias := range []string{"python", "python3"} {
		target, err := os.Readlink(filepath.Join(jc.Workspace.ToolDir, alias))
		require.NoError(t, err)
		assert.Equal(t, bin, target)
	}

	assert.Equal(t, []string{jc.Workspace.ToolDir, filepath.Dir(bin)}, jc.Path())
	assert.Contains(t, jc.ToolEnv(), "pythonLocation="+prefix)
	assert.Contains(t, out.String(), "Using python 3.6.15")
}

func TestSetup_GenericVersionInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	locator := mocks.NewMockToolLocator(ctrl)
	locator.EXPECT().
		Locate(gomock.Any(), "node", "20").
		Return(domain.Tool{Name: "node", Version: "20.11.0", Path: "/usr/bin/node"}, nil)

	setup, err := newRegistry(t, locator).Lookup("actions/setup-node")
	require.NoError(t, err)

	jc := newJobContext(t, "")
	step := domain.Step{Uses: "actions/setup-node", With: map[string]string{"version": "20"}}
	require.NoError(t, setup.Run(context.Background(), jc, step, &bytes.Buffer{}))
	assert.Contains(t, jc.ToolEnv(), "nodeLocation=/usr")
}

func TestSetup_ToolNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	locator := mocks.NewMockToolLocator(ctrl)
	locator.EXPECT().
		Locate(gomock.Any(), "python", "2.7").
		Return(domain.Tool{}, domain.ErrToolNotFound)

	setup, err := newRegistry(t, locator).Lookup("actions/setup-python")
	require.NoError(t, err)

	jc := newJobContext(t, "")
	step := domain.Step{Uses: "actions/setup-python", With: map[string]string{"python-version": "2.7"}}
	err = setup.Run(context.Background(), jc, step, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrToolNotFound)
	assert.Empty(t, jc.Path())
}
