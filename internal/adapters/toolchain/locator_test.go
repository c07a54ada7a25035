package toolchain_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/matrix/internal/adapters/toolchain"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeBin writes an executable that prints output and puts its directory on PATH.
func fakeBin(t *testing.T, dir, name, output string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho '" + output + "'\n"
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	return path
}

func newLocator(t *testing.T) *toolchain.Locator {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return toolchain.NewLocator(log)
}

func TestLocator_Locate_PrefersVersionedBinary(t *testing.T) {
	dir := t.TempDir()
	fakeBin(t, dir, "python3", "Python 3.12.1")
	want := fakeBin(t, dir, "python3.6", "Python 3.6.15")
	t.Setenv("PATH", dir)

	tool, err := newLocator(t).Locate(context.Background(), "python", "3.6")
	require.NoError(t, err)
	assert.Equal(t, "python", tool.Name)
	assert.Equal(t, "3.6.15", tool.Version)
	assert.Equal(t, want, tool.Path)
	assert.Equal(t, []string{"python", "python3"}, tool.Aliases)
}

func TestLocator_Locate_FallsBackToGenericBinary(t *testing.T) {
	dir := t.TempDir()
	want := fakeBin(t, dir, "python3", "Python 3.12.1")
	t.Setenv("PATH", dir)

	tool, err := newLocator(t).Locate(context.Background(), "python", "3.12")
	require.NoError(t, err)
	assert.Equal(t, want, tool.Path)
}

func TestLocator_Locate_VersionNotInstalled(t *testing.T) {
	dir := t.TempDir()
	fakeBin(t, dir, "python3", "Python 3.12.1")
	t.Setenv("PATH", dir)

	_, err := newLocator(t).Locate(context.Background(), "python", "3.6")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrToolNotFound.Error())
}

func TestLocator_Locate_UnsupportedTool(t *testing.T) {
	_, err := newLocator(t).Locate(context.Background(), "haskell", "9.4")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnsupportedTool.Error())
}

func TestLocator_Locate_Node(t *testing.T) {
	dir := t.TempDir()
	fakeBin(t, dir, "node", "v20.11.0")
	t.Setenv("PATH", dir)

	tool, err := newLocator(t).Locate(context.Background(), "node", "20.x")
	require.NoError(t, err)
	assert.Equal(t, "20.11.0", tool.Version)
}

func TestLocator_Locate_Memoized(t *testing.T) {
	dir := t.TempDir()
	fakeBin(t, dir, "python3", "Python 3.12.1")
	t.Setenv("PATH", dir)

	locator := newLocator(t)

	var wg sync.WaitGroup
	results := make([]domain.Tool, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tool, err := locator.Locate(context.Background(), "python", "3")
			assert.NoError(t, err)
			results[i] = tool
		}()
	}
	wg.Wait()

	// The binary disappearing must not matter once the lookup is cached.
	require.NoError(t, os.Remove(filepath.Join(dir, "python3")))
	tool, err := locator.Locate(context.Background(), "python", "3")
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, tool, r)
	}
}

func TestLocator_Locate_CancelledCallerDoesNotFailOthers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "python3.6")
	script := "#!/bin/sh\nsleep 0.5\necho 'Python 3.6.15'\n"
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	t.Setenv("PATH", dir)

	locator := newLocator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := locator.Locate(ctx, "python", "3.6")
		cancelledErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	time.AfterFunc(50*time.Millisecond, cancel)

	tool, err := locator.Locate(context.Background(), "python", "3.6")
	require.NoError(t, err)
	assert.Equal(t, "3.6.15", tool.Version)

	err = <-cancelledErr
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), domain.ErrToolNotFound.Error())
}

func TestMatchVersion(t *testing.T) {
	tests := []struct {
		want, have string
		ok         bool
	}{
		{want: "3.6", have: "3.6.15", ok: true},
		{want: "3.6", have: "3.60.1", ok: false},
		{want: "3.6.15", have: "3.6", ok: false},
		{want: "3", have: "3.12.1", ok: true},
		{want: "3.x", have: "3.12.1", ok: true},
		{want: "v20", have: "20.11.0", ok: true},
		{want: "", have: "1.0", ok: true},
		{want: "latest", have: "1.0", ok: true},
		{want: "3.10", have: "3.1.0", ok: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, toolchain.MatchVersion(tt.want, tt.have), "%s vs %s", tt.want, tt.have)
	}
}
