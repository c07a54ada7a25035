// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
)

// invocations maps a shell name to the argument vector that runs a script with it.
var invocations = map[string]func(script string) []string{
	"sh": func(s string) []string { return []string{"sh", "-e", "-c", s} },
	"bash": func(s string) []string {
		return []string{"bash", "--noprofile", "--norc", "-eo", "pipefail", "-c", s}
	},
	"pwsh":       func(s string) []string { return []string{"pwsh", "-command", s} },
	"powershell": func(s string) []string { return []string{"powershell", "-command", s} },
	"cmd":        func(s string) []string { return []string{"cmd", "/D", "/E:ON", "/V:OFF", "/S", "/C", s} },
	"python":     func(s string) []string { return []string{"python", "-c", s} },
}

// waitDelay bounds how long Execute waits for output pipes to close after the
// shell has been killed.
const waitDelay = 5 * time.Second

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
	goos   string
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
		goos:   runtime.GOOS,
	}
}

// Execute runs the script of cmd with the requested shell.
// It merges environments with the following priority (low to high):
// 1. os.Environ() (host)
// 2. cmd.ToolEnv (provisioned by setup actions, PATH is prepended)
// 3. cmd.Env (group and step env)
//
// When ctx carries a vertex, output is mirrored to it.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if strings.TrimSpace(cmd.Script) == "" {
		return nil
	}

	cmdEnv := resolveEnvironment(os.Environ(), cmd.ToolEnv, cmd.Env)

	argv, err := e.argv(cmd.Shell, cmd.Script, cmdEnv)
	if err != nil {
		return err
	}
	name := argv[0]

	// Resolve the executable using the job's PATH, not the host's.
	executable := name
	if lp, err := lookPath(name, cmdEnv); err == nil {
		executable = lp
	}

	c := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user provided script
	if len(c.Args) > 0 {
		c.Args[0] = name
	}
	c.Dir = cmd.Dir
	c.Env = cmdEnv
	c.WaitDelay = waitDelay
	configureProcess(c)
	c.Stdout = stdout
	c.Stderr = stderr

	if v, ok := ports.VertexFromContext(ctx); ok {
		c.Stdout = io.MultiWriter(stdout, v.Stdout())
		c.Stderr = io.MultiWriter(stderr, v.Stderr())
	}

	e.logger.Debug(fmt.Sprintf("exec %s in %s", executable, cmd.Dir))

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return zerr.Wrap(err, "command failed")
		}
		if sig := signalName(exitErr.ProcessState); sig != "" {
			return zerr.With(zerr.Wrap(err, "command terminated"), "signal", sig)
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitErr.ExitCode())
	}
	return nil
}

func (e *Executor) argv(shell, script string, env []string) ([]string, error) {
	if shell == "" {
		shell = e.defaultShell(env)
	}
	build, ok := invocations[shell]
	if !ok {
		return nil, zerr.With(domain.ErrUnsupportedShell, "shell", shell)
	}
	return build(script), nil
}

// defaultShell is bash when the job can find it and sh otherwise. Windows
// runners default to pwsh.
func (e *Executor) defaultShell(env []string) string {
	if e.goos == "windows" {
		return "pwsh"
	}
	if _, err := lookPath("bash", env); err == nil {
		return "bash"
	}
	return "sh"
}

// resolveEnvironment merges environment variables with the defined priority.
func resolveEnvironment(sysEnv, toolEnv []string, stepEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for _, entry := range toolEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	for k, v := range stepEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	if filepath.IsAbs(file) {
		return file, findExecutable(file)
	}

	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
