package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Job is one materialized instance of a job group for a single matrix combination.
type Job struct {
	ID          string
	Group       string
	Name        string
	RunsOn      string
	Combination Combination
	Env         map[string]string
	Steps       []Step
	FailFast    bool
	MaxParallel int
	Timeout     time.Duration
}

// JobID derives a stable identifier for the combination of a group.
func JobID(group string, c Combination) string {
	h := xxhash.New()
	_, _ = h.WriteString(group)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(c.Key())
	return fmt.Sprintf("%s-%016x", group, h.Sum64())
}

// Fingerprint returns the content hash of a workflow definition.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Workspace is the ephemeral directory layout that one job runs in.
type Workspace struct {
	// Root is removed as a whole when the job completes.
	Root string
	// Workdir receives the checked out source and is the default working directory of steps.
	Workdir string
	// ToolDir holds shims created by setup actions.
	ToolDir string
}

// JobContext carries the per-job execution state that steps accumulate.
// It is owned by a single job and must not be shared between jobs.
type JobContext struct {
	Job       *Job
	Workspace Workspace
	SourceDir string

	path    []string
	toolEnv map[string]string
}

// NewJobContext creates the execution context for job.
func NewJobContext(job *Job, ws Workspace, sourceDir string) *JobContext {
	return &JobContext{
		Job:       job,
		Workspace: ws,
		SourceDir: sourceDir,
		toolEnv:   make(map[string]string),
	}
}

// PrependPath puts dir in front of the PATH seen by later steps.
func (jc *JobContext) PrependPath(dir string) {
	jc.path = slices.Insert(jc.path, 0, dir)
}

// Path returns the directories prepended so far, highest priority first.
func (jc *JobContext) Path() []string {
	return slices.Clone(jc.path)
}

// ExportEnv makes key=value visible to later steps.
func (jc *JobContext) ExportEnv(key, value string) {
	jc.toolEnv[key] = value
}

// ToolEnv returns the variables provisioned by actions as KEY=VALUE entries.
func (jc *JobContext) ToolEnv() []string {
	env := make([]string, 0, len(jc.toolEnv)+1)
	if len(jc.path) > 0 {
		env = append(env, "PATH="+strings.Join(jc.path, string(filepath.ListSeparator)))
	}
	for _, k := range sortedKeys(jc.toolEnv) {
		env = append(env, k+"="+jc.toolEnv[k])
	}
	return env
}

// StepEnv merges the job environment with the step environment, the step winning.
func (jc *JobContext) StepEnv(step Step) map[string]string {
	env := make(map[string]string, len(jc.Job.Env)+len(step.Env))
	for k, v := range jc.Job.Env {
		env[k] = v
	}
	for k, v := range step.Env {
		env[k] = v
	}
	return env
}

// Command builds the shell invocation for a run step.
func (jc *JobContext) Command(step Step) Command {
	dir := jc.Workspace.Workdir
	if step.WorkingDirectory != "" {
		if filepath.IsAbs(step.WorkingDirectory) {
			dir = step.WorkingDirectory
		} else {
			dir = filepath.Join(dir, step.WorkingDirectory)
		}
	}
	return Command{
		Script:  step.Run,
		Shell:   step.Shell,
		Dir:     dir,
		ToolEnv: jc.ToolEnv(),
		Env:     jc.StepEnv(step),
	}
}

// Command is a script to be run by a shell.
type Command struct {
	Script string
	Shell  string
	Dir    string
	// ToolEnv holds KEY=VALUE entries provisioned for the job.
	// A PATH entry is prepended to the host PATH rather than replacing it.
	ToolEnv []string
	// Env holds user-declared variables that override everything else.
	Env map[string]string
}

// Tool is a language runtime located on the host.
type Tool struct {
	Name    string
	Version string
	// Path is the interpreter or compiler binary.
	Path string
	// Aliases are the command names steps use to invoke the tool.
	Aliases []string
}
