// Package config provides the workflow loader for matrix.
package config

import (
	"fmt"
	"maps"
	"os"
	"time"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the workflow file at path and returns the decoded workflow.
func (l *Loader) Load(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read workflow file"), "path", path)
	}

	wf, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.Logger.Debug(fmt.Sprintf("loaded workflow %q from %s: %d job groups, fingerprint %s",
		wf.Name, path, len(wf.Groups), wf.Fingerprint))
	return wf, nil
}

// Parse decodes a workflow definition.
func Parse(data []byte) (*domain.Workflow, error) {
	var wf Workfile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, zerr.Wrap(err, "failed to parse workflow file")
	}
	if len(wf.Jobs) == 0 {
		return nil, zerr.Wrap(domain.ErrInvalidWorkflow, "workflow declares no jobs")
	}

	out := &domain.Workflow{
		Name:        wf.Name,
		Triggers:    wf.On,
		Groups:      make([]domain.JobGroup, 0, len(wf.Jobs)),
		Fingerprint: domain.Fingerprint(data),
	}
	for _, entry := range wf.Jobs {
		out.Groups = append(out.Groups, toGroup(entry, wf.Env))
	}
	return out, nil
}

// toGroup converts a job declaration. Workflow-level env is inherited and
// overridden by job-level env.
func toGroup(entry JobEntry, workflowEnv map[string]string) domain.JobGroup {
	dto := entry.Job

	var env map[string]string
	if len(workflowEnv)+len(dto.Env) > 0 {
		env = make(map[string]string, len(workflowEnv)+len(dto.Env))
		maps.Copy(env, workflowEnv)
		maps.Copy(env, dto.Env)
	}

	steps := make([]domain.Step, 0, len(dto.Steps))
	for _, s := range dto.Steps {
		steps = append(steps, domain.Step{
			Name:             s.Name,
			Uses:             s.Uses,
			With:             s.With,
			Run:              s.Run,
			Env:              s.Env,
			Shell:            s.Shell,
			WorkingDirectory: s.WorkingDirectory,
		})
	}

	return domain.JobGroup{
		ID:     entry.ID,
		Name:   dto.Name,
		RunsOn: dto.RunsOn,
		Strategy: domain.Strategy{
			Matrix: domain.Matrix{
				Axes:    dto.Strategy.Matrix.Axes,
				Include: dto.Strategy.Matrix.Include,
				Exclude: dto.Strategy.Matrix.Exclude,
			},
			FailFast:    dto.Strategy.FailFast,
			MaxParallel: dto.Strategy.MaxParallel,
		},
		Env:     env,
		Steps:   steps,
		Timeout: time.Duration(dto.TimeoutMinutes) * time.Minute,
	}
}
