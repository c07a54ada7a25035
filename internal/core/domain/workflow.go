// Package domain contains the workflow model, matrix expansion, validation
// and run results of the matrix dispatcher.
package domain

import (
	"slices"
	"strings"
	"time"
)

// Workflow is a declarative set of job groups dispatched on trigger events.
type Workflow struct {
	Name        string
	Triggers    []string
	Groups      []JobGroup
	Fingerprint string
}

// TriggeredBy reports whether the workflow declares the given event.
func (w *Workflow) TriggeredBy(event string) bool {
	return slices.Contains(w.Triggers, event)
}

// Group returns the job group with the given id.
func (w *Workflow) Group(id string) (*JobGroup, bool) {
	for i := range w.Groups {
		if w.Groups[i].ID == id {
			return &w.Groups[i], true
		}
	}
	return nil, false
}

// Strategy controls how the jobs of one group are scheduled relative to each other.
type Strategy struct {
	Matrix Matrix
	// FailFast cancels the remaining jobs of the group once one of them fails.
	FailFast bool
	// MaxParallel bounds how many jobs of the group run at once. Zero means unbounded.
	MaxParallel int
}

// JobGroup is a job declaration that the matrix expands into job instances.
type JobGroup struct {
	ID       string
	Name     string
	RunsOn   string
	Strategy Strategy
	Env      map[string]string
	Steps    []Step
	Timeout  time.Duration
}

// StepKind classifies a step by what it does.
type StepKind int

const (
	// StepKindRun executes a shell script.
	StepKindRun StepKind = iota
	// StepKindCheckout acquires the source tree.
	StepKindCheckout
	// StepKindSetup provisions a language runtime.
	StepKindSetup
	// StepKindAction invokes any other action.
	StepKindAction
)

// String returns the lower-case name of the kind.
func (k StepKind) String() string {
	switch k {
	case StepKindCheckout:
		return "checkout"
	case StepKindSetup:
		return "setup"
	case StepKindAction:
		return "action"
	default:
		return "run"
	}
}

const (
	checkoutAction = "actions/checkout"
	setupPrefix    = "actions/setup-"
)

// Step is an ordered unit of work inside a job.
type Step struct {
	Name             string
	Uses             string
	With             map[string]string
	Run              string
	Env              map[string]string
	Shell            string
	WorkingDirectory string
}

// Action splits Uses into the action name and its optional "@ref".
func (s Step) Action() (name, ref string) {
	name, ref, _ = strings.Cut(s.Uses, "@")
	return name, ref
}

// Kind classifies the step.
func (s Step) Kind() StepKind {
	if s.Uses == "" {
		return StepKindRun
	}
	name, _ := s.Action()
	switch {
	case name == checkoutAction:
		return StepKindCheckout
	case strings.HasPrefix(name, setupPrefix):
		return StepKindSetup
	default:
		return StepKindAction
	}
}

// SetupTool returns the tool a setup step provisions, e.g. "python" for actions/setup-python.
func (s Step) SetupTool() string {
	if s.Kind() != StepKindSetup {
		return ""
	}
	name, _ := s.Action()
	return strings.TrimPrefix(name, setupPrefix)
}

// DisplayName returns the declared name, or a name derived from what the step does.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Uses != "" {
		return "Run " + s.Uses
	}
	line, _, _ := strings.Cut(strings.TrimSpace(s.Run), "\n")
	return "Run " + line
}
