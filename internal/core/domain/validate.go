package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Severity grades a validation finding.
type Severity string

const (
	// SeverityError blocks dispatch.
	SeverityError Severity = "error"
	// SeverityWarning is reported but does not block dispatch.
	SeverityWarning Severity = "warning"
)

// Finding is one problem reported by Validate.
type Finding struct {
	Rule     string
	Severity Severity
	Group    string
	Step     string
	Message  string
}

// String renders the finding on one line.
func (f Finding) String() string {
	var sb strings.Builder
	sb.WriteString(string(f.Severity))
	sb.WriteString(" [")
	sb.WriteString(f.Rule)
	sb.WriteString("]")
	if f.Group != "" {
		sb.WriteString(" ")
		sb.WriteString(f.Group)
		if f.Step != "" {
			sb.WriteString(" / ")
			sb.WriteString(f.Step)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(f.Message)
	return sb.String()
}

// Findings is the result of validating a workflow.
type Findings []Finding

// HasErrors reports whether any finding has error severity.
func (fs Findings) HasErrors() bool {
	return slices.ContainsFunc(fs, func(f Finding) bool { return f.Severity == SeverityError })
}

// Errors returns only the error findings.
func (fs Findings) Errors() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Validation rule identifiers.
const (
	RuleTriggersRequired = "triggers.required"
	RuleStepsRequired    = "steps.required"
	RuleStepsExclusive   = "steps.exclusive"
	RuleStepsOrder       = "steps.order"
	RuleMatrixAxis       = "matrix.axis"
	RuleMatrixDrift      = "matrix.drift"
	RuleRefsUnknown      = "refs.unknown"
)

// Validate checks wf for structural problems before any job is expanded.
func Validate(wf *Workflow) Findings {
	var fs Findings
	if len(wf.Triggers) == 0 {
		fs = append(fs, Finding{
			Rule:     RuleTriggersRequired,
			Severity: SeverityError,
			Message:  "workflow declares no trigger events",
		})
	}
	for i := range wf.Groups {
		fs = append(fs, validateGroup(&wf.Groups[i])...)
	}
	return fs
}

func validateGroup(g *JobGroup) Findings {
	var fs Findings
	add := func(rule string, sev Severity, step, format string, args ...any) {
		fs = append(fs, Finding{
			Rule:     rule,
			Severity: sev,
			Group:    g.ID,
			Step:     step,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	m := g.Strategy.Matrix
	for _, axis := range m.Axes {
		if len(axis.Values) == 0 {
			add(RuleMatrixAxis, SeverityError, "", "axis %q has no values", axis.Name)
		}
		seen := make(map[string]struct{}, len(axis.Values))
		for _, v := range axis.Values {
			if _, dup := seen[v]; dup {
				add(RuleMatrixAxis, SeverityError, "", "axis %q lists %q more than once", axis.Name, v)
			}
			seen[v] = struct{}{}
		}
	}

	keys := m.Keys()
	checkRefs := func(step, field, s string) {
		for _, ref := range References(s) {
			if ref.Context == "matrix" && !slices.Contains(keys, ref.Name) {
				add(RuleRefsUnknown, SeverityError, step, "%s references undeclared matrix key %q", field, ref.Name)
			}
		}
	}
	checkRefs("", "name", g.Name)
	checkRefs("", "runs-on", g.RunsOn)
	for _, k := range sortedKeys(g.Env) {
		checkRefs("", "env."+k, g.Env[k])
	}

	if len(g.Steps) == 0 {
		add(RuleStepsRequired, SeverityError, "", "job declares no steps")
	}

	sawOther, sawRun := false, false
	sawCheckout, sawSetup := false, false
	for _, s := range g.Steps {
		name := s.DisplayName()
		if (s.Uses == "") == (s.Run == "") {
			add(RuleStepsExclusive, SeverityError, name, "step must set exactly one of uses or run")
		}

		switch s.Kind() {
		case StepKindCheckout:
			sawCheckout = true
			if sawOther {
				add(RuleStepsOrder, SeverityError, name, "checkout must precede every other step")
			}
		case StepKindSetup:
			if sawRun {
				add(RuleStepsOrder, SeverityError, name, "runtime setup must precede run steps")
			}
			sawOther, sawSetup = true, true
			fs = append(fs, driftFindings(g, s)...)
		case StepKindRun:
			sawOther, sawRun = true, true
		default:
			sawOther = true
		}

		checkRefs(name, "name", s.Name)
		checkRefs(name, "run", s.Run)
		for _, k := range sortedKeys(s.With) {
			checkRefs(name, "with."+k, s.With[k])
		}
		for _, k := range sortedKeys(s.Env) {
			checkRefs(name, "env."+k, s.Env[k])
		}
	}

	if sawSetup && !sawCheckout {
		add(RuleStepsOrder, SeverityWarning, "", "runtime setup without a checkout step")
	}
	return fs
}

// driftFindings reports setup parameters that shadow a matrix axis with a
// literal instead of referencing it.
func driftFindings(g *JobGroup, s Step) Findings {
	var fs Findings
	for _, param := range sortedKeys(s.With) {
		axis, ok := g.Strategy.Matrix.Axis(param)
		if !ok {
			continue
		}
		value := s.With[param]
		if slices.ContainsFunc(References(value), func(r Reference) bool {
			return r.Context == "matrix" && r.Name == param
		}) {
			continue
		}

		sev := SeverityError
		msg := fmt.Sprintf("%s is %q but the matrix axis declares %v", param, value, axis.Values)
		if slices.Contains(axis.Values, value) {
			sev = SeverityWarning
			msg = fmt.Sprintf("%s is the literal %q; reference ${{ matrix.%s }} to keep it in sync", param, value, param)
		}
		fs = append(fs, Finding{
			Rule:     RuleMatrixDrift,
			Severity: sev,
			Group:    g.ID,
			Step:     s.DisplayName(),
			Message:  msg,
		})
	}
	return fs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
