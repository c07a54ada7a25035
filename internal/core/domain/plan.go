package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Plan is the ordered list of jobs a single trigger event dispatches.
type Plan struct {
	Workflow    string
	Event       string
	Fingerprint string
	Jobs        []Job
}

// ExpandWorkflow materializes one job per matrix combination of every group
// of wf, in group declaration order and then combination order.
func ExpandWorkflow(wf *Workflow, event string) (*Plan, error) {
	if !wf.TriggeredBy(event) {
		return nil, zerr.With(ErrNotTriggered, "event", event)
	}

	plan := &Plan{
		Workflow:    wf.Name,
		Event:       event,
		Fingerprint: wf.Fingerprint,
	}
	for i := range wf.Groups {
		jobs, err := expandGroup(&wf.Groups[i])
		if err != nil {
			return nil, zerr.With(err, "group", wf.Groups[i].ID)
		}
		plan.Jobs = append(plan.Jobs, jobs...)
	}
	return plan, nil
}

func expandGroup(g *JobGroup) ([]Job, error) {
	combos, err := g.Strategy.Matrix.Expand()
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(combos))
	for _, c := range combos {
		job, err := materialize(g, c)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func materialize(g *JobGroup, c Combination) (Job, error) {
	scope := Scope{Matrix: c}

	name, err := jobName(g, c)
	if err != nil {
		return Job{}, err
	}

	runsOn, err := Interpolate(g.RunsOn, scope)
	if err != nil {
		return Job{}, zerr.With(err, "field", "runs-on")
	}

	env, err := interpolateMap(g.Env, scope)
	if err != nil {
		return Job{}, zerr.With(err, "field", "env")
	}

	steps := make([]Step, len(g.Steps))
	for i, s := range g.Steps {
		steps[i], err = materializeStep(s, c, env)
		if err != nil {
			return Job{}, zerr.With(err, "step", s.DisplayName())
		}
	}

	return Job{
		ID:          JobID(g.ID, c),
		Group:       g.ID,
		Name:        name,
		RunsOn:      runsOn,
		Combination: c,
		Env:         env,
		Steps:       steps,
		FailFast:    g.Strategy.FailFast,
		MaxParallel: g.Strategy.MaxParallel,
		Timeout:     g.Timeout,
	}, nil
}

func materializeStep(s Step, c Combination, jobEnv map[string]string) (Step, error) {
	stepEnv, err := interpolateMap(s.Env, Scope{Matrix: c, Env: jobEnv})
	if err != nil {
		return Step{}, err
	}

	merged := make(map[string]string, len(jobEnv)+len(stepEnv))
	for k, v := range jobEnv {
		merged[k] = v
	}
	for k, v := range stepEnv {
		merged[k] = v
	}
	scope := Scope{Matrix: c, Env: merged}

	out := s
	out.Env = stepEnv
	if out.Name, err = Interpolate(s.Name, scope); err != nil {
		return Step{}, err
	}
	if out.Run, err = Interpolate(s.Run, scope); err != nil {
		return Step{}, err
	}
	if out.WorkingDirectory, err = Interpolate(s.WorkingDirectory, scope); err != nil {
		return Step{}, err
	}
	if out.With, err = interpolateMap(s.With, scope); err != nil {
		return Step{}, err
	}
	return out, nil
}

// jobName renders the group name for c. When the declared name does not
// reference the matrix, the combination values are appended in parentheses.
func jobName(g *JobGroup, c Combination) (string, error) {
	base := g.Name
	if base == "" {
		base = g.ID
	}
	name, err := Interpolate(base, Scope{Matrix: c})
	if err != nil {
		return "", zerr.With(err, "field", "name")
	}

	if len(c) == 0 || referencesMatrix(base) {
		return name, nil
	}
	return name + " (" + strings.Join(c.Values(), ", ") + ")", nil
}

func referencesMatrix(s string) bool {
	return slices.ContainsFunc(References(s), func(r Reference) bool { return r.Context == "matrix" })
}

// Groups returns the distinct group ids of the plan in dispatch order.
func (p *Plan) Groups() []string {
	var groups []string
	for _, j := range p.Jobs {
		if !slices.Contains(groups, j.Group) {
			groups = append(groups, j.Group)
		}
	}
	return groups
}

// Job returns the job with the given id.
func (p *Plan) Job(id string) (Job, bool) {
	for _, j := range p.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// Filter returns a plan restricted to the given groups. No groups means all of them.
func (p *Plan) Filter(groups ...string) (*Plan, error) {
	if len(groups) == 0 {
		return p, nil
	}

	known := p.Groups()
	for _, g := range groups {
		if !slices.Contains(known, g) {
			return nil, zerr.With(ErrGroupNotFound, "group", g)
		}
	}

	out := *p
	out.Jobs = nil
	for _, j := range p.Jobs {
		if slices.Contains(groups, j.Group) {
			out.Jobs = append(out.Jobs, j)
		}
	}
	return &out, nil
}
