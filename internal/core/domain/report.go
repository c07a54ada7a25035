package domain

import "time"

// RunReport is the persisted summary of one run.
type RunReport struct {
	RunID       string      `json:"run_id,omitzero"`
	Workflow    string      `json:"workflow,omitzero"`
	Event       string      `json:"event,omitzero"`
	Fingerprint string      `json:"fingerprint,omitzero"`
	Status      Status      `json:"status,omitzero"`
	Started     time.Time   `json:"started,omitzero"`
	Finished    time.Time   `json:"finished,omitzero"`
	Jobs        []JobReport `json:"jobs"`
}

// JobReport is the persisted summary of one job.
type JobReport struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Group      string            `json:"group"`
	RunsOn     string            `json:"runs_on,omitzero"`
	Matrix     map[string]string `json:"matrix,omitempty"`
	Status     Status            `json:"status"`
	DurationMS int64             `json:"duration_ms"`
	Error      string            `json:"error,omitzero"`
	Steps      []StepReport      `json:"steps"`
}

// StepReport is the persisted summary of one step.
type StepReport struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	ExitCode   int    `json:"exit_code,omitzero"`
	Signal     string `json:"signal,omitzero"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitzero"`
}

// NewRunReport summarizes result under the given run id.
func NewRunReport(runID, fingerprint string, result *RunResult) RunReport {
	report := RunReport{
		RunID:       runID,
		Workflow:    result.Workflow,
		Event:       result.Event,
		Fingerprint: fingerprint,
		Status:      result.Status(),
		Started:     result.Started,
		Finished:    result.Finished,
		Jobs:        make([]JobReport, 0, len(result.Jobs)),
	}

	for _, j := range result.Jobs {
		jr := JobReport{
			ID:         j.JobID,
			Name:       j.Name,
			Group:      j.Group,
			RunsOn:     j.RunsOn,
			Status:     j.Status,
			DurationMS: j.Duration().Milliseconds(),
			Error:      errString(j.Err),
			Steps:      make([]StepReport, 0, len(j.Steps)),
		}
		if len(j.Combination) > 0 {
			jr.Matrix = j.Combination.Map()
		}
		for _, s := range j.Steps {
			jr.Steps = append(jr.Steps, StepReport{
				Name:       s.Name,
				Status:     s.Status,
				ExitCode:   s.ExitCode,
				Signal:     s.Signal,
				DurationMS: s.Duration().Milliseconds(),
				Error:      errString(s.Err),
			})
		}
		report.Jobs = append(report.Jobs, jr)
	}
	return report
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
