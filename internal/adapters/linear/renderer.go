// Package linear provides a synchronous, line-buffered renderer for terminals and CI logs.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/ui/output"
	"go.trai.ch/matrix/internal/ui/style"
)

// Renderer implements ports.Renderer. Step output is printed to stdout one
// complete line at a time, prefixed with the job name, so that concurrent
// jobs interleave by line. Progress and the summary go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu   sync.Mutex
	jobs map[string]*jobState // job ID -> state
}

type jobState struct {
	name    string
	started time.Time
	buf     bytes.Buffer
}

// NewRenderer creates a new Renderer rendering colors with profile.
func NewRenderer(stdout, stderr io.Writer, profile termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, profile),
		jobs:   make(map[string]*jobState),
	}
}

// OnPlan prints the dispatched jobs per group.
func (r *Renderer) OnPlan(plan *domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	for _, j := range plan.Jobs {
		counts[j.Group]++
	}
	groups := make([]string, 0, len(counts))
	for _, g := range plan.Groups() {
		groups = append(groups, fmt.Sprintf("%s (%d)", g, counts[g]))
	}

	_, _ = fmt.Fprintf(r.stderr, "Dispatching %d job(s) for %s: %s\n",
		len(plan.Jobs), plan.Event, strings.Join(groups, ", "))
}

// OnJobStart prints a job start message.
func (r *Renderer) OnJobStart(job *domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[job.ID] = &jobState{name: job.Name, started: time.Now()}

	runsOn := job.RunsOn
	if runsOn == "" {
		runsOn = "local"
	}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting on %s...\n", r.prefix(job.Name), runsOn)
}

// OnStepStart prints the step about to run.
func (r *Renderer) OnStepStart(job *domain.Job, step domain.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()

	arrow := r.color(style.Arrow, style.Blue)
	_, _ = fmt.Fprintf(r.stderr, "%s %s %s\n", r.prefix(job.Name), arrow, step.DisplayName())
}

// JobOutput returns a writer that prints complete lines with the job prefix.
func (r *Renderer) JobOutput(job *domain.Job) io.Writer {
	return &jobWriter{r: r, id: job.ID}
}

// OnStepComplete flushes pending output and prints the step outcome.
func (r *Renderer) OnStepComplete(job *domain.Job, result domain.StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushLocked(job.ID)

	prefix := r.prefix(job.Name)
	switch result.Status {
	case domain.StatusSucceeded:
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s %s\n", prefix,
			r.color(style.Check, style.Green), result.Name, r.faint(duration(result.Duration())))
	case domain.StatusFailed:
		detail := ""
		switch {
		case result.Signal != "":
			detail = fmt.Sprintf(" (terminated by signal: %s)", result.Signal)
		case result.ExitCode != 0:
			detail = fmt.Sprintf(" (exit code %d)", result.ExitCode)
		}
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s failed%s\n", prefix,
			r.color(style.Cross, style.Red), result.Name, detail)
	case domain.StatusSkipped:
		_, _ = fmt.Fprintf(r.stderr, "%s %s Skipped %s\n", prefix, r.faint(style.Skip), result.Name)
	case domain.StatusCancelled:
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s cancelled\n", prefix,
			r.color(style.Warning, style.Yellow), result.Name)
	}
}

// OnJobComplete flushes remaining output and prints the job outcome.
func (r *Renderer) OnJobComplete(result domain.JobResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flushLocked(result.JobID)
	delete(r.jobs, result.JobID)

	prefix := r.prefix(result.Name)
	elapsed := duration(result.Duration())
	switch result.Status {
	case domain.StatusSucceeded:
		_, _ = fmt.Fprintf(r.stderr, "%s %s Succeeded in %s\n", prefix,
			r.color(style.Check, style.Green), elapsed)
	case domain.StatusCancelled:
		_, _ = fmt.Fprintf(r.stderr, "%s %s Cancelled after %s\n", prefix,
			r.color(style.Warning, style.Yellow), elapsed)
	default:
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %s: %v\n", prefix,
			r.color(style.Cross, style.Red), elapsed, result.Err)
	}
}

// OnRunComplete prints one summary line per job followed by the totals.
func (r *Renderer) OnRunComplete(result *domain.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.jobs {
		r.flushLocked(id)
	}

	_, _ = fmt.Fprintln(r.stderr)
	_, _ = fmt.Fprintln(r.stderr, r.output.String("Summary").Bold().String())

	width := 0
	for _, j := range result.Jobs {
		width = max(width, len(j.Name))
	}
	for _, j := range result.Jobs {
		_, _ = fmt.Fprintf(r.stderr, "  %s %-*s  %s\n", r.statusIcon(j.Status), width, j.Name,
			r.faint(duration(j.Duration())))
	}

	parts := []string{fmt.Sprintf("%d succeeded", result.Count(domain.StatusSucceeded))}
	if n := result.Count(domain.StatusFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := result.Count(domain.StatusCancelled); n > 0 {
		parts = append(parts, fmt.Sprintf("%d cancelled", n))
	}
	_, _ = fmt.Fprintf(r.stderr, "\n%d job(s): %s in %s\n",
		len(result.Jobs), strings.Join(parts, ", "), duration(result.Duration()))
}

func (r *Renderer) write(id string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}

	job.buf.Write(data)
	for {
		line, err := job.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			job.buf.Write(line)
			return
		}
		r.printLineLocked(job.name, line)
	}
}

// flushLocked prints any partial line buffered for a job.
// Must be called with r.mu held.
func (r *Renderer) flushLocked(id string) {
	job, ok := r.jobs[id]
	if !ok || job.buf.Len() == 0 {
		return
	}
	r.printLineLocked(job.name, job.buf.Bytes())
	job.buf.Reset()
}

// printLineLocked prints a line with the job name prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
}

func (r *Renderer) faint(s string) string {
	return r.output.String(s).Faint().String()
}

func (r *Renderer) color(s string, c lipgloss.Color) string {
	return r.output.String(s).Foreground(r.output.Color(string(c))).String()
}

func (r *Renderer) statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusSucceeded:
		return r.color(style.Check, style.Green)
	case domain.StatusCancelled:
		return r.color(style.Warning, style.Yellow)
	case domain.StatusSkipped:
		return r.faint(style.Skip)
	default:
		return r.color(style.Cross, style.Red)
	}
}

func duration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}

// jobWriter routes step output of one job into the renderer.
type jobWriter struct {
	r  *Renderer
	id string
}

func (w *jobWriter) Write(p []byte) (int, error) {
	w.r.write(w.id, p)
	return len(p), nil
}
