package linear_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/matrix/internal/adapters/detector"
	"go.trai.ch/matrix/internal/adapters/linear"
	"go.trai.ch/matrix/internal/core/domain"
)

func testJob(name string) *domain.Job {
	return &domain.Job{ID: name + "-id", Group: "tests", Name: name, RunsOn: "ubuntu-latest"}
}

func TestRenderer_JobLifecycle(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	job := testJob("tests (3.6, ubuntu-latest)")
	r.OnPlan(&domain.Plan{Event: "push", Jobs: []domain.Job{*job}})
	if !strings.Contains(stderr.String(), "Dispatching 1 job(s) for push: tests (1)") {
		t.Errorf("Expected plan message in stderr, got: %s", stderr.String())
	}

	r.OnJobStart(job)
	if !strings.Contains(stderr.String(), "[tests (3.6, ubuntu-latest)] Starting on ubuntu-latest") {
		t.Errorf("Expected job start message, got: %s", stderr.String())
	}

	step := domain.Step{Name: "Run tox", Run: "tox"}
	r.OnStepStart(job, step)
	if !strings.Contains(stderr.String(), "→ Run tox") {
		t.Errorf("Expected step start message, got: %s", stderr.String())
	}

	out := r.JobOutput(job)
	_, _ = out.Write([]byte("first line\n"))
	_, _ = out.Write([]byte("second line\n"))

	want := "[tests (3.6, ubuntu-latest)] first line\n[tests (3.6, ubuntu-latest)] second line\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}

	now := time.Now()
	r.OnStepComplete(job, domain.StepResult{Name: "Run tox", Status: domain.StatusSucceeded, Started: now, Finished: now.Add(time.Second)})
	if !strings.Contains(stderr.String(), "✓ Run tox 1s") {
		t.Errorf("Expected step completion, got: %s", stderr.String())
	}

	r.OnJobComplete(domain.JobResult{JobID: job.ID, Name: job.Name, Status: domain.StatusSucceeded, Started: now, Finished: now.Add(2 * time.Second)})
	if !strings.Contains(stderr.String(), "✓ Succeeded in 2s") {
		t.Errorf("Expected job completion, got: %s", stderr.String())
	}
}

func TestRenderer_PartialLines(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	job := testJob("lint")
	r.OnJobStart(job)
	out := r.JobOutput(job)

	_, _ = out.Write([]byte("partial"))
	if strings.Contains(stdout.String(), "partial") {
		t.Errorf("Partial line should not be printed immediately")
	}

	_, _ = out.Write([]byte(" line\ntrailing"))
	if !strings.Contains(stdout.String(), "[lint] partial line\n") {
		t.Errorf("Expected completed line, got: %q", stdout.String())
	}

	r.OnStepComplete(job, domain.StepResult{Name: "Run tox", Status: domain.StatusFailed, ExitCode: 2})
	if !strings.Contains(stdout.String(), "[lint] trailing\n") {
		t.Errorf("Expected partial line to be flushed, got: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "✗ Run tox failed (exit code 2)") {
		t.Errorf("Expected failed step message, got: %s", stderr.String())
	}
}

func TestRenderer_SignaledStep(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	job := testJob("lint")
	r.OnJobStart(job)
	r.OnStepComplete(job, domain.StepResult{Name: "Run tox", Status: domain.StatusFailed, Signal: "killed"})

	if !strings.Contains(stderr.String(), "✗ Run tox failed (terminated by signal: killed)") {
		t.Errorf("Expected signal message, got: %s", stderr.String())
	}
	if strings.Contains(stderr.String(), "exit code") {
		t.Errorf("Signaled step should not report an exit code, got: %s", stderr.String())
	}
}

func TestRenderer_OutputAfterCompletionIsDropped(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	job := testJob("late")
	out := r.JobOutput(job)
	_, _ = out.Write([]byte("before start\n"))

	r.OnJobStart(job)
	r.OnJobComplete(domain.JobResult{JobID: job.ID, Name: job.Name, Status: domain.StatusFailed, Err: errors.New("boom")})
	_, _ = out.Write([]byte("after completion\n"))

	if stdout.Len() != 0 {
		t.Errorf("Expected no step output, got: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "✗ Failed after 0s: boom") {
		t.Errorf("Expected failure message, got: %s", stderr.String())
	}
}

func TestRenderer_SkippedAndCancelled(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	job := testJob("docs")
	r.OnJobStart(job)
	r.OnStepComplete(job, domain.StepResult{Name: "Run tox", Status: domain.StatusSkipped})
	r.OnJobComplete(domain.JobResult{JobID: job.ID, Name: job.Name, Status: domain.StatusCancelled})

	if !strings.Contains(stderr.String(), "- Skipped Run tox") {
		t.Errorf("Expected skipped step, got: %s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Cancelled after") {
		t.Errorf("Expected cancelled job, got: %s", stderr.String())
	}
}

func TestRenderer_RunSummary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	r.OnRunComplete(&domain.RunResult{Jobs: []domain.JobResult{
		{Name: "tests (3.6, ubuntu-latest)", Status: domain.StatusSucceeded},
		{Name: "tests (3.6, windows-latest)", Status: domain.StatusFailed},
		{Name: "other (3.6, build)", Status: domain.StatusCancelled},
	}})

	got := stderr.String()
	for _, want := range []string{
		"Summary",
		"✓ tests (3.6, ubuntu-latest)",
		"✗ tests (3.6, windows-latest)",
		"! other (3.6, build)",
		"3 job(s): 1 succeeded, 1 failed, 1 cancelled",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in summary, got:\n%s", want, got)
		}
	}
}

func TestRenderer_ConcurrentJobsInterleaveByLine(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr, termenv.Ascii)

	var wg sync.WaitGroup
	for i := range 4 {
		job := testJob(fmt.Sprintf("job%d", i))
		r.OnJobStart(job)
		out := r.JobOutput(job)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, _ = out.Write([]byte("hello "))
				_, _ = out.Write([]byte("world\n"))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != 200 {
		t.Fatalf("Expected 200 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "] hello world") {
			t.Fatalf("Line was torn: %q", line)
		}
	}
}

func TestFactory_New(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	f := linear.NewFactory(func() detector.OutputMode { return detector.ModeLinear })

	var stdout, stderr bytes.Buffer
	r := f.New(&stdout, &stderr, "plain")
	job := testJob("plain")
	r.OnJobStart(job)

	if strings.Contains(stderr.String(), "\x1b[") {
		t.Errorf("Plain mode must not emit escape sequences, got: %q", stderr.String())
	}

	stderr.Reset()
	r = f.New(&stdout, &stderr, "auto")
	r.OnJobStart(job)
	if !strings.Contains(stderr.String(), "\x1b[") {
		t.Errorf("Linear mode should emit ANSI styling, got: %q", stderr.String())
	}
}
