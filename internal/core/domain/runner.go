package domain

import (
	"runtime"
	"slices"
	"strings"
)

// Runner describes the labels a local host can serve.
type Runner struct {
	OS     string
	Labels []string
}

var osLabelPrefixes = map[string][]string{
	"linux":   {"ubuntu-", "linux"},
	"darwin":  {"macos-", "macos", "darwin"},
	"windows": {"windows-", "windows"},
}

// HostRunner returns the runner for the current operating system.
func HostRunner() Runner {
	return NewRunner(runtime.GOOS)
}

// NewRunner returns a runner for the given GOOS value plus any extra labels.
func NewRunner(goos string, extra ...string) Runner {
	labels := append([]string{"self-hosted", "local"}, extra...)
	return Runner{OS: goos, Labels: labels}
}

// Serves reports whether a job asking for label can run here. A label
// matches when it is listed explicitly or names the runner's OS family,
// e.g. "ubuntu-latest" on linux or "macos-14" on darwin.
func (r Runner) Serves(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || slices.Contains(r.Labels, label) {
		return true
	}
	for _, prefix := range osLabelPrefixes[r.OS] {
		if strings.HasPrefix(label, prefix) {
			return true
		}
	}
	return false
}
