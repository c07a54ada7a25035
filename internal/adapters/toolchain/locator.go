// Package toolchain locates language runtimes installed on the host.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// layout describes how to find and identify one kind of runtime.
type layout struct {
	// binaries returns the executable names to try for a requested version, best first.
	binaries    func(version string) []string
	versionArgs []string
	versionRe   *regexp.Regexp
	aliases     []string
}

var layouts = map[string]layout{
	"python": {
		binaries: func(version string) []string {
			var names []string
			if major, minor, ok := majorMinor(version); ok {
				names = append(names, "python"+major+"."+minor)
			}
			if major, _, _ := strings.Cut(version, "."); major == "2" {
				names = append(names, "python2")
			} else {
				names = append(names, "python3")
			}
			return append(names, "python")
		},
		versionArgs: []string{"--version"},
		versionRe:   regexp.MustCompile(`Python (\d+(?:\.\d+)*)`),
		aliases:     []string{"python", "python3"},
	},
	"node": {
		binaries:    func(string) []string { return []string{"node", "nodejs"} },
		versionArgs: []string{"--version"},
		versionRe:   regexp.MustCompile(`v(\d+(?:\.\d+)*)`),
		aliases:     []string{"node"},
	},
	"go": {
		binaries:    func(string) []string { return []string{"go"} },
		versionArgs: []string{"version"},
		versionRe:   regexp.MustCompile(`go(\d+(?:\.\d+)*)`),
		aliases:     []string{"go"},
	},
	"ruby": {
		binaries:    func(string) []string { return []string{"ruby"} },
		versionArgs: []string{"--version"},
		versionRe:   regexp.MustCompile(`ruby (\d+(?:\.\d+)*)`),
		aliases:     []string{"ruby"},
	},
}

// probeTimeout bounds a single version probe.
const probeTimeout = 30 * time.Second

// Locator implements ports.ToolLocator by probing executables on PATH.
// Results are memoized for the lifetime of the Locator.
type Locator struct {
	logger ports.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string]domain.Tool
}

// NewLocator creates a new Locator.
func NewLocator(logger ports.Logger) *Locator {
	return &Locator{
		logger: logger,
		cache:  make(map[string]domain.Tool),
	}
}

// Locate returns an installed tool whose version satisfies version.
func (l *Locator) Locate(ctx context.Context, tool, version string) (domain.Tool, error) {
	lay, ok := layouts[tool]
	if !ok {
		return domain.Tool{}, zerr.With(domain.ErrUnsupportedTool, "tool", tool)
	}

	key := tool + "@" + version
	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// Concurrent jobs asking for the same runtime share one probe. The probe
	// is detached from the caller that started it: cancelling one job must not
	// fail the others waiting on the same key. Failures are not memoized.
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		found, err := l.locate(shared, tool, version, lay)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = found
		l.mu.Unlock()
		return found, nil
	})

	select {
	case <-ctx.Done():
		return domain.Tool{}, zerr.With(zerr.Wrap(context.Cause(ctx), "locate cancelled"), "tool", tool)
	case res := <-ch:
		if res.Err != nil {
			return domain.Tool{}, res.Err
		}
		return res.Val.(domain.Tool), nil
	}
}

func (l *Locator) locate(ctx context.Context, tool, version string, lay layout) (domain.Tool, error) {
	var seen []string
	probed := make(map[string]bool)
	for _, name := range lay.binaries(version) {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			if probed[resolved] {
				continue
			}
			probed[resolved] = true
		}

		found, err := probe(ctx, path, lay)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Tool{}, zerr.Wrap(context.Cause(ctx), "locate cancelled")
			}
			l.logger.Debug(fmt.Sprintf("probe %s: %v", path, err))
			continue
		}
		seen = append(seen, found)

		if MatchVersion(version, found) {
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			l.logger.Debug(fmt.Sprintf("located %s %s at %s", tool, found, abs))
			return domain.Tool{
				Name:    tool,
				Version: found,
				Path:    abs,
				Aliases: slices.Clone(lay.aliases),
			}, nil
		}
	}

	err := zerr.With(domain.ErrToolNotFound, "tool", tool)
	err = zerr.With(err, "version", version)
	return domain.Tool{}, zerr.With(err, "found", strings.Join(seen, ", "))
}

func probe(ctx context.Context, path string, lay layout) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, lay.versionArgs...).CombinedOutput() //nolint:gosec // path found on PATH
	if err != nil {
		return "", zerr.Wrap(err, "version probe failed")
	}
	m := lay.versionRe.FindSubmatch(out)
	if m == nil {
		return "", zerr.With(zerr.New("unrecognized version output"), "output", strings.TrimSpace(string(out)))
	}
	return string(m[1]), nil
}

// MatchVersion reports whether have satisfies the requested version. The request
// matches component-wise as a prefix, so "3.6" accepts "3.6.15" but not "3.60".
// An empty request, "x", "*" and "latest" accept anything.
func MatchVersion(want, have string) bool {
	want = strings.TrimPrefix(strings.TrimSpace(want), "v")
	switch want {
	case "", "x", "*", "latest":
		return true
	}
	want = strings.TrimSuffix(strings.TrimSuffix(want, ".x"), ".*")

	wantParts := strings.Split(want, ".")
	haveParts := strings.Split(strings.TrimPrefix(have, "v"), ".")
	if len(wantParts) > len(haveParts) {
		return false
	}
	for i, p := range wantParts {
		if p != haveParts[i] {
			return false
		}
	}
	return true
}

func majorMinor(version string) (major, minor string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" || parts[1] == "x" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
