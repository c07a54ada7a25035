package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

var expressionPattern = regexp.MustCompile(`\$\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z0-9_.-]+)\s*\}\}`)

// Reference is a single "${{ context.name }}" expression found in a string.
type Reference struct {
	Context string
	Name    string
	Raw     string
}

// References returns every expression embedded in s, in order of appearance.
func References(s string) []Reference {
	matches := expressionPattern.FindAllStringSubmatch(s, -1)
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{Context: m[1], Name: m[2], Raw: m[0]})
	}
	return refs
}

// Scope holds the values expressions resolve against.
type Scope struct {
	Matrix Combination
	Env    map[string]string
}

// Interpolate replaces every expression in s with its value from scope.
// Matrix references must name a bound key; env references to unset keys
// resolve to the empty string. Any other context is rejected.
func Interpolate(s string, scope Scope) (string, error) {
	if !strings.Contains(s, "${{") {
		return s, nil
	}

	var firstErr error
	out := expressionPattern.ReplaceAllStringFunc(s, func(raw string) string {
		m := expressionPattern.FindStringSubmatch(raw)
		switch m[1] {
		case "matrix":
			if v, ok := scope.Matrix.Get(m[2]); ok {
				return v
			}
		case "env":
			return scope.Env[m[2]]
		}
		if firstErr == nil {
			firstErr = zerr.With(ErrUnknownReference, "reference", strings.TrimSpace(raw))
		}
		return raw
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// interpolateMap applies Interpolate to every value of m.
func interpolateMap(m map[string]string, scope Scope) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		iv, err := Interpolate(v, scope)
		if err != nil {
			return nil, zerr.With(err, "key", k)
		}
		out[k] = iv
	}
	return out, nil
}
