// Package actions provides the built-in implementations of "uses" steps.
package actions

import (
	"strings"

	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/matrix/internal/core/ports"
	"go.trai.ch/zerr"
)

const setupPrefix = "actions/setup-"

// Registry resolves action references to the built-in actions.
type Registry struct {
	actions map[string]ports.Action
	setup   ports.Action
}

// NewRegistry creates a Registry serving actions/checkout and actions/setup-<tool>.
func NewRegistry(checkout *Checkout, setup *Setup) *Registry {
	return &Registry{
		actions: map[string]ports.Action{"actions/checkout": checkout},
		setup:   setup,
	}
}

// Lookup returns the action for uses. A trailing "@ref" is ignored.
func (r *Registry) Lookup(uses string) (ports.Action, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(uses), "@")
	if a, ok := r.actions[name]; ok {
		return a, nil
	}
	if strings.HasPrefix(name, setupPrefix) && len(name) > len(setupPrefix) {
		return r.setup, nil
	}
	return nil, zerr.With(domain.ErrUnknownAction, "action", uses)
}
