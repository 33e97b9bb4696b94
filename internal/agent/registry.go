package agent

import (
	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// Registry holds the one agent instance per specialty, constructed at
// process start and passed explicitly to callers.
type Registry struct {
	agents map[model.Specialty]*Agent
	order  []model.Specialty
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[model.Specialty]*Agent)}
}

// Register adds an agent, rejecting duplicate specialties.
func (r *Registry) Register(a *Agent) error {
	sp := a.Specialty()
	if _, ok := r.agents[sp]; ok {
		return eris.Errorf("registry: specialty %s already registered", sp)
	}
	r.agents[sp] = a
	r.order = append(r.order, sp)
	return nil
}

// Get returns the agent for a specialty.
func (r *Registry) Get(sp model.Specialty) (*Agent, error) {
	a, ok := r.agents[sp]
	if !ok {
		return nil, eris.Errorf("registry: no agent for specialty %s", sp)
	}
	return a, nil
}

// All returns every registered agent in registration order.
func (r *Registry) All() []*Agent {
	out := make([]*Agent, 0, len(r.order))
	for _, sp := range r.order {
		out = append(out, r.agents[sp])
	}
	return out
}
