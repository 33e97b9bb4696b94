// Package reporter defines the five specialty profiles (news, business,
// tourism, conditions, lifestyle): their data sources, fetch adapters for
// each proxy function, relevance heuristics, and prompt templates. A profile
// plus the shared engine in internal/agent makes one running reporter.
package reporter

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/config"
	"github.com/mydub-ai/reporter-cli/internal/cost"
	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/store"
	"github.com/mydub-ai/reporter-cli/pkg/edge"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// Deps are the shared collaborators injected into every profile.
type Deps struct {
	Store store.Store
	Edge  edge.Client
	AI    openrouter.Client
	Cfg   *config.Config

	// Now overrides the clock in tests.
	Now func() time.Time
}

var gulfLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		return time.FixedZone("GST", 4*3600)
	}
	return loc
}()

// localNow returns the current Gulf-standard time, from the injected clock
// when one is set. Trading hours, rush hours, and seasons are all judged in
// this zone.
func (d Deps) localNow() time.Time {
	if d.Now != nil {
		return d.Now().In(gulfLocation)
	}
	return time.Now().In(gulfLocation)
}

// Profile couples one specialty's static configuration with its strategy
// hooks.
type Profile struct {
	Config model.AgentConfig
	Hooks  agent.Hooks
}

// All builds the five specialty profiles from the embedded source registry.
func All(deps Deps) ([]Profile, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	builders := map[model.Specialty]func(Deps, model.AgentConfig) Profile{
		model.SpecialtyNews:       newsProfile,
		model.SpecialtyBusiness:   businessProfile,
		model.SpecialtyTourism:    tourismProfile,
		model.SpecialtyConditions: conditionsProfile,
		model.SpecialtyLifestyle:  lifestyleProfile,
	}

	var profiles []Profile
	for _, sp := range model.Specialties() {
		cfg, ok := reg[sp]
		if !ok {
			return nil, eris.Errorf("reporter: no source registry entry for specialty %s", sp)
		}
		if deps.Cfg != nil && cfg.MaxContentPerRun == 0 {
			cfg.MaxContentPerRun = deps.Cfg.Agents.MaxContentPerRun
		}
		build, ok := builders[sp]
		if !ok {
			return nil, eris.Errorf("reporter: no profile builder for specialty %s", sp)
		}
		profiles = append(profiles, build(deps, cfg))
	}
	return profiles, nil
}

// Agents constructs and registers one agent per profile.
func Agents(deps Deps) (*agent.Registry, error) {
	profiles, err := All(deps)
	if err != nil {
		return nil, err
	}

	reg := agent.NewRegistry()
	for _, p := range profiles {
		a, err := agent.New(agent.Options{
			Config:  p.Config,
			Hooks:   p.Hooks,
			Store:   deps.Store,
			AI:      deps.AI,
			Edge:    deps.Edge,
			Scoring: deps.Cfg.Scoring,
			Models:  deps.Cfg.OpenRouter,
			Costs:   cost.NewCalculator(deps.Cfg.Pricing.OpenRouter),
			Now:     deps.Now,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "reporter: build %s agent", p.Config.Specialty)
		}
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
