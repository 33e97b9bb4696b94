package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/monitoring"
	"github.com/mydub-ai/reporter-cli/internal/reporter"
	"github.com/mydub-ai/reporter-cli/internal/store"
	"github.com/mydub-ai/reporter-cli/pkg/edge"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// reporterEnv holds the initialized store, clients, and agent registry
// shared by the fetch/generate/feedback/schedule/serve commands.
type reporterEnv struct {
	Store     store.Store
	Agents    *agent.Registry
	Collector *monitoring.Collector
}

// Close releases resources held by the environment.
func (e *reporterEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initReporter sets up the store, proxy and gateway clients, and builds
// the five specialty agents. Callers should defer env.Close().
func initReporter(ctx context.Context) (*reporterEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	edgeOpts := []edge.Option{
		edge.WithTimeout(time.Duration(cfg.Edge.TimeoutSecs) * time.Second),
	}
	if cfg.Edge.RateLimit > 0 {
		edgeOpts = append(edgeOpts, edge.WithRateLimit(cfg.Edge.RateLimit, cfg.Edge.RateBurst))
	}
	edgeClient := edge.NewClient(cfg.Edge.BaseURL, cfg.Edge.Key, edgeOpts...)

	aiOpts := []openrouter.Option{}
	if cfg.OpenRouter.BaseURL != "" {
		aiOpts = append(aiOpts, openrouter.WithBaseURL(cfg.OpenRouter.BaseURL))
	}
	if cfg.OpenRouter.Referer != "" {
		aiOpts = append(aiOpts, openrouter.WithReferer(cfg.OpenRouter.Referer))
	}
	aiClient := openrouter.NewClient(cfg.OpenRouter.Key, aiOpts...)

	agents, err := reporter.Agents(reporter.Deps{
		Store: st,
		Edge:  edgeClient,
		AI:    aiClient,
		Cfg:   cfg,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	for _, a := range agents.All() {
		if err := a.Initialize(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrapf(err, "initialize %s agent", a.ID())
		}
	}

	zap.L().Info("reporter environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.Int("agents", len(agents.All())),
	)

	return &reporterEnv{
		Store:     st,
		Agents:    agents,
		Collector: monitoring.NewCollector(st),
	}, nil
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// resolveAgent maps a specialty argument to a registered agent.
func resolveAgent(env *reporterEnv, specialty string) (*agent.Agent, error) {
	a, err := env.Agents.Get(model.Specialty(specialty))
	if err != nil {
		return nil, eris.Wrapf(err, "unknown specialty %q", specialty)
	}
	return a, nil
}
