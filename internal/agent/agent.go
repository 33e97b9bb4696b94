// Package agent implements the shared reporter engine: the
// fetch-validate-score lifecycle, the scoring formulas, article generation,
// and feedback-driven learning. Specialty behavior is injected through
// Hooks rather than subclassing, so the pipeline is one concrete engine
// parameterized per specialty.
package agent

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/analyzer"
	"github.com/mydub-ai/reporter-cli/internal/config"
	"github.com/mydub-ai/reporter-cli/internal/cost"
	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/store"
	"github.com/mydub-ai/reporter-cli/pkg/edge"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// Options wires one agent instance. Config, Hooks, Store, AI, and Edge are
// required.
type Options struct {
	Config  model.AgentConfig
	Hooks   Hooks
	Store   store.Store
	AI      openrouter.Client
	Edge    edge.Client
	Scoring config.ScoringConfig
	Models  config.OpenRouterConfig
	Costs   *cost.Calculator

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Agent is one specialty reporter. Instances are constructed once at process
// start and shared; all methods are safe for concurrent use except that
// overlapping FetchContent runs for the same agent contend on learning-data
// saves (resolved by the store's version check).
type Agent struct {
	cfg      model.AgentConfig
	hooks    Hooks
	store    store.Store
	ai       openrouter.Client
	edge     edge.Client
	scoring  config.ScoringConfig
	models   config.OpenRouterConfig
	costs    *cost.Calculator
	analyzer *analyzer.Analyzer
	now      func() time.Time

	mu       sync.Mutex
	learning *model.LearningData
	tokens   int
	costUSD  float64
}

// FetchResult is the outcome of one fetch cycle.
type FetchResult struct {
	Items         []model.ContentItem `json:"items"`
	SourcesOK     int                 `json:"sources_ok"`
	SourcesFailed int                 `json:"sources_failed"`
	ItemsFetched  int                 `json:"items_fetched"`
	TotalTokens   int                 `json:"total_tokens"`
	TotalCost     float64             `json:"total_cost"`
}

// New constructs an agent from options, applying hook defaults.
func New(opts Options) (*Agent, error) {
	if opts.Config.ID == "" {
		return nil, eris.New("agent: config id is required")
	}
	if opts.Hooks.FetchSource == nil {
		return nil, eris.New("agent: fetch source hook is required")
	}
	if opts.Hooks.Relevance == nil {
		return nil, eris.New("agent: relevance hook is required")
	}
	if opts.Hooks.BuildPrompt == nil {
		return nil, eris.New("agent: build prompt hook is required")
	}
	if opts.Store == nil || opts.AI == nil || opts.Edge == nil {
		return nil, eris.New("agent: store, ai, and edge clients are required")
	}
	if opts.Hooks.DedupKey == nil {
		opts.Hooks.DedupKey = defaultDedupKey
	}
	if opts.Hooks.Less == nil {
		opts.Hooks.Less = defaultLess
	}
	if opts.Costs == nil {
		opts.Costs = cost.NewCalculator(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Agent{
		cfg:      opts.Config,
		hooks:    opts.Hooks,
		store:    opts.Store,
		ai:       opts.AI,
		edge:     opts.Edge,
		scoring:  opts.Scoring,
		models:   opts.Models,
		costs:    opts.Costs,
		analyzer: analyzer.New(),
		now:      opts.Now,
	}, nil
}

// ID returns the agent id.
func (a *Agent) ID() string { return a.cfg.ID }

// Specialty returns the agent's content domain.
func (a *Agent) Specialty() model.Specialty { return a.cfg.Specialty }

// Config returns the static agent configuration.
func (a *Agent) Config() model.AgentConfig { return a.cfg }

// Initialize loads the agent's persisted learning data, creating the default
// record on first run.
func (a *Agent) Initialize(ctx context.Context) error {
	ld, err := a.store.GetLearningData(ctx, a.cfg.ID)
	if err != nil {
		return eris.Wrapf(err, "agent %s: load learning data", a.cfg.ID)
	}
	if ld == nil {
		ld = model.DefaultLearningData(a.cfg.ID)
		if err := a.store.SaveLearningData(ctx, ld); err != nil {
			if !eris.Is(err, store.ErrVersionConflict) {
				return eris.Wrapf(err, "agent %s: create learning data", a.cfg.ID)
			}
			// another instance created it first
			if ld, err = a.store.GetLearningData(ctx, a.cfg.ID); err != nil {
				return eris.Wrapf(err, "agent %s: reload learning data", a.cfg.ID)
			}
		}
	}
	a.mu.Lock()
	a.learning = ld
	a.mu.Unlock()
	zap.L().Debug("agent initialized",
		zap.String("agent", a.cfg.ID),
		zap.Int64("learning_version", ld.Version))
	return nil
}

// learningSnapshot returns the cached learning data, lazily defaulting when
// Initialize was skipped.
func (a *Agent) learningSnapshot() *model.LearningData {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.learning == nil {
		a.learning = model.DefaultLearningData(a.cfg.ID)
	}
	return a.learning
}

// FetchContent runs one fetch cycle: fan out to every configured source,
// synthesize extras, dedupe, validate, score, and rank. Per-source failures
// are logged and skipped; the cycle only fails outright when nothing else
// can proceed.
func (a *Agent) FetchContent(ctx context.Context) (*FetchResult, error) {
	started := a.now()
	startTokens, startCost := a.usage()

	res := &FetchResult{}
	var raw []model.ContentItem
	var sourceErrs []string

	for _, src := range a.cfg.Sources {
		items, err := a.hooks.FetchSource(ctx, src)
		if err != nil {
			res.SourcesFailed++
			sourceErrs = append(sourceErrs, src.Name+": "+err.Error())
			zap.L().Warn("source fetch failed",
				zap.String("agent", a.cfg.ID),
				zap.String("source", src.Name),
				zap.Error(err))
			continue
		}
		res.SourcesOK++
		raw = append(raw, items...)
	}

	for _, extra := range a.hooks.Extras {
		item, err := extra(ctx)
		if err != nil {
			zap.L().Warn("extra content synthesis failed",
				zap.String("agent", a.cfg.ID),
				zap.Error(err))
			continue
		}
		if item != nil {
			raw = append(raw, *item)
		}
	}

	res.ItemsFetched = len(raw)
	res.Items = a.filterAndValidate(ctx, raw)

	endTokens, endCost := a.usage()
	res.TotalTokens = endTokens - startTokens
	res.TotalCost = endCost - startCost

	run := &model.AgentRun{
		AgentID:       a.cfg.ID,
		StartedAt:     started,
		DurationMS:    a.now().Sub(started).Milliseconds(),
		SourcesOK:     res.SourcesOK,
		SourcesFailed: res.SourcesFailed,
		ItemsFetched:  res.ItemsFetched,
		ItemsValid:    len(res.Items),
		TotalTokens:   res.TotalTokens,
		TotalCost:     res.TotalCost,
	}
	// A cycle with no surviving source counts as failed in run history so
	// the monitoring failure rate reflects it.
	if res.SourcesOK == 0 && res.SourcesFailed > 0 {
		run.Error = "all sources failed: " + strings.Join(sourceErrs, "; ")
	}
	if err := a.store.RecordAgentRun(ctx, run); err != nil {
		zap.L().Warn("record agent run failed",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
	}

	zap.L().Info("fetch cycle complete",
		zap.String("agent", a.cfg.ID),
		zap.Int("sources_ok", res.SourcesOK),
		zap.Int("sources_failed", res.SourcesFailed),
		zap.Int("fetched", res.ItemsFetched),
		zap.Int("valid", len(res.Items)))
	return res, nil
}

// filterAndValidate dedupes, applies the domain post-filter, validates,
// scores, ranks, and caps the raw items.
func (a *Agent) filterAndValidate(ctx context.Context, raw []model.ContentItem) []model.ContentItem {
	// Enrich before keying so markup differences in otherwise identical
	// titles still collapse.
	for i := range raw {
		a.analyzer.Enrich(&raw[i])
	}

	seen := make(map[string]bool, len(raw))
	deduped := make([]model.ContentItem, 0, len(raw))
	for _, item := range raw {
		key := a.hooks.DedupKey(&item)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, item)
	}

	if a.hooks.PostFilter != nil {
		deduped = a.hooks.PostFilter(a.now(), deduped)
	}

	valid := make([]model.ContentItem, 0, len(deduped))
	for i := range deduped {
		item := &deduped[i]
		if item.AgentID == "" {
			item.AgentID = a.cfg.ID
		}
		if item.Status == "" {
			item.Status = model.StatusFetched
		}
		if item.FetchedAt.IsZero() {
			item.FetchedAt = a.now()
		}
		item.RelevanceScore = a.CalculateRelevance(ctx, item)
		if !a.ValidateContent(ctx, item) {
			continue
		}
		item.PriorityScore = a.CalculatePriority(ctx, item)
		valid = append(valid, *item)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return a.hooks.Less(&valid[i], &valid[j])
	})

	max := a.cfg.MaxContentPerRun
	if max > 0 && len(valid) > max {
		valid = valid[:max]
	}
	return valid
}

// AnalyzeContent scores one item and collects the qualitative reasons and
// AI improvement suggestions.
func (a *Agent) AnalyzeContent(ctx context.Context, item *model.ContentItem) (*model.ContentAnalysis, error) {
	analysis := &model.ContentAnalysis{
		ItemID:         item.ID,
		RelevanceScore: a.CalculateRelevance(ctx, item),
		PriorityScore:  a.CalculatePriority(ctx, item),
		QualityScore:   a.calculateQuality(ctx, item),
	}
	if analysis.RelevanceScore >= a.scoring.RelevanceThreshold {
		analysis.Reasons = append(analysis.Reasons, "strong local relevance")
	}
	if analysis.PriorityScore >= a.scoring.PriorityThreshold {
		analysis.Reasons = append(analysis.Reasons, "timely, high-priority source")
	}
	if analysis.QualityScore >= a.scoring.QualityThreshold {
		analysis.Reasons = append(analysis.Reasons, "publication-grade quality")
	}
	analysis.Suggestions = a.suggestions(ctx, item)
	return analysis, nil
}

// ShouldPublish reports whether every score clears its threshold.
func (a *Agent) ShouldPublish(analysis *model.ContentAnalysis) bool {
	return analysis.RelevanceScore >= a.scoring.RelevanceThreshold &&
		analysis.PriorityScore >= a.scoring.PriorityThreshold &&
		analysis.QualityScore >= a.scoring.QualityThreshold
}

// chat runs one gateway completion for the given task kind and accumulates
// token usage.
func (a *Agent) chat(ctx context.Context, task string, messages []openrouter.Message) (string, error) {
	m := a.models.ModelForTask(task)
	req := openrouter.ChatCompletionRequest{Model: m, Messages: messages}
	if a.models.MaxTokens > 0 {
		req.MaxTokens = &a.models.MaxTokens
	}
	resp, err := a.ai.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	a.addUsage(m, resp.Usage)
	return openrouter.Text(resp), nil
}

func (a *Agent) addUsage(modelID string, u openrouter.Usage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens += u.TotalTokens
	a.costUSD += a.costs.Completion(modelID, u.PromptTokens, u.CompletionTokens)
}

func (a *Agent) usage() (int, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens, a.costUSD
}

// Usage returns cumulative gateway token and cost totals for this instance.
func (a *Agent) Usage() (tokens int, costUSD float64) {
	return a.usage()
}
