package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// MemoryStore is an in-memory Store for development runs and tests. It
// enforces the same learning-data version semantics as the SQL backends.
type MemoryStore struct {
	mu          sync.Mutex
	learning    map[string]model.LearningData
	trending    map[string]model.TrendingTopic
	performance map[string][]model.ContentPerformance
	indicators  []model.MarketIndicator
	conditions  map[string][]model.ConditionsSnapshot
	runs        []model.AgentRun
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		learning:    make(map[string]model.LearningData),
		trending:    make(map[string]model.TrendingTopic),
		performance: make(map[string][]model.ContentPerformance),
		conditions:  make(map[string][]model.ConditionsSnapshot),
	}
}

func (s *MemoryStore) GetLearningData(_ context.Context, agentID string) (*model.LearningData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ld, ok := s.learning[agentID]
	if !ok {
		return nil, nil
	}
	cp := ld
	return &cp, nil
}

func (s *MemoryStore) SaveLearningData(_ context.Context, data *model.LearningData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.learning[data.AgentID]
	if data.Version == 0 {
		if exists {
			return ErrVersionConflict
		}
		data.Version = 1
	} else {
		if !exists || current.Version != data.Version {
			return ErrVersionConflict
		}
		data.Version++
	}
	data.UpdatedAt = time.Now().UTC()
	s.learning[data.AgentID] = *data
	return nil
}

func (s *MemoryStore) ListTrendingTopics(_ context.Context, limit int) ([]model.TrendingTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]model.TrendingTopic, 0, len(s.trending))
	for _, tt := range s.trending {
		topics = append(topics, tt)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Score > topics[j].Score })
	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

func (s *MemoryStore) UpsertTrendingTopics(_ context.Context, topics []model.TrendingTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tt := range topics {
		if tt.CapturedAt.IsZero() {
			tt.CapturedAt = time.Now().UTC()
		}
		s.trending[tt.Topic] = tt
	}
	return nil
}

func (s *MemoryStore) ListContentPerformance(_ context.Context, agentID string, limit int) ([]model.ContentPerformance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	perf := append([]model.ContentPerformance(nil), s.performance[agentID]...)
	sort.Slice(perf, func(i, j int) bool { return perf[i].PublishedAt.After(perf[j].PublishedAt) })
	if limit > 0 && len(perf) > limit {
		perf = perf[:limit]
	}
	return perf, nil
}

func (s *MemoryStore) RecordContentPerformance(_ context.Context, perf *model.ContentPerformance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perf.ID == "" {
		perf.ID = uuid.New().String()
	}
	s.performance[perf.AgentID] = append(s.performance[perf.AgentID], *perf)
	return nil
}

func (s *MemoryStore) LatestMarketIndicators(_ context.Context) ([]model.MarketIndicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[string]model.MarketIndicator)
	for _, mi := range s.indicators {
		if prev, ok := latest[mi.Name]; !ok || mi.AsOf.After(prev.AsOf) {
			latest[mi.Name] = mi
		}
	}
	out := make([]model.MarketIndicator, 0, len(latest))
	for _, mi := range latest {
		out = append(out, mi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) RecordMarketIndicators(_ context.Context, indicators []model.MarketIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mi := range indicators {
		if mi.AsOf.IsZero() {
			mi.AsOf = time.Now().UTC()
		}
		s.indicators = append(s.indicators, mi)
	}
	return nil
}

func (s *MemoryStore) LatestConditions(_ context.Context, kind string) (*model.ConditionsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snaps := s.conditions[kind]
	if len(snaps) == 0 {
		return nil, nil
	}
	latest := snaps[0]
	for _, snap := range snaps[1:] {
		if snap.CapturedAt.After(latest.CapturedAt) {
			latest = snap
		}
	}
	return &latest, nil
}

func (s *MemoryStore) RecordConditions(_ context.Context, snap *model.ConditionsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	s.conditions[snap.Kind] = append(s.conditions[snap.Kind], *snap)
	return nil
}

func (s *MemoryStore) RecordAgentRun(_ context.Context, run *model.AgentRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *MemoryStore) ListAgentRuns(_ context.Context, filter AgentRunFilter) ([]model.AgentRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var runs []model.AgentRun
	for _, r := range s.runs {
		if filter.AgentID != "" && r.AgentID != filter.AgentID {
			continue
		}
		if !filter.CreatedAfter.IsZero() && !r.StartedAt.After(filter.CreatedAfter) {
			continue
		}
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}
	return runs, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }
