package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// ErrVersionConflict is returned by SaveLearningData when the record was
// modified since it was loaded. Callers reload and reapply their mutation.
var ErrVersionConflict = eris.New("store: learning data version conflict")

// AgentRunFilter specifies criteria for listing agent runs.
type AgentRunFilter struct {
	AgentID      string    `json:"agent_id,omitempty"`
	CreatedAfter time.Time `json:"created_after,omitempty"`
	Limit        int       `json:"limit,omitempty"`
}

// Store defines the persistence interface for the reporter agents.
type Store interface {
	// Learning data
	GetLearningData(ctx context.Context, agentID string) (*model.LearningData, error) // (nil, nil) when absent
	SaveLearningData(ctx context.Context, data *model.LearningData) error

	// Platform tables. Writes are best-effort side effects of agent runs;
	// reads feed scoring and the specialty extras.
	ListTrendingTopics(ctx context.Context, limit int) ([]model.TrendingTopic, error)
	UpsertTrendingTopics(ctx context.Context, topics []model.TrendingTopic) error
	ListContentPerformance(ctx context.Context, agentID string, limit int) ([]model.ContentPerformance, error)
	RecordContentPerformance(ctx context.Context, perf *model.ContentPerformance) error
	LatestMarketIndicators(ctx context.Context) ([]model.MarketIndicator, error)
	RecordMarketIndicators(ctx context.Context, indicators []model.MarketIndicator) error
	LatestConditions(ctx context.Context, kind string) (*model.ConditionsSnapshot, error)
	RecordConditions(ctx context.Context, snap *model.ConditionsSnapshot) error

	// Agent run log
	RecordAgentRun(ctx context.Context, run *model.AgentRun) error
	ListAgentRuns(ctx context.Context, filter AgentRunFilter) ([]model.AgentRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
