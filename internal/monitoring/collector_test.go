package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/store"
)

func seedRun(t *testing.T, st store.Store, agentID string, age time.Duration, run model.AgentRun) {
	t.Helper()
	run.AgentID = agentID
	run.StartedAt = time.Now().UTC().Add(-age)
	require.NoError(t, st.RecordAgentRun(context.Background(), &run))
}

func TestCollect_AggregatesRuns(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "news-reporter", time.Hour, model.AgentRun{
		SourcesOK: 2, SourcesFailed: 1, ItemsFetched: 12, ItemsValid: 8,
		TotalTokens: 900, TotalCost: 0.04,
	})
	seedRun(t, st, "news-reporter", 2*time.Hour, model.AgentRun{
		SourcesOK: 3, ItemsFetched: 10, ItemsValid: 10,
		TotalTokens: 600, TotalCost: 0.02,
	})
	seedRun(t, st, "business-reporter", 3*time.Hour, model.AgentRun{
		Error: "generate article: model unavailable",
	})
	// Outside the lookback window, must be excluded.
	seedRun(t, st, "news-reporter", 30*time.Hour, model.AgentRun{
		ItemsFetched: 99, TotalCost: 9.99,
	})

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.RunsTotal)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.InDelta(t, 1.0/3.0, snap.FailureRate, 1e-9)
	assert.Equal(t, 5, snap.SourcesOK)
	assert.Equal(t, 1, snap.SourcesFailed)
	assert.Equal(t, 22, snap.ItemsFetched)
	assert.Equal(t, 18, snap.ItemsValid)
	assert.Equal(t, 1500, snap.TotalTokens)
	assert.InDelta(t, 0.06, snap.TotalCostUSD, 1e-9)
	assert.Equal(t, 24, snap.LookbackHours)

	news := snap.PerAgent["news-reporter"]
	assert.Equal(t, 2, news.Runs)
	assert.Equal(t, 0, news.Failed)
	assert.Equal(t, 22, news.ItemsFetched)

	biz := snap.PerAgent["business-reporter"]
	assert.Equal(t, 1, biz.Runs)
	assert.Equal(t, 1, biz.Failed)
}

func TestCollect_FailedRunMovesRate(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "news-reporter", time.Hour, model.AgentRun{SourcesOK: 2})

	snap, err := NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Zero(t, snap.FailureRate)

	seedRun(t, st, "news-reporter", time.Minute, model.AgentRun{
		SourcesFailed: 2,
		Error:         "all sources failed: Dubai Media Office: upstream 502",
	})

	snap, err = NewCollector(st).Collect(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RunsTotal)
	assert.Equal(t, 1, snap.RunsFailed)
	assert.InDelta(t, 0.5, snap.FailureRate, 1e-9)
}

func TestCollect_EmptyStore(t *testing.T) {
	snap, err := NewCollector(store.NewMemory()).Collect(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.RunsTotal)
	assert.Zero(t, snap.FailureRate)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.Empty(t, snap.PerAgent)
}
