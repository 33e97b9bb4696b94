package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Learning Data ---

func TestSQLite_LearningData_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	ld, err := st.GetLearningData(context.Background(), "news-reporter")
	require.NoError(t, err)
	assert.Nil(t, ld)
}

func TestSQLite_LearningData_InsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	data := model.DefaultLearningData("news-reporter")
	data.Preferences.TopKeywords = []string{"metro", "expo"}
	require.NoError(t, st.SaveLearningData(ctx, data))
	assert.Equal(t, int64(1), data.Version)

	got, err := st.GetLearningData(ctx, "news-reporter")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, []string{"metro", "expo"}, got.Preferences.TopKeywords)
	assert.Equal(t, 800, got.Preferences.PreferredLength.Optimal)
}

func TestSQLite_LearningData_UpdateBumpsVersion(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	data := model.DefaultLearningData("news-reporter")
	require.NoError(t, st.SaveLearningData(ctx, data))

	data.Preferences.AvoidKeywords = []string{"clickbait"}
	require.NoError(t, st.SaveLearningData(ctx, data))
	assert.Equal(t, int64(2), data.Version)

	got, err := st.GetLearningData(ctx, "news-reporter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, []string{"clickbait"}, got.Preferences.AvoidKeywords)
}

func TestSQLite_LearningData_VersionConflict(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	data := model.DefaultLearningData("news-reporter")
	require.NoError(t, st.SaveLearningData(ctx, data))

	stale := model.DefaultLearningData("news-reporter")
	stale.Version = 0 // insert path, row already exists
	assert.ErrorIs(t, st.SaveLearningData(ctx, stale), ErrVersionConflict)

	stale.Version = 99 // update path, wrong version
	assert.ErrorIs(t, st.SaveLearningData(ctx, stale), ErrVersionConflict)
}

// --- Trending Topics ---

func TestSQLite_TrendingTopics_UpsertAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, st.UpsertTrendingTopics(ctx, []model.TrendingTopic{
		{Topic: "metro expansion", Score: 0.4, CapturedAt: now},
		{Topic: "gitex", Score: 0.9, CapturedAt: now},
	}))
	// second upsert overwrites the score
	require.NoError(t, st.UpsertTrendingTopics(ctx, []model.TrendingTopic{
		{Topic: "metro expansion", Score: 0.95, CapturedAt: now},
	}))

	topics, err := st.ListTrendingTopics(ctx, 10)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "metro expansion", topics[0].Topic)
	assert.InDelta(t, 0.95, topics[0].Score, 1e-9)
}

// --- Content Performance ---

func TestSQLite_ContentPerformance_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.RecordContentPerformance(ctx, &model.ContentPerformance{
			AgentID:     "news-reporter",
			ItemID:      "item-" + string(rune('a'+i)),
			Category:    "transport",
			Engagement:  0.5,
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, st.RecordContentPerformance(ctx, &model.ContentPerformance{
		AgentID:     "business-reporter",
		ItemID:      "item-x",
		PublishedAt: base,
	}))

	perf, err := st.ListContentPerformance(ctx, "news-reporter", 2)
	require.NoError(t, err)
	require.Len(t, perf, 2)
	// newest first
	assert.Equal(t, "item-c", perf[0].ItemID)
	assert.Equal(t, "transport", perf[0].Category)
}

// --- Market Indicators ---

func TestSQLite_MarketIndicators_LatestPerName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	recent := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.RecordMarketIndicators(ctx, []model.MarketIndicator{
		{Name: "DFM", Value: 4100, Change: -0.2, Unit: "index", AsOf: old},
		{Name: "DFM", Value: 4150, Change: 1.2, Unit: "index", AsOf: recent},
		{Name: "Brent", Value: 82.5, Change: 0.4, Unit: "USD", AsOf: recent},
	}))

	indicators, err := st.LatestMarketIndicators(ctx)
	require.NoError(t, err)
	require.Len(t, indicators, 2)

	byName := map[string]model.MarketIndicator{}
	for _, mi := range indicators {
		byName[mi.Name] = mi
	}
	assert.InDelta(t, 4150, byName["DFM"].Value, 1e-9)
	assert.InDelta(t, 82.5, byName["Brent"].Value, 1e-9)
}

// --- Conditions ---

func TestSQLite_Conditions_LatestByKind(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	recent := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.RecordConditions(ctx, &model.ConditionsSnapshot{
		Kind: "weather", Summary: "sunny 38C", CapturedAt: old,
	}))
	require.NoError(t, st.RecordConditions(ctx, &model.ConditionsSnapshot{
		Kind: "weather", Summary: "sandstorm warning", Severity: "high",
		Data: map[string]any{"visibility_km": 1.5}, CapturedAt: recent,
	}))

	snap, err := st.LatestConditions(ctx, "weather")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "sandstorm warning", snap.Summary)
	assert.Equal(t, "high", snap.Severity)
	assert.InDelta(t, 1.5, snap.Data["visibility_km"], 1e-9)
}

func TestSQLite_Conditions_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	snap, err := st.LatestConditions(context.Background(), "traffic")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

// --- Agent Runs ---

func TestSQLite_AgentRuns_RecordAndFilter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.RecordAgentRun(ctx, &model.AgentRun{
		AgentID: "news-reporter", StartedAt: now.Add(-48 * time.Hour),
		SourcesOK: 3, ItemsFetched: 10, ItemsValid: 7, TotalTokens: 2000, TotalCost: 0.04,
	}))
	require.NoError(t, st.RecordAgentRun(ctx, &model.AgentRun{
		AgentID: "news-reporter", StartedAt: now, DurationMS: 1500,
		SourcesOK: 2, SourcesFailed: 1, ItemsFetched: 8, ItemsValid: 5,
		TotalTokens: 1800, TotalCost: 0.03, Error: "one source timed out",
	}))
	require.NoError(t, st.RecordAgentRun(ctx, &model.AgentRun{
		AgentID: "tourism-reporter", StartedAt: now,
	}))

	runs, err := st.ListAgentRuns(ctx, AgentRunFilter{
		AgentID:      "news-reporter",
		CreatedAfter: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "one source timed out", runs[0].Error)
	assert.Equal(t, int64(1500), runs[0].DurationMS)

	all, err := st.ListAgentRuns(ctx, AgentRunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
