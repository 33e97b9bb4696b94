package reporter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

func TestFetchTourismSource_TripAdvisor(t *testing.T) {
	deps := testDeps()
	edge := deps.Edge.(*stubEdge)
	edge.payloads["fetch-tripadvisor"] = map[string]any{
		"attractions": []map[string]any{{
			"name":        "Museum of the Future",
			"description": "Landmark museum on Sheikh Zayed Road.",
			"rating":      4.7,
			"reviews":     15000,
			"url":         "https://example.com/motf",
			"category":    "Museums",
		}},
	}

	src := model.DataSource{Name: "TripAdvisor", Function: "fetch-tripadvisor", Priority: model.PriorityMedium}
	items, err := fetchTourismSource(context.Background(), deps, src)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "attractions", items[0].Category)
	assert.Equal(t, 4.7, items[0].Metadata.Custom["rating"])
	assert.Contains(t, items[0].Tags, "museums")
}

func TestTourismRelevance_RatingBonus(t *testing.T) {
	base := &model.ContentItem{
		Title:   "Desert safari experience for tourists",
		Content: "A guided tour of the desert with dinner.",
	}
	top := *base
	top.Metadata.Custom = map[string]any{"rating": 4.8}
	good := *base
	good.Metadata.Custom = map[string]any{"rating": 4.2}

	assert.InDelta(t, 0.2, tourismRelevance(&top)-tourismRelevance(base), 1e-9)
	assert.InDelta(t, 0.1, tourismRelevance(&good)-tourismRelevance(base), 1e-9)
}

func TestTourismLess_PrefersHigherRated(t *testing.T) {
	top := &model.ContentItem{Metadata: model.ContentMetadata{Custom: map[string]any{"rating": 4.8}}}
	low := &model.ContentItem{Metadata: model.ContentMetadata{Custom: map[string]any{"rating": 3.9}}, PriorityScore: 0.9}

	assert.True(t, tourismLess(top, low))
	assert.False(t, tourismLess(low, top))
}

func TestSeasonalRecommendations_WeatherConditioned(t *testing.T) {
	deps := testDeps()
	deps.AI = &stubAI{reply: `[
		{"name": "Dubai Aquarium", "description": "Underwater zoo inside the mall.", "setting": "indoor"},
		{"name": "Ski Dubai", "description": "Indoor slopes all year.", "setting": "indoor"}
	]`}
	require.NoError(t, deps.Store.RecordConditions(context.Background(), &model.ConditionsSnapshot{
		Kind:     "weather",
		Summary:  "44C heat advisory",
		Severity: "high",
	}))

	item, err := seasonalRecommendations(context.Background(), deps)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "recommendations", item.Category)
	assert.Contains(t, item.Title, "Indoor")
	assert.Contains(t, item.Content, "Dubai Aquarium")
	assert.Contains(t, item.Content, "44C heat advisory")
}

func TestSeasonalRecommendations_SeasonFromClock(t *testing.T) {
	deps := testDeps()
	deps.AI = &stubAI{reply: `[{"name": "Ski Dubai", "description": "Indoor slopes all year.", "setting": "indoor"}]`}

	// July with no stored weather snapshot still steers indoor.
	deps.Now = func() time.Time { return time.Date(2026, 7, 10, 10, 0, 0, 0, gulfLocation) }
	item, err := seasonalRecommendations(context.Background(), deps)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Contains(t, item.Title, "Indoor")

	// December defaults outdoor.
	deps.Now = func() time.Time { return time.Date(2026, 12, 10, 10, 0, 0, 0, gulfLocation) }
	item, err = seasonalRecommendations(context.Background(), deps)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Contains(t, item.Title, "Outdoor")
}

func TestExtractJSON(t *testing.T) {
	wrapped := "Here are my picks:\n[{\"name\": \"A\"}]\nEnjoy!"
	assert.Equal(t, `[{"name": "A"}]`, extractJSON(wrapped))

	clean := `{"name": "B"}`
	assert.Equal(t, clean, extractJSON(clean))

	assert.Equal(t, "no json here", extractJSON("no json here"))
}

func TestIsHotSeason(t *testing.T) {
	assert.True(t, isHotSeason(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, isHotSeason(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, isHotSeason(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
}
