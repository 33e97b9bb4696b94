package agent

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

func TestDubaiKeywordScore_MonotonicInHits(t *testing.T) {
	texts := []string{
		"a city announcement",
		"a Dubai announcement",
		"a Dubai announcement from the RTA",
		"a Dubai announcement from the RTA near Jumeirah",
	}
	prev := -1.0
	for _, text := range texts {
		score := dubaiKeywordScore(text)
		assert.GreaterOrEqual(t, score, prev, "adding a keyword must not lower the score: %q", text)
		prev = score
	}
}

func TestDubaiKeywordScore_Capped(t *testing.T) {
	all := "dubai uae emirates sheikh burj jumeirah deira marina downtown dxb rta dewa emaar expo"
	assert.LessOrEqual(t, dubaiKeywordScore(all+" "+all), 1.0)
}

func TestCalculateRelevance_Weights(t *testing.T) {
	ai := newFakeAI()
	ai.score = "1.0"
	hooks := Hooks{Relevance: func(*model.ContentItem) float64 { return 1.0 }}
	a := newTestAgent(t, Options{AI: ai, Hooks: hooks})

	// zero keyword hits: 0.4 specialty + 0.3 semantic
	item := &model.ContentItem{Title: "City update", Content: "general announcement"}
	score := a.CalculateRelevance(context.Background(), item)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestCalculateRelevance_AIFailureFallsBack(t *testing.T) {
	ai := newFakeAI()
	ai.err = eris.New("gateway timeout")
	hooks := Hooks{Relevance: func(*model.ContentItem) float64 { return 0.5 }}
	a := newTestAgent(t, Options{AI: ai, Hooks: hooks})

	item := &model.ContentItem{Title: "City update", Content: "general announcement"}
	// 0.4*0.5 + 0.3*0.5 fallback
	assert.InDelta(t, 0.35, a.CalculateRelevance(context.Background(), item), 1e-9)
}

func TestParseScore(t *testing.T) {
	assert.InDelta(t, 0.85, parseScore("0.85", 0.5), 1e-9)
	assert.InDelta(t, 0.85, parseScore("  0.85 because the item is local", 0.5), 1e-9)
	assert.InDelta(t, 0.7, parseScore("0.7.", 0.5), 1e-9)
	assert.InDelta(t, 0.5, parseScore("definitely relevant", 0.5), 1e-9)
	assert.InDelta(t, 0.5, parseScore("", 0.5), 1e-9)
	assert.InDelta(t, 1.0, parseScore("12", 0.5), 1e-9) // clamped
}

func TestCalculatePriority_RecencyAndSource(t *testing.T) {
	a := newTestAgent(t, Options{})

	item := &model.ContentItem{
		Title:       "Dubai Alert",
		Content:     "update",
		Source:      model.DataSource{Name: "Dubai Media Office", Priority: model.PriorityHigh},
		PublishedAt: fixedNow().Add(-30 * time.Second),
	}
	score := a.CalculatePriority(context.Background(), item)
	assert.GreaterOrEqual(t, score, 0.6)
}

func TestCalculatePriority_TrendingBonus(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.UpsertTrendingTopics(context.Background(),
		[]model.TrendingTopic{{Topic: "metro expansion", Score: 0.9}}))
	a := newTestAgent(t, Options{Store: st})

	base := &model.ContentItem{
		Title:       "Dubai roadworks",
		Content:     "update",
		Source:      model.DataSource{Name: "x", Priority: model.PriorityLow},
		PublishedAt: fixedNow().Add(-48 * time.Hour),
	}
	trending := *base
	trending.Title = "Metro expansion reaches phase two"

	plain := a.CalculatePriority(context.Background(), base)
	boosted := a.CalculatePriority(context.Background(), &trending)
	assert.InDelta(t, 0.3, boosted-plain, 1e-9)
}

func TestCalculatePriority_LearnedKeywordBonus(t *testing.T) {
	st := newFakeStore()
	ld := model.DefaultLearningData("news-reporter")
	ld.Preferences.TopKeywords = []string{"brunch"}
	require.NoError(t, st.SaveLearningData(context.Background(), ld))

	a := newTestAgent(t, Options{Store: st})
	require.NoError(t, a.Initialize(context.Background()))

	item := &model.ContentItem{
		Title:       "Best brunch spots this weekend",
		Content:     "guide",
		Source:      model.DataSource{Name: "x", Priority: model.PriorityLow},
		PublishedAt: fixedNow().Add(-48 * time.Hour),
	}
	// 0.1 source + 0.1 keyword
	assert.InDelta(t, 0.2, a.CalculatePriority(context.Background(), item), 1e-9)
}

func TestCalculatePriority_ClampedToOne(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, st.UpsertTrendingTopics(context.Background(),
		[]model.TrendingTopic{{Topic: "dubai", Score: 1}}))
	ld := model.DefaultLearningData("news-reporter")
	ld.Preferences.TopKeywords = []string{"dubai"}
	require.NoError(t, st.SaveLearningData(context.Background(), ld))

	a := newTestAgent(t, Options{Store: st})
	require.NoError(t, a.Initialize(context.Background()))

	item := &model.ContentItem{
		Title:       "Dubai breaking news",
		Content:     "now",
		Source:      model.DataSource{Name: "gov", Priority: model.PriorityHigh},
		PublishedAt: fixedNow().Add(-time.Minute),
	}
	assert.InDelta(t, 1.0, a.CalculatePriority(context.Background(), item), 1e-9)
}

func TestSourceReliabilityScore(t *testing.T) {
	assert.InDelta(t, 1.0, sourceReliabilityScore("Government of Dubai"), 1e-9)
	assert.InDelta(t, 0.9, sourceReliabilityScore("Official RTA Feed"), 1e-9)
	assert.InDelta(t, 0.8, sourceReliabilityScore("Gulf News"), 1e-9)
	assert.InDelta(t, 0.3, sourceReliabilityScore("random aggregator"), 1e-9)
}

func TestCalculateQuality_Components(t *testing.T) {
	ai := newFakeAI()
	ai.score = "1.0"
	a := newTestAgent(t, Options{AI: ai})

	item := &model.ContentItem{
		Title:    "Dubai Guide",
		Content:  longBody(30), // 300 words
		Summary:  "A guide.",
		Source:   model.DataSource{Name: "Government of Dubai"},
		Metadata: model.ContentMetadata{ImageURLs: []string{"https://img.example/a.jpg"}},
	}
	// 0.2 length + 0.2 completeness + 0.1 images + 0.3 reliability + 0.2 judged
	assert.InDelta(t, 1.0, a.calculateQuality(context.Background(), item), 1e-9)

	bare := &model.ContentItem{
		Title:   "Dubai Guide",
		Content: "too short",
		Source:  model.DataSource{Name: "random aggregator"},
	}
	// 0.3*0.3 reliability + 0.2 judged only
	assert.InDelta(t, 0.29, a.calculateQuality(context.Background(), bare), 1e-9)
}
