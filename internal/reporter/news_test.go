package reporter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

func TestFetchNewsSource_RSSMapping(t *testing.T) {
	deps := testDeps()
	edge := deps.Edge.(*stubEdge)
	edge.payloads["fetch-rss"] = map[string]any{
		"items": []map[string]any{{
			"title":       "RTA ANNOUNCES ROAD UPGRADE",
			"description": "Upgrade work begins next month.",
			"content":     "The Roads and Transport Authority announced a major upgrade.",
			"link":        "https://mediaoffice.ae/news/1",
			"author":      "Media Office",
			"pub_date":    "2026-03-14T08:00:00Z",
			"categories":  []string{"Transport"},
			"image_urls":  []string{"https://mediaoffice.ae/img/1.jpg"},
		}},
	}

	src := model.DataSource{Type: model.SourceGovernment, Name: "Dubai Media Office", Function: "fetch-rss", Priority: model.PriorityHigh}
	items, err := fetchNewsSource(context.Background(), deps, src)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "Rta Announces Road Upgrade", got.Title) // all-caps headline normalized
	assert.Equal(t, "transport", got.Category)
	assert.Equal(t, "Upgrade work begins next month.", got.Summary)
	assert.Equal(t, "https://mediaoffice.ae/news/1", got.Metadata.OriginalURL)
	assert.Len(t, got.Metadata.ImageURLs, 1)
	assert.Equal(t, model.StatusFetched, got.Status)
	assert.NotEmpty(t, got.ID)
}

func TestFetchNewsSource_UnknownFunction(t *testing.T) {
	deps := testDeps()
	src := model.DataSource{Name: "Mystery", Function: "fetch-unknown"}
	_, err := fetchNewsSource(context.Background(), deps, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no adapter")
}

func TestNewsRelevance_GovernmentBonus(t *testing.T) {
	item := &model.ContentItem{
		Title:   "Government announces new metro project",
		Content: "The announcement covers infrastructure development.",
		Source:  model.DataSource{Type: model.SourceGovernment},
	}
	withBonus := newsRelevance(item)

	item.Source.Type = model.SourceRSS
	without := newsRelevance(item)
	assert.InDelta(t, 0.2, withBonus-without, 1e-9)
}

// A fresh high-priority government announcement should clear validation and
// rank near the top once its topic is trending.
func TestNewsPipeline_MetroAnnouncement(t *testing.T) {
	deps := testDeps()
	edge := deps.Edge.(*stubEdge)

	body := strings.TrimSpace(strings.Repeat(
		"The government will announce detailed plans for the new metro line. "+
			"Officials announce expanded park-and-ride capacity alongside the route. ", 16)) // 200+ words
	edge.payloads["fetch-rss"] = map[string]any{
		"items": []map[string]any{{
			"title":    "Dubai Announces New Metro Line",
			"content":  body,
			"link":     "https://mediaoffice.ae/news/metro",
			"pub_date": time.Now().UTC().Add(-5 * time.Minute).Format(time.RFC3339),
		}},
	}
	edge.errs["fetch-news-api"] = eris.New("quota exceeded")
	edge.errs["fetch-social-updates"] = eris.New("quota exceeded")

	require.NoError(t, deps.Store.UpsertTrendingTopics(context.Background(),
		[]model.TrendingTopic{{Topic: "metro line", Score: 0.9}}))

	reg, err := Agents(deps)
	require.NoError(t, err)
	news, err := reg.Get(model.SpecialtyNews)
	require.NoError(t, err)
	require.NoError(t, news.Initialize(context.Background()))

	res, err := news.FetchContent(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Items, 1, "the announcement must survive validation")
	got := res.Items[0]
	assert.GreaterOrEqual(t, got.PriorityScore, 0.8)
	assert.GreaterOrEqual(t, got.RelevanceScore, 0.3)
	assert.Equal(t, 2, res.SourcesFailed)
}

func TestNewsGenerateArticle_UsesStyle(t *testing.T) {
	deps := testDeps()
	deps.AI = &promptCapturingAI{stubAI: stubAI{reply: strings.Repeat("Article body. ", 30)}}

	reg, err := Agents(deps)
	require.NoError(t, err)
	news, err := reg.Get(model.SpecialtyNews)
	require.NoError(t, err)

	item := &model.ContentItem{
		ID:       "n1",
		Title:    "Dubai Announces New Metro Line",
		Content:  "The RTA confirmed the route.",
		Category: "transport",
	}
	text, err := news.GenerateArticle(context.Background(), item)
	require.NoError(t, err)
	assert.Contains(t, text, "Article body.")

	capture := deps.AI.(*promptCapturingAI)
	assert.Contains(t, capture.lastPrompt, "Dubai Announces New Metro Line")
	assert.Contains(t, capture.lastPrompt, "Structure as news")
}

// promptCapturingAI records the last user prompt it saw.
type promptCapturingAI struct {
	stubAI
	lastPrompt string
}

func (p *promptCapturingAI) ChatCompletion(ctx context.Context, req openrouter.ChatCompletionRequest) (*openrouter.ChatCompletionResponse, error) {
	p.lastPrompt = req.Messages[len(req.Messages)-1].Content
	return p.stubAI.ChatCompletion(ctx, req)
}
