package reporter

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var newsKeywords = []string{
	"announce", "launch", "government", "minister", "ruler", "decree",
	"municipality", "police", "court", "law", "regulation", "infrastructure",
	"metro", "road", "airport", "development", "project", "opening",
}

func newsProfile(deps Deps, cfg model.AgentConfig) Profile {
	return Profile{
		Config: cfg,
		Hooks: agent.Hooks{
			FetchSource: func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error) {
				return fetchNewsSource(ctx, deps, src)
			},
			Relevance: newsRelevance,
			BuildPrompt: func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string {
				return articlePrompt(item, style, prefs, []string{
					"Structure as news: lede, supporting facts, context, outlook.",
					"Include when the change takes effect if the source states it.",
				})
			},
		},
	}
}

func fetchNewsSource(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	switch src.Function {
	case "fetch-rss":
		var payload rssPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		items := mapRSSItems(src, payload, "general")
		for i := range items {
			items[i].Title = agent.NormalizeHeadline(items[i].Title)
		}
		return items, nil

	case "fetch-news-api":
		var payload newsAPIPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapNewsAPIArticles(src, payload, "general"), nil

	case "fetch-social-updates":
		var payload socialPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapSocialPosts(src, payload, "social"), nil

	default:
		return nil, eris.Errorf("reporter: news has no adapter for function %s", src.Function)
	}
}

// newsRelevance favors announcement-style content and government sources.
func newsRelevance(item *model.ContentItem) float64 {
	score := keywordRelevance(item.Text(), newsKeywords, 0.15)
	if item.Source.Type == model.SourceGovernment {
		score += 0.2
	}
	if score > 1 {
		return 1
	}
	return score
}
