package reporter

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var lifestyleKeywords = []string{
	"restaurant", "dining", "brunch", "cafe", "event", "festival",
	"concert", "exhibition", "nightlife", "fitness", "wellness", "shopping",
	"fashion", "art", "family", "weekend", "opening", "pop-up",
}

func lifestyleProfile(deps Deps, cfg model.AgentConfig) Profile {
	return Profile{
		Config: cfg,
		Hooks: agent.Hooks{
			FetchSource: func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error) {
				return fetchLifestyleSource(ctx, deps, src)
			},
			Relevance: lifestyleRelevance,
			BuildPrompt: func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string {
				return articlePrompt(item, style, prefs, []string{
					"Write like a local sharing a find, not a press release.",
					"Include dates, location, and booking details where known.",
				})
			},
		},
	}
}

func fetchLifestyleSource(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	switch src.Function {
	case "fetch-rss":
		var payload rssPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapRSSItems(src, payload, "events"), nil

	case "fetch-news-api":
		var payload newsAPIPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapNewsAPIArticles(src, payload, "events"), nil

	case "fetch-social-updates":
		var payload socialPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		items := mapSocialPosts(src, payload, "social")
		// keep only posts with meaningful traction
		kept := items[:0]
		for _, item := range items {
			if engagement(item) >= 50 {
				kept = append(kept, item)
			}
		}
		return kept, nil

	default:
		return nil, eris.Errorf("reporter: lifestyle has no adapter for function %s", src.Function)
	}
}

func engagement(item model.ContentItem) int {
	if item.Metadata.Custom == nil {
		return 0
	}
	switch v := item.Metadata.Custom["engagement"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// lifestyleRelevance rewards leisure vocabulary and event-style categories.
func lifestyleRelevance(item *model.ContentItem) float64 {
	score := keywordRelevance(item.Text(), lifestyleKeywords, 0.12)
	switch item.Category {
	case "events", "dining":
		score += 0.15
	}
	if score > 1 {
		return 1
	}
	return score
}
