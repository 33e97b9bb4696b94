package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var titleCaser = cases.Title(language.English)

var tourismKeywords = []string{
	"tourist", "attraction", "hotel", "resort", "beach", "desert",
	"safari", "museum", "visit", "experience", "tour", "holiday",
	"landmark", "heritage", "adventure", "restaurant", "brunch",
}

func tourismProfile(deps Deps, cfg model.AgentConfig) Profile {
	return Profile{
		Config: cfg,
		Hooks: agent.Hooks{
			FetchSource: func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error) {
				return fetchTourismSource(ctx, deps, src)
			},
			Relevance: tourismRelevance,
			BuildPrompt: func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string {
				return articlePrompt(item, style, prefs, []string{
					"Paint the experience before listing logistics.",
					"End with how to get there and what it costs.",
				})
			},
			Less: tourismLess,
			Extras: []func(ctx context.Context) (*model.ContentItem, error){
				func(ctx context.Context) (*model.ContentItem, error) {
					return seasonalRecommendations(ctx, deps)
				},
			},
		},
	}
}

// tripAdvisorPayload is the shape returned by fetch-tripadvisor.
type tripAdvisorPayload struct {
	Attractions []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Rating      float64  `json:"rating"`
		Reviews     int      `json:"reviews"`
		URL         string   `json:"url"`
		ImageURLs   []string `json:"image_urls"`
		Category    string   `json:"category"`
	} `json:"attractions"`
}

// tourismBoardPayload is the shape returned by fetch-dubai-tourism.
type tourismBoardPayload struct {
	Announcements []struct {
		Title       string   `json:"title"`
		Body        string   `json:"body"`
		URL         string   `json:"url"`
		PublishedAt string   `json:"published_at"`
		ImageURLs   []string `json:"image_urls"`
	} `json:"announcements"`
}

func fetchTourismSource(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	switch src.Function {
	case "fetch-tripadvisor":
		var payload tripAdvisorPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		items := make([]model.ContentItem, 0, len(payload.Attractions))
		for _, raw := range payload.Attractions {
			items = append(items, model.ContentItem{
				ID:       newItemID(),
				Title:    raw.Name,
				Content:  raw.Description,
				Category: "attractions",
				Tags:     []string{"attraction", strings.ToLower(raw.Category)},
				Source:   src,
				Metadata: model.ContentMetadata{
					OriginalURL: raw.URL,
					ImageURLs:   raw.ImageURLs,
					Custom: map[string]any{
						"rating":  raw.Rating,
						"reviews": raw.Reviews,
					},
				},
				Status:      model.StatusFetched,
				PublishedAt: time.Now().UTC(),
			})
		}
		return items, nil

	case "fetch-dubai-tourism":
		var payload tourismBoardPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		items := make([]model.ContentItem, 0, len(payload.Announcements))
		for _, raw := range payload.Announcements {
			items = append(items, model.ContentItem{
				ID:       newItemID(),
				Title:    raw.Title,
				Content:  raw.Body,
				Category: "tourism-news",
				Source:   src,
				Metadata: model.ContentMetadata{
					OriginalURL: raw.URL,
					ImageURLs:   raw.ImageURLs,
				},
				Status:      model.StatusFetched,
				PublishedAt: publishedOrNow(raw.PublishedAt),
			})
		}
		return items, nil

	case "fetch-social-travel":
		var payload socialPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapSocialPosts(src, payload, "travel-social"), nil

	default:
		return nil, eris.Errorf("reporter: tourism has no adapter for function %s", src.Function)
	}
}

// tourismRelevance rewards visitor-facing vocabulary and highly rated
// attractions.
func tourismRelevance(item *model.ContentItem) float64 {
	score := keywordRelevance(item.Text(), tourismKeywords, 0.12)
	if rating := attractionRating(item); rating >= 4.5 {
		score += 0.2
	} else if rating >= 4.0 {
		score += 0.1
	}
	if score > 1 {
		return 1
	}
	return score
}

// tourismLess prefers higher-rated attractions, then priority order.
func tourismLess(a, b *model.ContentItem) bool {
	ra, rb := attractionRating(a), attractionRating(b)
	if ra != rb {
		return ra > rb
	}
	return a.PriorityScore > b.PriorityScore
}

func attractionRating(item *model.ContentItem) float64 {
	if item.Metadata.Custom == nil {
		return 0
	}
	if v, ok := item.Metadata.Custom["rating"].(float64); ok {
		return v
	}
	return 0
}

// seasonalRecommendation is one entry in the model's JSON reply.
type seasonalRecommendation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Setting     string `json:"setting"` // indoor or outdoor
}

// seasonalRecommendations asks the model for season-appropriate activity
// picks, steered indoor or outdoor by the latest stored weather snapshot.
func seasonalRecommendations(ctx context.Context, deps Deps) (*model.ContentItem, error) {
	now := deps.localNow()
	setting := "outdoor"
	weatherNote := "pleasant weather"
	if isHotSeason(now) {
		setting = "indoor"
		weatherNote = "peak summer heat"
	}
	if snap, err := deps.Store.LatestConditions(ctx, "weather"); err == nil && snap != nil {
		weatherNote = snap.Summary
		if snap.Severity == "high" || isHotSeason(now) {
			setting = "indoor"
		}
	}

	prompt := fmt.Sprintf(
		"Suggest 3 %s activities in Dubai suitable for %s right now. Respond with a JSON array of objects with fields name, description, setting. No other text.",
		setting, weatherNote)
	text, err := chatText(ctx, deps, "analysis", prompt)
	if err != nil {
		return nil, eris.Wrap(err, "reporter: seasonal recommendations")
	}

	var recs []seasonalRecommendation
	if err := json.Unmarshal([]byte(extractJSON(text)), &recs); err != nil {
		return nil, eris.Wrap(err, "reporter: parse seasonal recommendations")
	}
	if len(recs) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "With %s in Dubai, here are this week's picks.\n\n", weatherNote)
	for _, rec := range recs {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", rec.Name, rec.Description)
	}

	return &model.ContentItem{
		ID:       newItemID(),
		Title:    fmt.Sprintf("What to Do in Dubai This Week: %s Picks", titleCaser.String(setting)),
		Content:  b.String(),
		Summary:  fmt.Sprintf("Season-appropriate %s recommendations.", setting),
		Category: "recommendations",
		Tags:     []string{"recommendations", setting},
		Source: model.DataSource{
			Type:     model.SourceAPI,
			Name:     "Seasonal Recommendations",
			Priority: model.PriorityMedium,
		},
		Status:      model.StatusFetched,
		PublishedAt: now,
	}, nil
}

// isHotSeason covers the May-September stretch when outdoor daytime
// activity is impractical.
func isHotSeason(now time.Time) bool {
	return now.Month() >= time.May && now.Month() <= time.September
}

// extractJSON trims any prose the model wraps around a JSON array.
func extractJSON(text string) string {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	end := strings.LastIndexAny(text, "]}")
	if end < start {
		return text
	}
	return text[start : end+1]
}
