package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var businessKeywords = []string{
	"market", "stock", "investment", "economy", "business", "trade",
	"property", "real estate", "bank", "finance", "dfm", "adx", "ipo",
	"revenue", "profit", "startup", "free zone", "difc",
}

func businessProfile(deps Deps, cfg model.AgentConfig) Profile {
	return Profile{
		Config: cfg,
		Hooks: agent.Hooks{
			FetchSource: func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error) {
				return fetchBusinessSource(ctx, deps, src)
			},
			Relevance: businessRelevance,
			BuildPrompt: func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string {
				return articlePrompt(item, style, prefs, []string{
					"Open with the headline number and its direction of change.",
					"Separate reported facts from analyst commentary.",
				})
			},
			Less: func(a, b *model.ContentItem) bool {
				return businessLess(deps.localNow(), a, b)
			},
			Extras: []func(ctx context.Context) (*model.ContentItem, error){
				func(ctx context.Context) (*model.ContentItem, error) {
					return marketAnalysisItem(ctx, deps)
				},
			},
		},
	}
}

// marketDataPayload is the shape returned by fetch-market-data.
type marketDataPayload struct {
	Indicators []struct {
		Name   string  `json:"name"`
		Value  float64 `json:"value"`
		Change float64 `json:"change"`
		Unit   string  `json:"unit"`
		AsOf   string  `json:"as_of"`
	} `json:"indicators"`
	Headlines []struct {
		Title       string `json:"title"`
		Summary     string `json:"summary"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
	} `json:"headlines"`
}

// propertyPayload is the shape returned by fetch-property-data.
type propertyPayload struct {
	Reports []struct {
		Title       string  `json:"title"`
		Body        string  `json:"body"`
		Area        string  `json:"area"`
		PriceChange float64 `json:"price_change"`
		URL         string  `json:"url"`
		PublishedAt string  `json:"published_at"`
	} `json:"reports"`
}

func fetchBusinessSource(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	switch src.Function {
	case "fetch-market-data":
		return fetchMarketData(ctx, deps, src)

	case "fetch-bloomberg-news":
		var payload newsAPIPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		return mapNewsAPIArticles(src, payload, "markets"), nil

	case "fetch-property-data":
		var payload propertyPayload
		if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
			return nil, err
		}
		items := make([]model.ContentItem, 0, len(payload.Reports))
		for _, raw := range payload.Reports {
			items = append(items, model.ContentItem{
				ID:       newItemID(),
				Title:    raw.Title,
				Content:  raw.Body,
				Category: "real-estate",
				Tags:     []string{"property", strings.ToLower(raw.Area)},
				Source:   src,
				Metadata: model.ContentMetadata{
					OriginalURL: raw.URL,
					Custom: map[string]any{
						"area":         raw.Area,
						"price_change": raw.PriceChange,
					},
				},
				Status:      model.StatusFetched,
				PublishedAt: publishedOrNow(raw.PublishedAt),
			})
		}
		return items, nil

	default:
		return nil, eris.Errorf("reporter: business has no adapter for function %s", src.Function)
	}
}

// fetchMarketData maps market headlines into items and stores the indicator
// readings for the daily analysis digest. The indicator write is best
// effort.
func fetchMarketData(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	var payload marketDataPayload
	if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
		return nil, err
	}

	if len(payload.Indicators) > 0 {
		indicators := make([]model.MarketIndicator, 0, len(payload.Indicators))
		for _, raw := range payload.Indicators {
			indicators = append(indicators, model.MarketIndicator{
				Name:   raw.Name,
				Value:  raw.Value,
				Change: raw.Change,
				Unit:   raw.Unit,
				AsOf:   publishedOrNow(raw.AsOf),
			})
		}
		if err := deps.Store.RecordMarketIndicators(ctx, indicators); err != nil {
			zap.L().Warn("store market indicators failed", zap.Error(err))
		}
	}

	items := make([]model.ContentItem, 0, len(payload.Headlines))
	for _, raw := range payload.Headlines {
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    raw.Title,
			Content:  raw.Summary,
			Summary:  raw.Summary,
			Category: "markets",
			Source:   src,
			Metadata: model.ContentMetadata{
				OriginalURL: raw.URL,
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.PublishedAt),
		})
	}
	return items, nil
}

// businessRelevance favors market terminology and regulated-exchange
// categories.
func businessRelevance(item *model.ContentItem) float64 {
	score := keywordRelevance(item.Text(), businessKeywords, 0.12)
	switch item.Category {
	case "markets":
		score += 0.2
	case "real-estate":
		score += 0.15
	}
	if score > 1 {
		return 1
	}
	return score
}

// businessLess prefers market items during Dubai trading hours (10:00-15:00
// Sunday-Thursday), otherwise priority order.
func businessLess(now time.Time, a, b *model.ContentItem) bool {
	if duringTradingHours(now) && (a.Category == "markets") != (b.Category == "markets") {
		return a.Category == "markets"
	}
	return a.PriorityScore > b.PriorityScore
}

func duringTradingHours(now time.Time) bool {
	switch now.Weekday() {
	case time.Friday, time.Saturday:
		return false
	}
	return now.Hour() >= 10 && now.Hour() < 15
}

// marketAnalysisItem synthesizes a daily market digest from the stored
// indicators. Skipped outside business days or when no indicators exist.
func marketAnalysisItem(ctx context.Context, deps Deps) (*model.ContentItem, error) {
	now := deps.localNow()
	switch now.Weekday() {
	case time.Friday, time.Saturday:
		return nil, nil
	}

	indicators, err := deps.Store.LatestMarketIndicators(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "reporter: load market indicators")
	}
	if len(indicators) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize today's Dubai market picture for a general business audience in 200-300 words, based on these indicator readings:\n\n")
	for _, mi := range indicators {
		fmt.Fprintf(&b, "- %s: %.2f %s (%+.2f%%)\n", mi.Name, mi.Value, mi.Unit, mi.Change)
	}
	text, err := chatText(ctx, deps, "analysis", b.String())
	if err != nil {
		return nil, eris.Wrap(err, "reporter: market analysis synthesis")
	}

	return &model.ContentItem{
		ID:       newItemID(),
		Title:    fmt.Sprintf("Dubai Markets Today: %s", now.Format("2 January 2006")),
		Content:  text,
		Summary:  "Daily digest of Dubai market indicators.",
		Category: "markets",
		Tags:     []string{"markets", "daily-digest"},
		Source: model.DataSource{
			Type:     model.SourceAPI,
			Name:     "Market Analysis",
			Priority: model.PriorityHigh,
		},
		Status:      model.StatusFetched,
		PublishedAt: now,
	}, nil
}
