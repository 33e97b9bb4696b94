package agent

import (
	"context"
	"strings"
	"time"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// Hooks are the per-specialty strategy functions injected into the shared
// engine. Only FetchSource, Relevance, and BuildPrompt are required; the
// rest fall back to generic behavior.
type Hooks struct {
	// FetchSource retrieves raw items from one configured source, usually by
	// invoking the source's proxy function and mapping the JSON payload.
	FetchSource func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error)

	// Relevance is the specialty heuristic folded into CalculateRelevance
	// at 0.4 weight. Must return a value in [0,1].
	Relevance func(item *model.ContentItem) float64

	// BuildPrompt produces the article-generation prompt for one item.
	BuildPrompt func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string

	// DedupKey computes the composite key used to collapse duplicate items.
	// Defaults to title+source name.
	DedupKey func(item *model.ContentItem) string

	// Less orders the filtered items, best first. Defaults to priority score
	// descending.
	Less func(a, b *model.ContentItem) bool

	// PostFilter runs after dedup and before validation, for domain rules
	// like dropping expired real-time items.
	PostFilter func(now time.Time, items []model.ContentItem) []model.ContentItem

	// Extras synthesize additional items that do not come from a configured
	// source, such as market-analysis digests or rush-hour composites. Each
	// may return (nil, nil) when its trigger conditions are not met.
	Extras []func(ctx context.Context) (*model.ContentItem, error)
}

func defaultDedupKey(item *model.ContentItem) string {
	return strings.ToLower(strings.TrimSpace(item.Title)) + "|" + item.Source.Name
}

func defaultLess(a, b *model.ContentItem) bool {
	return a.PriorityScore > b.PriorityScore
}
