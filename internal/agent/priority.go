package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// CalculatePriority sums a recency bonus, a source-priority bonus, a
// trending-topic bonus, and a learned-keyword bonus, clamped to 1. Store
// failures skip the affected bonus.
func (a *Agent) CalculatePriority(ctx context.Context, item *model.ContentItem) float64 {
	score := recencyBonus(item.Age(a.now()))
	score += sourcePriorityBonus(item.Source.Priority)

	if a.isTrending(ctx, item) {
		score += 0.3
	}
	if a.matchesTopKeywords(item) {
		score += 0.1
	}
	return clamp01(score)
}

func recencyBonus(age time.Duration) float64 {
	switch {
	case age < time.Hour:
		return 0.3
	case age < 6*time.Hour:
		return 0.2
	case age < 24*time.Hour:
		return 0.1
	default:
		return 0
	}
}

func sourcePriorityBonus(p model.SourcePriority) float64 {
	switch p {
	case model.PriorityHigh:
		return 0.3
	case model.PriorityMedium:
		return 0.2
	case model.PriorityLow:
		return 0.1
	default:
		return 0
	}
}

// isTrending checks the item text against the platform's trending topics.
func (a *Agent) isTrending(ctx context.Context, item *model.ContentItem) bool {
	topics, err := a.store.ListTrendingTopics(ctx, 50)
	if err != nil {
		zap.L().Warn("trending topics lookup failed",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
		return false
	}
	text := strings.ToLower(item.Text())
	for _, tt := range topics {
		if tt.Topic != "" && strings.Contains(text, strings.ToLower(tt.Topic)) {
			return true
		}
	}
	return false
}

// matchesTopKeywords reports whether the item mentions any keyword the
// learning store has associated with well-received content.
func (a *Agent) matchesTopKeywords(item *model.ContentItem) bool {
	ld := a.learningSnapshot()
	text := strings.ToLower(item.Text())
	for _, kw := range ld.Preferences.TopKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
