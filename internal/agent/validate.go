package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

const minWordCount = 100

// ValidateContent rejects items with missing required fields, fewer than
// 100 words, a failed moderation check, or relevance below the floor. A
// moderation call failure defaults to approval so that an outage in the
// moderation function never blocks the pipeline.
func (a *Agent) ValidateContent(ctx context.Context, item *model.ContentItem) bool {
	if item.Title == "" || item.Content == "" || item.Source.Name == "" {
		return false
	}
	if item.WordCount() < minWordCount {
		return false
	}

	approved, err := a.edge.ModerateContent(ctx, item.Title, item.Content)
	if err != nil {
		zap.L().Warn("moderation check failed, approving by default",
			zap.String("agent", a.cfg.ID),
			zap.String("title", item.Title),
			zap.Error(err))
		approved = true
	}
	if !approved {
		zap.L().Info("item rejected by moderation",
			zap.String("agent", a.cfg.ID),
			zap.String("title", item.Title))
		return false
	}

	floor := a.scoring.RelevanceFloor
	if floor <= 0 {
		floor = 0.3
	}
	return item.RelevanceScore >= floor
}
