package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// sourceReliability maps substrings of a source name to a reliability
// weight. First match wins; unknown sources score 0.3.
var sourceReliability = []struct {
	substr string
	weight float64
}{
	{"government", 1.0},
	{"official", 0.9},
	{"dubai media office", 0.9},
	{"rta", 0.9},
	{"gulf news", 0.8},
	{"khaleej times", 0.8},
	{"the national", 0.8},
	{"bloomberg", 0.8},
	{"reuters", 0.8},
	{"news", 0.6},
	{"api", 0.5},
	{"blog", 0.4},
	{"social", 0.3},
}

func sourceReliabilityScore(name string) float64 {
	lower := strings.ToLower(name)
	for _, sr := range sourceReliability {
		if strings.Contains(lower, sr.substr) {
			return sr.weight
		}
	}
	return 0.3
}

// calculateQuality scores structural completeness, length, imagery, source
// reliability, and an AI judgment of writing quality.
func (a *Agent) calculateQuality(ctx context.Context, item *model.ContentItem) float64 {
	var score float64

	if wc := item.WordCount(); wc >= 300 && wc <= 1500 {
		score += 0.2
	}
	if item.Title != "" && item.Content != "" && item.Summary != "" {
		score += 0.2
	}
	if len(item.Metadata.ImageURLs) > 0 {
		score += 0.1
	}
	score += 0.3 * sourceReliabilityScore(item.Source.Name)

	judged, err := a.judgeScore(ctx, qualityJudgePrompt(item))
	if err != nil {
		zap.L().Warn("quality judge failed",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
		judged = a.fallbackScore()
	}
	score += 0.2 * judged

	return clamp01(score)
}

func qualityJudgePrompt(item *model.ContentItem) string {
	return fmt.Sprintf(
		"Rate the writing quality of the following content on a scale of 0 to 1, considering clarity, structure, and completeness. Respond with only the number.\n\nTitle: %s\n\n%s",
		item.Title, truncate(item.Content, 2000))
}
