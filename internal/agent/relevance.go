package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/pkg/openrouter"
)

// dubaiKeywords is the fixed local-relevance vocabulary shared by every
// specialty. Each hit adds 0.1 to the keyword component, capped at 1.
var dubaiKeywords = []string{
	"dubai", "uae", "emirates", "sheikh", "burj", "jumeirah", "deira",
	"marina", "downtown", "dxb", "rta", "dewa", "emaar", "expo",
	"al maktoum", "bur dubai", "business bay", "palm",
}

// CalculateRelevance combines the Dubai keyword score (0.3 weight), the
// specialty heuristic (0.4), and an AI semantic judgment (0.3). An AI
// failure degrades to the configured fallback score rather than aborting.
func (a *Agent) CalculateRelevance(ctx context.Context, item *model.ContentItem) float64 {
	keyword := dubaiKeywordScore(item.Text())
	specialty := clamp01(a.hooks.Relevance(item))

	semantic, err := a.judgeScore(ctx, relevanceJudgePrompt(item))
	if err != nil {
		zap.L().Warn("relevance judge failed",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
		semantic = a.fallbackScore()
	}

	return clamp01(0.3*keyword + 0.4*specialty + 0.3*semantic)
}

// dubaiKeywordScore counts vocabulary hits at 0.1 apiece, capped at 1.
func dubaiKeywordScore(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range dubaiKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return min(0.1*float64(hits), 1)
}

func relevanceJudgePrompt(item *model.ContentItem) string {
	return fmt.Sprintf(
		"Rate how relevant the following content is to Dubai residents and visitors on a scale of 0 to 1. Respond with only the number.\n\nTitle: %s\n\n%s",
		item.Title, truncate(item.Content, 2000))
}

// judgeScore asks the analysis model for a bare number in [0,1].
func (a *Agent) judgeScore(ctx context.Context, prompt string) (float64, error) {
	text, err := a.chat(ctx, "analysis", []openrouter.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return 0, err
	}
	return parseScore(text, a.fallbackScore()), nil
}

// parseScore extracts a number from a judge reply, defaulting when the reply
// is not numeric and clamping out-of-range values.
func parseScore(text string, fallback float64) float64 {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.Trim(fields[0], ".,"), 64)
	if err != nil {
		return fallback
	}
	return clamp01(v)
}

func (a *Agent) fallbackScore() float64 {
	if a.scoring.FallbackScore > 0 {
		return a.scoring.FallbackScore
	}
	return 0.5
}

// suggestions asks the model for improvement suggestions; failures yield an
// empty list.
func (a *Agent) suggestions(ctx context.Context, item *model.ContentItem) []string {
	prompt := fmt.Sprintf(
		"Suggest up to three concrete improvements for this draft, one per line, no numbering.\n\nTitle: %s\n\n%s",
		item.Title, truncate(item.Content, 2000))
	text, err := a.chat(ctx, "analysis", []openrouter.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		zap.L().Warn("suggestions call failed",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
