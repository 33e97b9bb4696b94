package agent

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/store"
)

const (
	maxPatternExamples = 10
	maxKeywords        = 20
	saveAttempts       = 3
)

// LearnFromFeedback folds one human rating into the learning store. Ratings
// of 4+ reinforce the item's category and keywords; ratings of 2 or below
// add the keywords to the avoid list. "shorter"/"longer" improvement notes
// nudge the preferred article length. The save is a compare-and-swap: on a
// version conflict the record is reloaded and the mutation reapplied.
func (a *Agent) LearnFromFeedback(ctx context.Context, fb *model.Feedback) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return eris.Errorf("agent %s: rating must be 1-5, got %d", a.cfg.ID, fb.Rating)
	}
	err := a.mutateLearning(ctx, func(ld *model.LearningData) {
		applyFeedback(ld, fb)
	})
	if err != nil {
		return eris.Wrapf(err, "agent %s: learn from feedback", a.cfg.ID)
	}
	zap.L().Info("feedback applied",
		zap.String("agent", a.cfg.ID),
		zap.String("category", fb.Category),
		zap.Int("rating", fb.Rating))
	return nil
}

// mutateLearning applies mutate to the persisted learning data under
// optimistic concurrency, retrying on version conflicts.
func (a *Agent) mutateLearning(ctx context.Context, mutate func(*model.LearningData)) error {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		ld, err := a.store.GetLearningData(ctx, a.cfg.ID)
		if err != nil {
			return err
		}
		if ld == nil {
			ld = model.DefaultLearningData(a.cfg.ID)
		}
		mutate(ld)

		err = a.store.SaveLearningData(ctx, ld)
		if err == nil {
			a.mu.Lock()
			a.learning = ld
			a.mu.Unlock()
			return nil
		}
		if !eris.Is(err, store.ErrVersionConflict) {
			return err
		}
		lastErr = err
		zap.L().Debug("learning data version conflict, retrying",
			zap.String("agent", a.cfg.ID),
			zap.Int("attempt", attempt+1))
	}
	return lastErr
}

func applyFeedback(ld *model.LearningData, fb *model.Feedback) {
	keywords := extractKeywords(fb.Title + " " + fb.Content)

	switch {
	case fb.Rating >= 4:
		stats := ld.SuccessfulPatterns[fb.Category]
		stats.SuccessRate = runningAverage(stats.SuccessRate, stats.Frequency, float64(fb.Rating))
		stats.Frequency++
		if fb.Title != "" && len(stats.Examples) < maxPatternExamples {
			stats.Examples = append(stats.Examples, fb.Title)
		}
		ld.SuccessfulPatterns[fb.Category] = stats
		ld.Preferences.TopKeywords = mergeKeywords(ld.Preferences.TopKeywords, keywords)

	case fb.Rating <= 2:
		stats := ld.FailedPatterns[fb.Category]
		stats.SuccessRate = runningAverage(stats.SuccessRate, stats.Frequency, float64(fb.Rating))
		stats.Frequency++
		ld.FailedPatterns[fb.Category] = stats
		ld.Preferences.AvoidKeywords = mergeKeywords(ld.Preferences.AvoidKeywords, keywords)
	}

	for _, note := range fb.Improvements {
		lower := strings.ToLower(note)
		if strings.Contains(lower, "shorter") {
			ld.Preferences.PreferredLength.Optimal = int(float64(ld.Preferences.PreferredLength.Optimal) * 0.9)
		}
		if strings.Contains(lower, "longer") {
			ld.Preferences.PreferredLength.Optimal = int(float64(ld.Preferences.PreferredLength.Optimal) * 1.1)
		}
	}
	clampOptimalLength(&ld.Preferences.PreferredLength)
}

func clampOptimalLength(lp *model.LengthPreference) {
	if lp.Min > 0 && lp.Optimal < lp.Min {
		lp.Optimal = lp.Min
	}
	if lp.Max > 0 && lp.Optimal > lp.Max {
		lp.Optimal = lp.Max
	}
}

func runningAverage(avg float64, n int, v float64) float64 {
	return (avg*float64(n) + v) / float64(n+1)
}

var stopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"will": true, "been": true, "were": true, "they": true, "their": true,
	"there": true, "about": true, "which": true, "would": true, "could": true,
	"into": true, "more": true, "than": true, "when": true, "what": true,
	"where": true, "after": true, "before": true, "over": true, "also": true,
}

// extractKeywords lowercases the text, strips punctuation, drops stopwords
// and short tokens, and returns the five most frequent remaining words.
func extractKeywords(text string) []string {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()[]")
		if len(word) <= 3 || stopwords[word] {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > 5 {
		words = words[:5]
	}
	return words
}

// mergeKeywords appends new keywords that are not already present, capping
// the list length with oldest entries evicted first.
func mergeKeywords(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, k := range existing {
		seen[k] = true
	}
	for _, k := range incoming {
		if !seen[k] {
			existing = append(existing, k)
			seen[k] = true
		}
	}
	if len(existing) > maxKeywords {
		existing = existing[len(existing)-maxKeywords:]
	}
	return existing
}
