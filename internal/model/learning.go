package model

import "time"

// PatternStats tracks how a content category has performed with readers.
type PatternStats struct {
	Frequency   int      `json:"frequency"`
	SuccessRate float64  `json:"success_rate"` // running average of ratings
	Examples    []string `json:"examples,omitempty"`
}

// LengthPreference is the preferred article length range in words.
type LengthPreference struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Optimal int `json:"optimal"`
}

// ContentPreferences holds keyword and length preferences adjusted by
// feedback.
type ContentPreferences struct {
	PreferredLength LengthPreference `json:"preferred_length"`
	TopKeywords     []string         `json:"top_keywords,omitempty"`
	AvoidKeywords   []string         `json:"avoid_keywords,omitempty"`
}

// LearningData is the per-agent mutable state persisted across runs. It is
// the only entity in the reporter subsystem with cross-run state. Version is
// an optimistic concurrency token: saves compare-and-swap on it so that
// overlapping runs cannot silently clobber each other.
type LearningData struct {
	AgentID            string                  `json:"agent_id"`
	SuccessfulPatterns map[string]PatternStats `json:"successful_patterns"`
	FailedPatterns     map[string]PatternStats `json:"failed_patterns"`
	PreferredSources   []string                `json:"preferred_sources,omitempty"`
	OptimalSchedule    ScheduleConfig          `json:"optimal_schedule"`
	Preferences        ContentPreferences      `json:"content_preferences"`

	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultLearningData returns the record created on first initialization:
// preferred length 300-1500 with optimal 800, empty keyword lists.
func DefaultLearningData(agentID string) *LearningData {
	return &LearningData{
		AgentID:            agentID,
		SuccessfulPatterns: make(map[string]PatternStats),
		FailedPatterns:     make(map[string]PatternStats),
		Preferences: ContentPreferences{
			PreferredLength: LengthPreference{Min: 300, Max: 1500, Optimal: 800},
		},
	}
}
