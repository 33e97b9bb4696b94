package model

import "time"

// TrendingTopic is a hot topic surfaced by the dashboard side of the
// platform; the agents only read these for priority bonuses.
type TrendingTopic struct {
	Topic      string    `json:"topic"`
	Score      float64   `json:"score"`
	CapturedAt time.Time `json:"captured_at"`
}

// ContentPerformance is one engagement observation for a published item,
// used by schedule optimization.
type ContentPerformance struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agent_id"`
	ItemID      string    `json:"item_id"`
	Category    string    `json:"category,omitempty"`
	Engagement  float64   `json:"engagement"`
	PublishedAt time.Time `json:"published_at"`
}

// AgentRun records the outcome of one fetch cycle for usage and cost
// tracking.
type AgentRun struct {
	ID            string    `json:"id"`
	AgentID       string    `json:"agent_id"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	SourcesOK     int       `json:"sources_ok"`
	SourcesFailed int       `json:"sources_failed"`
	ItemsFetched  int       `json:"items_fetched"`
	ItemsValid    int       `json:"items_valid"`
	TotalTokens   int       `json:"total_tokens"`
	TotalCost     float64   `json:"total_cost"`
	Error         string    `json:"error,omitempty"`
}

// MarketIndicator is a stored economic indicator consumed by the business
// agent's market-analysis synthesis.
type MarketIndicator struct {
	Name   string    `json:"name"`
	Value  float64   `json:"value"`
	Change float64   `json:"change"` // percent vs previous reading
	Unit   string    `json:"unit,omitempty"`
	AsOf   time.Time `json:"as_of"`
}

// ConditionsSnapshot is the latest stored weather/traffic/air-quality
// reading, consumed by the conditions agent's rush-hour composite and the
// tourism agent's weather-conditioned recommendations.
type ConditionsSnapshot struct {
	Kind       string         `json:"kind"` // weather, traffic, air_quality
	Summary    string         `json:"summary"`
	Severity   string         `json:"severity,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	CapturedAt time.Time      `json:"captured_at"`
}
