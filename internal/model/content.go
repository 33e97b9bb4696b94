package model

import (
	"strings"
	"time"
)

// ContentStatus represents where a content item sits in its lifecycle.
type ContentStatus string

const (
	StatusFetched   ContentStatus = "fetched"
	StatusAnalyzed  ContentStatus = "analyzed"
	StatusPublished ContentStatus = "published"
	StatusDiscarded ContentStatus = "discarded"
)

// ContentItem is one candidate article or update fetched from an external
// source, prior to publication. IDs are source-scoped, not globally durable.
type ContentItem struct {
	ID       string   `json:"id"`
	AgentID  string   `json:"agent_id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	Source   DataSource      `json:"source"`
	Metadata ContentMetadata `json:"metadata,omitempty"`

	// Mutable scores, recomputed each pipeline run.
	RelevanceScore float64 `json:"relevance_score"`
	PriorityScore  float64 `json:"priority_score"`

	Status      ContentStatus `json:"status"`
	PublishedAt time.Time     `json:"published_at"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// ContentMetadata carries provenance and source-specific extras.
type ContentMetadata struct {
	OriginalURL string         `json:"original_url,omitempty"`
	Author      string         `json:"author,omitempty"`
	ImageURLs   []string       `json:"image_urls,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// WordCount returns the number of whitespace-separated words in the body.
func (c *ContentItem) WordCount() int {
	return len(strings.Fields(c.Content))
}

// Age returns how long ago the item was published, relative to now.
func (c *ContentItem) Age(now time.Time) time.Duration {
	return now.Sub(c.PublishedAt)
}

// Text returns title and body joined, the surface most heuristics scan.
func (c *ContentItem) Text() string {
	return c.Title + " " + c.Content
}

// ContentAnalysis is the ephemeral result of scoring one item. It is
// computed per request and never persisted.
type ContentAnalysis struct {
	ItemID         string   `json:"item_id"`
	RelevanceScore float64  `json:"relevance_score"`
	PriorityScore  float64  `json:"priority_score"`
	QualityScore   float64  `json:"quality_score"`
	Reasons        []string `json:"reasons,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// Feedback is a human rating on a published item, fed back into the
// learning store.
type Feedback struct {
	ItemID       string   `json:"item_id"`
	AgentID      string   `json:"agent_id"`
	Category     string   `json:"category"`
	Title        string   `json:"title,omitempty"`
	Content      string   `json:"content,omitempty"`
	Rating       int      `json:"rating"` // 1-5
	Improvements []string `json:"improvements,omitempty"`
}
