package model

// SourceType classifies an upstream feed.
type SourceType string

const (
	SourceGovernment SourceType = "government"
	SourceAPI        SourceType = "api"
	SourceRSS        SourceType = "rss"
	SourceSocial     SourceType = "social"
)

// SourcePriority is a lookup weight for priority scoring, not a queue
// priority.
type SourcePriority string

const (
	PriorityLow    SourcePriority = "low"
	PriorityMedium SourcePriority = "medium"
	PriorityHigh   SourcePriority = "high"
)

// DataSource is a declarative descriptor of an upstream feed. Function names
// the proxy function that performs the actual HTTP call on our behalf.
type DataSource struct {
	Type            SourceType        `json:"type" yaml:"type"`
	Name            string            `json:"name" yaml:"name"`
	URL             string            `json:"url,omitempty" yaml:"url,omitempty"`
	APIKey          string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Function        string            `json:"function" yaml:"function"`
	Priority        SourcePriority    `json:"priority" yaml:"priority"`
	RefreshInterval int               `json:"refresh_interval" yaml:"refresh_interval"` // minutes
	Filters         map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
}
