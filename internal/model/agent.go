package model

// Specialty is a reporter agent's content domain.
type Specialty string

const (
	SpecialtyNews       Specialty = "news"
	SpecialtyBusiness   Specialty = "business"
	SpecialtyTourism    Specialty = "tourism"
	SpecialtyConditions Specialty = "conditions" // weather + traffic
	SpecialtyLifestyle  Specialty = "lifestyle"
)

// Specialties lists all known specialties in registration order.
func Specialties() []Specialty {
	return []Specialty{
		SpecialtyNews,
		SpecialtyBusiness,
		SpecialtyTourism,
		SpecialtyConditions,
		SpecialtyLifestyle,
	}
}

// WritingStyle describes how an agent's articles should read.
type WritingStyle struct {
	Tones           []string `json:"tones" yaml:"tones"`
	Voice           string   `json:"voice" yaml:"voice"`
	Audience        string   `json:"audience" yaml:"audience"`
	PromptFragments []string `json:"prompt_fragments,omitempty" yaml:"prompt_fragments,omitempty"`
}

// ScheduleConfig describes when an agent should run.
type ScheduleConfig struct {
	Frequency string   `json:"frequency" yaml:"frequency"` // hourly, daily, ...
	Priority  string   `json:"priority" yaml:"priority"`
	Times     []string `json:"times" yaml:"times"` // "HH:00" slots
	Timezone  string   `json:"timezone" yaml:"timezone"`
	Days      []string `json:"days,omitempty" yaml:"days,omitempty"`
}

// AgentConfig is the static per-agent configuration.
type AgentConfig struct {
	ID               string         `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Specialty        Specialty      `json:"specialty" yaml:"specialty"`
	Style            WritingStyle   `json:"style" yaml:"style"`
	Sources          []DataSource   `json:"sources" yaml:"sources"`
	Schedule         ScheduleConfig `json:"schedule" yaml:"schedule"`
	MaxContentPerRun int            `json:"max_content_per_run" yaml:"max_content_per_run"`
}
