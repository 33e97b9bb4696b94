// Package monitoring aggregates agent run history into health snapshots
// and raises webhook alerts when failure or cost thresholds are breached.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/store"
)

// AgentMetrics summarizes recent runs for a single agent.
type AgentMetrics struct {
	Runs          int     `json:"runs"`
	Failed        int     `json:"failed"`
	SourcesOK     int     `json:"sources_ok"`
	SourcesFailed int     `json:"sources_failed"`
	ItemsFetched  int     `json:"items_fetched"`
	ItemsValid    int     `json:"items_valid"`
	TotalTokens   int     `json:"total_tokens"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
}

// MetricsSnapshot is a point-in-time view of fetch-cycle health across
// all agents within the lookback window.
type MetricsSnapshot struct {
	RunsTotal     int                     `json:"runs_total"`
	RunsFailed    int                     `json:"runs_failed"`
	FailureRate   float64                 `json:"failure_rate"`
	SourcesOK     int                     `json:"sources_ok"`
	SourcesFailed int                     `json:"sources_failed"`
	ItemsFetched  int                     `json:"items_fetched"`
	ItemsValid    int                     `json:"items_valid"`
	TotalTokens   int                     `json:"total_tokens"`
	TotalCostUSD  float64                 `json:"total_cost_usd"`
	PerAgent      map[string]AgentMetrics `json:"per_agent"`
	LookbackHours int                     `json:"lookback_hours"`
	CollectedAt   time.Time               `json:"collected_at"`
}

// Collector builds metrics snapshots from stored agent run history.
type Collector struct {
	store store.Store
}

// NewCollector creates a Collector backed by the given store.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect aggregates runs recorded within the last lookbackHours.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	if lookbackHours <= 0 {
		lookbackHours = 24
	}
	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListAgentRuns(ctx, store.AgentRunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list agent runs")
	}

	snap := &MetricsSnapshot{
		PerAgent:      make(map[string]AgentMetrics),
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	for _, r := range runs {
		snap.RunsTotal++
		snap.SourcesOK += r.SourcesOK
		snap.SourcesFailed += r.SourcesFailed
		snap.ItemsFetched += r.ItemsFetched
		snap.ItemsValid += r.ItemsValid
		snap.TotalTokens += r.TotalTokens
		snap.TotalCostUSD += r.TotalCost

		am := snap.PerAgent[r.AgentID]
		am.Runs++
		am.SourcesOK += r.SourcesOK
		am.SourcesFailed += r.SourcesFailed
		am.ItemsFetched += r.ItemsFetched
		am.ItemsValid += r.ItemsValid
		am.TotalTokens += r.TotalTokens
		am.TotalCostUSD += r.TotalCost
		if r.Error != "" {
			snap.RunsFailed++
			am.Failed++
		}
		snap.PerAgent[r.AgentID] = am
	}

	if snap.RunsTotal > 0 {
		snap.FailureRate = float64(snap.RunsFailed) / float64(snap.RunsTotal)
	}
	return snap, nil
}
