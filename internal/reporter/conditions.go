package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var conditionsKeywords = []string{
	"traffic", "accident", "congestion", "road", "closure", "weather",
	"temperature", "rain", "fog", "sandstorm", "wind", "humidity",
	"alert", "warning", "delay", "diversion", "air quality", "visibility",
}

// Expiry windows for real-time conditions content.
const (
	alertExpiry      = 2 * time.Hour
	forecastExpiry   = 6 * time.Hour
	airQualityExpiry = 4 * time.Hour
	defaultExpiry    = 3 * time.Hour
)

func conditionsProfile(deps Deps, cfg model.AgentConfig) Profile {
	return Profile{
		Config: cfg,
		Hooks: agent.Hooks{
			FetchSource: func(ctx context.Context, src model.DataSource) ([]model.ContentItem, error) {
				return fetchConditionsSource(ctx, deps, src)
			},
			Relevance: conditionsRelevance,
			BuildPrompt: func(item *model.ContentItem, style model.WritingStyle, prefs model.ContentPreferences) string {
				return articlePrompt(item, style, prefs, []string{
					"Lead with what is affected and until when.",
					"Suggest alternatives when a route or area is impacted.",
				})
			},
			DedupKey: conditionsDedupKey,
			Less: func(a, b *model.ContentItem) bool {
				return conditionsLess(deps.localNow(), a, b)
			},
			PostFilter: dropExpired,
			Extras: []func(ctx context.Context) (*model.ContentItem, error){
				func(ctx context.Context) (*model.ContentItem, error) {
					return rushHourUpdate(ctx, deps)
				},
			},
		},
	}
}

// weatherPayload is the shape returned by fetch-weather-data.
type weatherPayload struct {
	Current struct {
		Summary     string  `json:"summary"`
		TempC       float64 `json:"temp_c"`
		Humidity    int     `json:"humidity"`
		WindKPH     float64 `json:"wind_kph"`
		Visibility  float64 `json:"visibility_km"`
		ObservedAt  string  `json:"observed_at"`
		Description string  `json:"description"`
	} `json:"current"`
	Forecast []struct {
		Day     string  `json:"day"`
		Summary string  `json:"summary"`
		HighC   float64 `json:"high_c"`
		LowC    float64 `json:"low_c"`
	} `json:"forecast"`
	Alerts []struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Severity string `json:"severity"`
		IssuedAt string `json:"issued_at"`
	} `json:"alerts"`
}

// trafficPayload is the shape returned by the traffic functions.
type trafficPayload struct {
	Incidents []struct {
		Title      string `json:"title"`
		Body       string `json:"body"`
		Road       string `json:"road"`
		Severity   string `json:"severity"` // low, medium, high
		ReportedAt string `json:"reported_at"`
	} `json:"incidents"`
}

// airQualityPayload is the shape returned by fetch-air-quality.
type airQualityPayload struct {
	AQI        int    `json:"aqi"`
	Category   string `json:"category"`
	Pollutant  string `json:"dominant_pollutant"`
	ObservedAt string `json:"observed_at"`
	Advisory   string `json:"advisory"`
}

func fetchConditionsSource(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	switch src.Function {
	case "fetch-weather-data":
		return fetchWeather(ctx, deps, src)
	case "fetch-rta-traffic", "fetch-google-traffic":
		return fetchTraffic(ctx, deps, src)
	case "fetch-air-quality":
		return fetchAirQuality(ctx, deps, src)
	default:
		return nil, eris.Errorf("reporter: conditions has no adapter for function %s", src.Function)
	}
}

func fetchWeather(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	var payload weatherPayload
	if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
		return nil, err
	}

	recordSnapshot(ctx, deps, &model.ConditionsSnapshot{
		Kind:    "weather",
		Summary: payload.Current.Summary,
		Data: map[string]any{
			"temp_c":        payload.Current.TempC,
			"humidity":      payload.Current.Humidity,
			"wind_kph":      payload.Current.WindKPH,
			"visibility_km": payload.Current.Visibility,
		},
		CapturedAt: publishedOrNow(payload.Current.ObservedAt),
	})

	var items []model.ContentItem
	for _, raw := range payload.Alerts {
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    raw.Title,
			Content:  raw.Body,
			Category: "alert",
			Tags:     []string{"weather", "alert"},
			Source:   src,
			Metadata: model.ContentMetadata{
				Custom: map[string]any{"severity": raw.Severity},
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.IssuedAt),
		})
	}

	if payload.Current.Summary != "" {
		var b strings.Builder
		fmt.Fprintf(&b, "%s. Currently %.0f°C with %d%% humidity and winds at %.0f km/h.",
			payload.Current.Description, payload.Current.TempC,
			payload.Current.Humidity, payload.Current.WindKPH)
		for _, day := range payload.Forecast {
			fmt.Fprintf(&b, " %s: %s, high %.0f°C, low %.0f°C.", day.Day, day.Summary, day.HighC, day.LowC)
		}
		items = append(items, model.ContentItem{
			ID:          newItemID(),
			Title:       "Dubai Weather: " + payload.Current.Summary,
			Content:     b.String(),
			Category:    "forecast",
			Tags:        []string{"weather", "forecast"},
			Source:      src,
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(payload.Current.ObservedAt),
		})
	}
	return items, nil
}

func fetchTraffic(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	var payload trafficPayload
	if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
		return nil, err
	}

	if len(payload.Incidents) > 0 {
		worst := payload.Incidents[0]
		for _, inc := range payload.Incidents[1:] {
			if severityRank(inc.Severity) > severityRank(worst.Severity) {
				worst = inc
			}
		}
		recordSnapshot(ctx, deps, &model.ConditionsSnapshot{
			Kind:       "traffic",
			Summary:    worst.Title,
			Severity:   worst.Severity,
			Data:       map[string]any{"incidents": len(payload.Incidents)},
			CapturedAt: publishedOrNow(worst.ReportedAt),
		})
	}

	items := make([]model.ContentItem, 0, len(payload.Incidents))
	for _, raw := range payload.Incidents {
		category := "incident"
		if severityRank(raw.Severity) >= 3 {
			category = "alert"
		}
		items = append(items, model.ContentItem{
			ID:       newItemID(),
			Title:    raw.Title,
			Content:  raw.Body,
			Category: category,
			Tags:     []string{"traffic", strings.ToLower(raw.Road)},
			Source:   src,
			Metadata: model.ContentMetadata{
				Custom: map[string]any{
					"road":     raw.Road,
					"severity": raw.Severity,
				},
			},
			Status:      model.StatusFetched,
			PublishedAt: publishedOrNow(raw.ReportedAt),
		})
	}
	return items, nil
}

func fetchAirQuality(ctx context.Context, deps Deps, src model.DataSource) ([]model.ContentItem, error) {
	var payload airQualityPayload
	if err := invokeJSON(ctx, deps.Edge, src, &payload); err != nil {
		return nil, err
	}
	if payload.AQI == 0 {
		return nil, nil
	}

	observed := publishedOrNow(payload.ObservedAt)
	recordSnapshot(ctx, deps, &model.ConditionsSnapshot{
		Kind:       "air_quality",
		Summary:    fmt.Sprintf("AQI %d (%s)", payload.AQI, payload.Category),
		Data:       map[string]any{"aqi": payload.AQI, "dominant_pollutant": payload.Pollutant},
		CapturedAt: observed,
	})

	content := fmt.Sprintf("Dubai's air quality index is %d, rated %s, with %s as the dominant pollutant.",
		payload.AQI, payload.Category, payload.Pollutant)
	if payload.Advisory != "" {
		content += " " + payload.Advisory
	}
	return []model.ContentItem{{
		ID:          newItemID(),
		Title:       fmt.Sprintf("Dubai Air Quality: %s (AQI %d)", payload.Category, payload.AQI),
		Content:     content,
		Category:    "air-quality",
		Tags:        []string{"air-quality"},
		Source:      src,
		Metadata:    model.ContentMetadata{Custom: map[string]any{"aqi": payload.AQI}},
		Status:      model.StatusFetched,
		PublishedAt: observed,
	}}, nil
}

// recordSnapshot stores a conditions reading; failures are logged, never
// propagated.
func recordSnapshot(ctx context.Context, deps Deps, snap *model.ConditionsSnapshot) {
	if err := deps.Store.RecordConditions(ctx, snap); err != nil {
		zap.L().Warn("store conditions snapshot failed",
			zap.String("kind", snap.Kind),
			zap.Error(err))
	}
}

func severityRank(s string) int {
	switch strings.ToLower(s) {
	case "high", "severe":
		return 3
	case "medium", "moderate":
		return 2
	case "low", "minor":
		return 1
	default:
		return 0
	}
}

func conditionsRelevance(item *model.ContentItem) float64 {
	score := keywordRelevance(item.Text(), conditionsKeywords, 0.12)
	if item.Category == "alert" {
		score += 0.25
	}
	if score > 1 {
		return 1
	}
	return score
}

// conditionsDedupKey buckets high-frequency updates into five-minute
// windows so repeated polls of the same feed collapse.
func conditionsDedupKey(item *model.ContentItem) string {
	bucket := item.PublishedAt.Truncate(5 * time.Minute).Unix()
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(item.Title)), item.Category, bucket)
}

// conditionsLess orders alerts first, then urgency, then recency.
func conditionsLess(now time.Time, a, b *model.ContentItem) bool {
	aAlert, bAlert := a.Category == "alert", b.Category == "alert"
	if aAlert != bAlert {
		return aAlert
	}
	ua, ub := urgencyScore(now, a), urgencyScore(now, b)
	if ua != ub {
		return ua > ub
	}
	return a.PublishedAt.After(b.PublishedAt)
}

// urgencyScore folds severity and freshness into one ordering weight.
func urgencyScore(now time.Time, item *model.ContentItem) float64 {
	score := 0.0
	if item.Metadata.Custom != nil {
		if sev, ok := item.Metadata.Custom["severity"].(string); ok {
			score += float64(severityRank(sev)) * 0.25
		}
	}
	age := now.Sub(item.PublishedAt)
	switch {
	case age < 15*time.Minute:
		score += 0.25
	case age < time.Hour:
		score += 0.15
	}
	return score
}

func expiryFor(category string) time.Duration {
	switch category {
	case "alert", "incident":
		return alertExpiry
	case "forecast":
		return forecastExpiry
	case "air-quality":
		return airQualityExpiry
	default:
		return defaultExpiry
	}
}

// dropExpired removes real-time items whose expiry window has passed.
func dropExpired(now time.Time, items []model.ContentItem) []model.ContentItem {
	fresh := items[:0]
	for _, item := range items {
		if now.Sub(item.PublishedAt) <= expiryFor(item.Category) {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

// rushHourUpdate synthesizes a commute digest from the latest stored
// snapshots during weekday rush hours.
func rushHourUpdate(ctx context.Context, deps Deps) (*model.ContentItem, error) {
	now := deps.localNow()
	if !duringRushHour(now) {
		return nil, nil
	}

	var parts []string
	for _, kind := range []string{"traffic", "weather", "air_quality"} {
		snap, err := deps.Store.LatestConditions(ctx, kind)
		if err != nil {
			zap.L().Warn("conditions snapshot lookup failed",
				zap.String("kind", kind),
				zap.Error(err))
			continue
		}
		if snap != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", kind, snap.Summary))
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		"Write a brief rush-hour update for Dubai commuters (100-150 words) from these current readings:\n\n%s",
		strings.Join(parts, "\n"))
	text, err := chatText(ctx, deps, "analysis", prompt)
	if err != nil {
		return nil, eris.Wrap(err, "reporter: rush hour synthesis")
	}

	return &model.ContentItem{
		ID:       newItemID(),
		Title:    fmt.Sprintf("Dubai Rush Hour Update: %s", now.Format("15:04")),
		Content:  text,
		Category: "alert",
		Tags:     []string{"traffic", "rush-hour"},
		Source: model.DataSource{
			Type:     model.SourceAPI,
			Name:     "Rush Hour Composite",
			Priority: model.PriorityHigh,
		},
		Status:      model.StatusFetched,
		PublishedAt: now,
	}, nil
}

func duringRushHour(now time.Time) bool {
	switch now.Weekday() {
	case time.Friday, time.Saturday:
		return false
	}
	h := now.Hour()
	return (h >= 7 && h < 10) || (h >= 17 && h < 20)
}
