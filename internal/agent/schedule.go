package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// OptimizeSchedule buckets recent engagement by hour of day and returns the
// schedule with time slots replaced by the three best-performing hours. With
// no performance data the static configuration is returned unchanged.
func (a *Agent) OptimizeSchedule(ctx context.Context) (model.ScheduleConfig, error) {
	schedule := a.cfg.Schedule

	perf, err := a.store.ListContentPerformance(ctx, a.cfg.ID, 100)
	if err != nil {
		zap.L().Warn("content performance lookup failed, keeping static schedule",
			zap.String("agent", a.cfg.ID),
			zap.Error(err))
		return schedule, nil
	}
	if len(perf) == 0 {
		return schedule, nil
	}

	loc := a.scheduleLocation()
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range perf {
		hour := p.PublishedAt.In(loc).Hour()
		sums[hour] += p.Engagement
		counts[hour]++
	}

	hours := make([]int, 0, len(sums))
	for h := range sums {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		avgI := sums[hours[i]] / float64(counts[hours[i]])
		avgJ := sums[hours[j]] / float64(counts[hours[j]])
		if avgI != avgJ {
			return avgI > avgJ
		}
		return hours[i] < hours[j]
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}
	sort.Ints(hours)

	times := make([]string, len(hours))
	for i, h := range hours {
		times[i] = fmt.Sprintf("%02d:00", h)
	}
	schedule.Times = times
	return schedule, nil
}

func (a *Agent) scheduleLocation() *time.Location {
	tz := a.cfg.Schedule.Timezone
	if tz == "" {
		tz = "Asia/Dubai"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
