package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/agent"
	"github.com/mydub-ai/reporter-cli/internal/model"
)

var scheduleDaemon bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule [specialty]",
	Short: "Print an agent's optimized schedule, or run all agents on cron with --daemon",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if scheduleDaemon {
			return runScheduleDaemon(cmd, env)
		}

		if len(args) == 0 {
			return eris.New("specify a specialty or pass --daemon")
		}
		a, err := resolveAgent(env, args[0])
		if err != nil {
			return err
		}

		sched, err := a.OptimizeSchedule(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sched)
	},
}

// runScheduleDaemon registers every agent's fetch cycle with cron and
// blocks until interrupted.
func runScheduleDaemon(cmd *cobra.Command, env *reporterEnv) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	for _, a := range env.Agents.All() {
		specs, err := cronSpecs(a.Config().Schedule)
		if err != nil {
			return eris.Wrapf(err, "schedule for %s", a.ID())
		}
		for _, spec := range specs {
			if _, err := c.AddFunc(spec, fetchJob(ctx, a)); err != nil {
				return eris.Wrapf(err, "cron spec %q for %s", spec, a.ID())
			}
			zap.L().Info("scheduled fetch cycle",
				zap.String("agent", a.ID()),
				zap.String("spec", spec),
			)
		}
	}

	c.Start()
	<-ctx.Done()
	zap.L().Info("stopping scheduler")
	<-c.Stop().Done()
	return nil
}

// fetchJob wraps one agent's fetch cycle for cron. Failures are logged,
// never fatal to the daemon.
func fetchJob(ctx context.Context, a *agent.Agent) func() {
	return func() {
		res, err := a.FetchContent(ctx)
		if err != nil {
			zap.L().Error("scheduled fetch failed",
				zap.String("agent", a.ID()),
				zap.Error(err),
			)
			return
		}
		zap.L().Info("scheduled fetch complete",
			zap.String("agent", a.ID()),
			zap.Int("items", len(res.Items)),
		)
	}
}

// cronSpecs converts a ScheduleConfig into cron expressions, one per
// configured time slot, pinned to the schedule's timezone.
func cronSpecs(sc model.ScheduleConfig) ([]string, error) {
	times := sc.Times
	if len(times) == 0 {
		times = []string{"08:00"}
	}

	dow := "*"
	if len(sc.Days) > 0 {
		abbrs := make([]string, 0, len(sc.Days))
		for _, d := range sc.Days {
			if len(d) < 3 {
				return nil, eris.Errorf("bad day %q", d)
			}
			abbrs = append(abbrs, strings.ToUpper(d[:3]))
		}
		dow = strings.Join(abbrs, ",")
	}

	tz := sc.Timezone
	if tz == "" {
		tz = "Asia/Dubai"
	}

	specs := make([]string, 0, len(times))
	for _, t := range times {
		hm := strings.SplitN(t, ":", 2)
		if len(hm) != 2 {
			return nil, eris.Errorf("bad time slot %q", t)
		}
		hour, err := strconv.Atoi(hm[0])
		if err != nil || hour < 0 || hour > 23 {
			return nil, eris.Errorf("bad time slot %q", t)
		}
		minute, err := strconv.Atoi(hm[1])
		if err != nil || minute < 0 || minute > 59 {
			return nil, eris.Errorf("bad time slot %q", t)
		}
		specs = append(specs, fmt.Sprintf("CRON_TZ=%s %d %d * * %s", tz, minute, hour, dow))
	}
	return specs, nil
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleDaemon, "daemon", false, "run all agents on their cron schedules")
	rootCmd.AddCommand(scheduleCmd)
}
