package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mydub-ai/reporter-cli/internal/monitoring"
)

var statusLookback int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a health snapshot of recent fetch cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lookback := statusLookback
		if lookback == 0 {
			lookback = cfg.Monitoring.LookbackHours
		}
		snap, err := env.Collector.Collect(ctx, lookback)
		if err != nil {
			return err
		}

		alerts := monitoring.NewAlerter(cfg.Monitoring).Evaluate(snap)
		for _, a := range alerts {
			cmd.PrintErrf("ALERT [%s]: %s\n", a.Severity, a.Message)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLookback, "lookback", 0, "lookback window in hours (default from config)")
	rootCmd.AddCommand(statusCmd)
}
