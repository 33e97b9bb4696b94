package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the registered reporter agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cmd.Printf("%-22s %-12s %-8s %s\n", "ID", "SPECIALTY", "SOURCES", "SCHEDULE")
		for _, a := range env.Agents.All() {
			c := a.Config()
			cmd.Printf("%-22s %-12s %-8d %s %s\n",
				c.ID, c.Specialty, len(c.Sources),
				strings.Join(c.Schedule.Times, ","), c.Schedule.Timezone,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
