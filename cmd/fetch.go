package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mydub-ai/reporter-cli/internal/agent"
)

var (
	fetchAll  bool
	fetchJSON bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [specialty]",
	Short: "Run a fetch cycle for one agent, or all agents with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !fetchAll && len(args) == 0 {
			return eris.New("specify a specialty or pass --all")
		}

		ctx := cmd.Context()
		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var targets []*agent.Agent
		if fetchAll {
			targets = env.Agents.All()
		} else {
			a, err := resolveAgent(env, args[0])
			if err != nil {
				return err
			}
			targets = []*agent.Agent{a}
		}

		results := make([]*agent.FetchResult, len(targets))
		g, gctx := errgroup.WithContext(ctx)
		concurrency := cfg.Agents.Concurrency
		if concurrency <= 0 {
			concurrency = 2
		}
		g.SetLimit(concurrency)

		for i, a := range targets {
			g.Go(func() error {
				res, err := a.FetchContent(gctx)
				if err != nil {
					return eris.Wrapf(err, "fetch %s", a.ID())
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if fetchJSON {
			out := make(map[string]*agent.FetchResult, len(targets))
			for i, a := range targets {
				out[a.ID()] = results[i]
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		for i, a := range targets {
			res := results[i]
			zap.L().Info("fetch cycle complete",
				zap.String("agent", a.ID()),
				zap.Int("items", len(res.Items)),
				zap.Int("sources_ok", res.SourcesOK),
				zap.Int("sources_failed", res.SourcesFailed),
				zap.Int("tokens", res.TotalTokens),
				zap.Float64("cost_usd", res.TotalCost),
			)
			for _, item := range res.Items {
				cmd.Printf("%s\t%.2f\t%s\n", a.ID(), item.PriorityScore, item.Title)
			}
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "run every registered agent")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print full results as JSON")
	rootCmd.AddCommand(fetchCmd)
}
