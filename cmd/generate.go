package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

var (
	generateItemPath string
	generateForce    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <specialty>",
	Short: "Analyze a content item and generate an article from it",
	Long:  "Reads a ContentItem as JSON from --item (or stdin), scores it against the agent's thresholds, and prints the generated article. Items below the publication thresholds are rejected unless --force is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := readItem(generateItemPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := resolveAgent(env, args[0])
		if err != nil {
			return err
		}

		analysis, err := a.AnalyzeContent(ctx, item)
		if err != nil {
			return eris.Wrap(err, "analyze content")
		}
		zap.L().Info("content analyzed",
			zap.String("agent", a.ID()),
			zap.Float64("relevance", analysis.RelevanceScore),
			zap.Float64("priority", analysis.PriorityScore),
			zap.Float64("quality", analysis.QualityScore),
		)

		if !a.ShouldPublish(analysis) && !generateForce {
			for _, s := range analysis.Suggestions {
				cmd.PrintErrf("suggestion: %s\n", s)
			}
			return eris.Errorf("item below publication thresholds (relevance %.2f, priority %.2f, quality %.2f); use --force to generate anyway",
				analysis.RelevanceScore, analysis.PriorityScore, analysis.QualityScore)
		}

		article, err := a.GenerateArticle(ctx, item)
		if err != nil {
			return err
		}
		cmd.Println(article)
		return nil
	},
}

// readItem decodes a ContentItem from the given path, or stdin when the
// path is empty or "-".
func readItem(path string) (*model.ContentItem, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open item file")
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	var item model.ContentItem
	if err := json.NewDecoder(r).Decode(&item); err != nil {
		return nil, eris.Wrap(err, "decode content item")
	}
	if item.Title == "" || item.Content == "" {
		return nil, eris.New("content item needs both title and content")
	}
	return &item, nil
}

func init() {
	generateCmd.Flags().StringVar(&generateItemPath, "item", "", "path to a ContentItem JSON file (default stdin)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "generate even when below publication thresholds")
	rootCmd.AddCommand(generateCmd)
}
