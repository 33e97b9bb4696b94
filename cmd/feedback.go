package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

var (
	feedbackItemID       string
	feedbackCategory     string
	feedbackTitle        string
	feedbackContent      string
	feedbackRating       int
	feedbackImprovements []string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <specialty>",
	Short: "Record editorial feedback on a published item",
	Long:  "Feeds a 1-5 rating and optional improvement notes back into the agent's learning data. Ratings of 4+ reinforce the item's patterns; 2 and below mark them to avoid.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fb := &model.Feedback{
			ItemID:       feedbackItemID,
			AgentID:      a.ID(),
			Category:     feedbackCategory,
			Title:        feedbackTitle,
			Content:      feedbackContent,
			Rating:       feedbackRating,
			Improvements: feedbackImprovements,
		}
		if err := a.LearnFromFeedback(ctx, fb); err != nil {
			return err
		}

		zap.L().Info("feedback recorded",
			zap.String("agent", a.ID()),
			zap.Int("rating", fb.Rating),
			zap.String("category", fb.Category),
		)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackItemID, "item-id", "", "published item id")
	feedbackCmd.Flags().StringVar(&feedbackCategory, "category", "", "item category")
	feedbackCmd.Flags().StringVar(&feedbackTitle, "title", "", "item title, used for pattern learning")
	feedbackCmd.Flags().StringVar(&feedbackContent, "content", "", "item content, used for length tuning")
	feedbackCmd.Flags().IntVar(&feedbackRating, "rating", 0, "rating 1-5 (required)")
	feedbackCmd.Flags().StringSliceVar(&feedbackImprovements, "improvement", nil, "improvement note, repeatable")
	_ = feedbackCmd.MarkFlagRequired("rating")
	rootCmd.AddCommand(feedbackCmd)
}
