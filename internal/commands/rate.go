// internal/commands/rate.go
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/rating"
	"github.com/promptlab/promptlab/internal/ratingui"
)

// rateCmd opens the interactive rating interface for one experiment.
var rateCmd = &cobra.Command{
	Use:   "rate <experiment-id>",
	Short: "Rate an experiment's outputs by hand",
	Long: `Walk an experiment's successful outputs and rate each 1-5 stars. Saving a
complete set of ratings records a manual accuracy that replaces the computed
score everywhere it is shown. Failed samples are not part of the review.
Reopening a rated experiment starts blank unless preloadRatings is set in the
config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		experimentID := args[0]

		ratings, err := rating.OpenStore(cfg.RatingsFilePath())
		if err != nil {
			return err
		}
		client := apiclient.New(cfg, appconfig.LoadKeys())

		load := func(ctx context.Context) (*rating.Session, error) {
			experiments, _, err := client.ListExperiments(ctx)
			if err != nil {
				return nil, fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
			}
			for i := range experiments {
				if experiments[i].ExperimentID != experimentID {
					continue
				}
				var opts []rating.Option
				if cfg.PreloadRatings {
					if saved, ok := ratings.Get(experimentID); ok {
						opts = append(opts, rating.PreloadRatings(saved.Ratings))
					}
				}
				return rating.NewSession(&experiments[i], opts...)
			}
			return nil, fmt.Errorf("experiment %s not found", experimentID)
		}

		saved, err := ratingui.Run(cmd.Context(), load, ratings)
		if err != nil {
			return err
		}
		if saved == nil {
			fmt.Println("Rating abandoned, nothing saved.")
			return nil
		}
		fmt.Printf("Saved manual accuracy %.1f%% for %s\n", saved.Accuracy, experimentID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
}
