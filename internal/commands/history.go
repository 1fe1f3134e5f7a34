// internal/commands/history.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/history"
	"github.com/promptlab/promptlab/internal/rating"
	"github.com/promptlab/promptlab/internal/util"
)

// historyCmd lists past experiments with their effective accuracy.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past experiments",
	Long: `List past experiments newest first. Each entry shows the effective
accuracy, which is the manual rating when one was saved and the computed
score otherwise. With --compare, render the accuracy/cost comparison instead,
omitting experiments with no accuracy signal or no recorded cost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		compare, _ := cmd.Flags().GetBool("compare")
		activeID, _ := cmd.Flags().GetString("active")

		ratings, err := rating.OpenStore(cfg.RatingsFilePath())
		if err != nil {
			return err
		}
		svc := history.NewService(apiclient.New(cfg, appconfig.LoadKeys()), ratings)

		if compare {
			return printComparison(cmd, svc, activeID)
		}
		return printHistory(cmd, svc)
	},
}

func printHistory(cmd *cobra.Command, svc *history.Service) error {
	entries, total, err := svc.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
	}
	if len(entries) == 0 {
		fmt.Println("No experiments yet.")
		return nil
	}

	fmt.Printf("%d of %d experiments:\n\n", len(entries), total)
	for _, e := range entries {
		marker := ""
		if e.Accuracy.Source == history.SourceManual {
			marker = " (manual)"
		}
		fmt.Printf("%s  %-20s  %5.1f%%%s  %s\n",
			e.Experiment.ExperimentID,
			util.TruncateRunes(e.Experiment.Model, 20),
			e.Accuracy.Value,
			marker,
			e.Outcome.String(),
		)
		fmt.Printf("    %s\n", util.FirstLine(e.Experiment.Prompt, 70))
	}
	return nil
}

func printComparison(cmd *cobra.Command, svc *history.Service, activeID string) error {
	points, err := svc.ComparisonPoints(cmd.Context(), activeID)
	if err != nil {
		return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
	}
	if len(points) == 0 {
		fmt.Println("No comparable experiments. Runs with zero accuracy or no recorded cost are omitted.")
		return nil
	}

	for _, p := range points {
		marker := " "
		if p.Active {
			marker = ">"
		}
		fmt.Printf("%s %s  %-20s  accuracy %5.1f%% (%s)  cost $%.4f\n",
			marker, p.ExperimentID, util.TruncateRunes(p.Model, 20), p.Accuracy.Value, p.Accuracy.Source, p.Cost)
	}
	return nil
}

func init() {
	historyCmd.Flags().Bool("compare", false, "show the accuracy/cost comparison")
	historyCmd.Flags().String("active", "", "experiment id to highlight in the comparison")
	rootCmd.AddCommand(historyCmd)
}
