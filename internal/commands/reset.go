// internal/commands/reset.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/history"
	"github.com/promptlab/promptlab/internal/rating"
)

// resetCmd clears server-side history, usage counters, or both. Clearing
// experiments also clears the local manual ratings, but only after the server
// delete succeeds.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear experiment history or usage counters",
	Long: `Clear server-side data. --type experiments removes the experiment history
and, once the server confirms, the local manual ratings. --type usage zeroes
the usage counters. --type all does both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		resetType, _ := cmd.Flags().GetString("type")

		client := apiclient.New(cfg, appconfig.LoadKeys())

		switch resetType {
		case "experiments", "all":
			ratings, err := rating.OpenStore(cfg.RatingsFilePath())
			if err != nil {
				return err
			}
			svc := history.NewService(client, ratings)
			if err := svc.ClearAll(cmd.Context()); err != nil {
				return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
			}
			fmt.Println("Experiment history and local ratings cleared.")
			if resetType == "experiments" {
				return nil
			}
			if err := client.Reset(cmd.Context(), "usage"); err != nil {
				return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
			}
			fmt.Println("Usage counters cleared.")
			return nil
		case "usage":
			if err := client.Reset(cmd.Context(), "usage"); err != nil {
				return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
			}
			fmt.Println("Usage counters cleared.")
			return nil
		default:
			return fmt.Errorf("invalid --type %q: use experiments, usage, or all", resetType)
		}
	},
}

func init() {
	resetCmd.Flags().String("type", "experiments", "what to clear: experiments, usage, or all")
	rootCmd.AddCommand(resetCmd)
}
