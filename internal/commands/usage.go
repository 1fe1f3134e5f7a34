// internal/commands/usage.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
)

// usageCmd prints the server's cumulative usage counters.
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show cumulative usage and spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		client := apiclient.New(cfg, appconfig.LoadKeys())

		stats, err := client.Usage(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
		}

		fmt.Printf("Experiments run: %d\n", stats.TotalExperiments)
		fmt.Printf("Samples tested:  %d\n", stats.TotalSamples)
		fmt.Printf("Tokens used:     %d\n", stats.TotalTokens)
		fmt.Printf("Estimated spend: $%.4f\n", stats.TotalCost)
		if !stats.LastUpdated.IsZero() {
			fmt.Printf("Last updated:    %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}
