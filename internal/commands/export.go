// internal/commands/export.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
	"github.com/promptlab/promptlab/internal/export"
	"github.com/promptlab/promptlab/internal/rating"
)

// exportCmd writes a shareable artifact for one experiment, or a server-side
// CSV for several.
var exportCmd = &cobra.Command{
	Use:   "export <experiment-id> [experiment-id...]",
	Short: "Export experiment results",
	Long: `Export a single experiment as a self-contained JSON artifact, including its
effective accuracy and manual rating when one exists. With --csv, ask the
server for a CSV summary of the listed experiments instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		asCSV, _ := cmd.Flags().GetBool("csv")
		outPath, _ := cmd.Flags().GetString("out")

		client := apiclient.New(cfg, appconfig.LoadKeys())

		if asCSV {
			data, err := client.ExportCSV(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
			}
			fmt.Print(data)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("JSON export takes exactly one experiment id; use --csv for several")
		}
		experimentID := args[0]

		experiments, _, err := client.ListExperiments(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s\n%s", err, apiclient.Remediation(err))
		}
		for i := range experiments {
			if experiments[i].ExperimentID != experimentID {
				continue
			}
			ratings, err := rating.OpenStore(cfg.RatingsFilePath())
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = export.DefaultPath(experimentID)
			}
			if err := export.WriteFile(outPath, &experiments[i], ratings); err != nil {
				return err
			}
			fmt.Printf("Exported %s to %s\n", experimentID, outPath)
			return nil
		}
		return fmt.Errorf("experiment %s not found", experimentID)
	},
}

func init() {
	exportCmd.Flags().Bool("csv", false, "request a server-side CSV summary")
	exportCmd.Flags().StringP("out", "o", "", "output file for the JSON artifact")
	rootCmd.AddCommand(exportCmd)
}
