// internal/commands/show_server.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/apiclient"
	"github.com/promptlab/promptlab/internal/appconfig"
)

// showServerCmd probes the API server's health endpoint.
var showServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Check whether the API server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		client := apiclient.New(cfg, appconfig.LoadKeys())

		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server at %s is not healthy: %w\n%s",
				cfg.APIBaseURL(), err, apiclient.Remediation(err))
		}
		fmt.Printf("Server at %s is healthy.\n", cfg.APIBaseURL())
		return nil
	},
}

func init() {
	showCmd.AddCommand(showServerCmd)
}
