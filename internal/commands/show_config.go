// internal/commands/show_config.go
package commands

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// showConfigCmd prints the merged configuration after flags and defaults.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show the effective configuration after the config file, flags, and defaults are merged.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		if cfg.ConfigPath == "" {
			fmt.Println("No config file loaded (using defaults).")
		} else {
			fmt.Printf("Config file: %s\n\n", cfg.ConfigPath)
		}

		pp.Println(cfg)

		fmt.Println("\nEffective values:")
		fmt.Printf("  Listen address: %s\n", cfg.ListenAddress())
		fmt.Printf("  API base URL:   %s\n", cfg.APIBaseURL())
		fmt.Printf("  Database:       %s\n", cfg.DatabaseFilePath())
		fmt.Printf("  Ratings file:   %s\n", cfg.RatingsFilePath())
		fmt.Printf("  Log file:       %s\n", cfg.LogFilePath())
		fmt.Printf("  Sample limit:   %d\n", cfg.MaxSamples())
		fmt.Printf("  Timeout:        %s\n", cfg.RequestTimeout())
		fmt.Printf("  Debug:          %v\n", DebugEnabled())
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
