// internal/commands/show.go
package commands

import "github.com/spf13/cobra"

// showCmd groups inspection subcommands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for inspecting application state",
}

func init() {
	rootCmd.AddCommand(showCmd)
}
