// internal/commands/serve.go
package commands

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/internal/logging"
	"github.com/promptlab/promptlab/internal/providerfactory"
	"github.com/promptlab/promptlab/internal/providers"
	"github.com/promptlab/promptlab/internal/server"
	"github.com/promptlab/promptlab/internal/store"
)

// serveCmd starts the experiment API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the experiment API server",
	Long: `Start the HTTP API server that runs experiments against LLM providers and
persists results. Provider credentials arrive per request via the
X-OpenAI-API-Key, X-Anthropic-API-Key, and X-Together-API-Key headers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		pricing, err := providers.LoadPricing(cfg.PricingFile)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.DatabaseFilePath())
		if err != nil {
			return fmt.Errorf("open experiment store: %w", err)
		}
		defer st.Close()

		httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
		factory := func(model string, keys server.Keys) (providers.Client, error) {
			return providerfactory.NewClient(model, providerfactory.Keys{
				OpenAI:    keys.OpenAI,
				Anthropic: keys.Anthropic,
				Together:  keys.Together,
			}, httpClient, pricing)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logging.LogEvent("API server listening on %s", cfg.ListenAddress())
		fmt.Printf("promptlab API listening on %s\n", cfg.ListenAddress())
		return server.New(cfg, st, factory).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
