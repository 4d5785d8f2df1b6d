package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marketpulse/internal/llm"
)

var pingProvider string

// pingCmd checks that the configured model provider answers
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the LLM provider is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("llm-provider") {
			cfg.LLM.Provider = pingProvider
			cfg.LLM.Model = ""
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		if !provider.IsAvailable(ctx) {
			return fmt.Errorf("%s is not reachable", provider.Name())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is reachable\n", provider.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().StringVar(&pingProvider, "llm-provider", "", "LLM provider to check (default: configured provider)")
}
