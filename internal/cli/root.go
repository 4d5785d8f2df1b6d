package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/marketpulse/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// envKeys are the config keys that MARKETPULSE_* environment variables may set
var envKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout", "llm.json_mode", "llm.requests_per_minute",
	"extraction.temperature", "extraction.max_tokens",
	"advisory.temperature", "advisory.max_tokens",
	"ingest.catalog", "ingest.max_documents", "ingest.max_content_chars", "ingest.workers",
	"http.timeout", "http.user_agent", "http.requests_per_second", "http.respect_robots",
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
	"cache.enabled", "cache.dir",
	"fallback.neutral_trends", "fallback.no_data_text", "fallback.fail_on_fallback",
	"log.level", "log.file",
	"output.json_path", "output.debug",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marketpulse",
	Short: "MarketPulse - company news to structured events and an advisory brief",
	Long: `MarketPulse reads recent news articles about a company, extracts structured
business and pipeline events with a language model, and synthesizes a short
advisory report from them.

Model output is repaired and validated before use. When it cannot be used,
schema-valid fallback values are substituted and the reason is recorded in
the run trace.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marketpulse %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.marketpulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// configDir returns ~/.marketpulse
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".marketpulse"), nil
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// MARKETPULSE_LLM_PROVIDER -> llm.provider
	viper.SetEnvPrefix("MARKETPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
