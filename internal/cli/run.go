package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ppiankov/marketpulse/internal/cache"
	"github.com/ppiankov/marketpulse/internal/ingest"
	"github.com/ppiankov/marketpulse/internal/llm"
	"github.com/ppiankov/marketpulse/internal/logging"
	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/pipeline"
)

// runFlags holds the flags of the run command
type runFlags struct {
	catalog     string
	urls        []string
	maxDocs     int
	outJSON     string
	llmProvider string
	llmModel    string
	timeout     time.Duration
	debug       bool
	strict      bool
	noCache     bool
}

var runOpts runFlags

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <company>",
	Short: "Extract events and an advisory report for one company",
	Long: `Run ingests news articles about a company, extracts structured deal,
pipeline and other events, and synthesizes an advisory report.

Articles come from a YAML catalog (--catalog) and/or article URLs given
with --url, which are fetched live.

Example:
  marketpulse run "Acme Therapeutics" --catalog news.yaml
  marketpulse run Acme --url https://news.example.com/acme-deal --json result.json
  marketpulse run Acme --catalog news.yaml --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runOpts.catalog, "catalog", "", "YAML news catalog")
	f.StringArrayVar(&runOpts.urls, "url", nil, "article URL to fetch (repeatable)")
	f.IntVar(&runOpts.maxDocs, "max-docs", 3, "maximum number of articles")
	f.StringVar(&runOpts.outJSON, "json", "-", `output JSON path ("-" for stdout)`)
	f.StringVar(&runOpts.llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama, gemini)")
	f.StringVar(&runOpts.llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	f.DurationVar(&runOpts.timeout, "timeout", 5*time.Minute, "overall run timeout")
	f.BoolVar(&runOpts.debug, "debug", false, "record prompts in the trace and include the trace in the output")
	f.BoolVar(&runOpts.strict, "strict", false, "fail instead of substituting fallback values")
	f.BoolVar(&runOpts.noCache, "no-cache", false, "disable the article cache")
}

// applyRunFlags lets explicitly set flags override the loaded config
func applyRunFlags(cmd *cobra.Command, cfg *model.Config, opts runFlags) {
	changed := cmd.Flags().Changed

	if changed("catalog") {
		cfg.Ingest.Catalog = opts.catalog
	}
	if changed("max-docs") {
		cfg.Ingest.MaxDocuments = opts.maxDocs
	}
	if changed("json") {
		cfg.Output.JSONPath = opts.outJSON
	}
	if changed("llm-provider") {
		cfg.LLM.Provider = opts.llmProvider
		if !changed("llm-model") {
			cfg.LLM.Model = ""
		}
	}
	if changed("llm-model") {
		cfg.LLM.Model = opts.llmModel
	}
	if opts.debug {
		cfg.Output.Debug = true
		cfg.Log.Level = logrus.DebugLevel.String()
	}
	if opts.strict {
		cfg.Fallback.FailOnFallback = true
	}
	if opts.noCache {
		cfg.Cache.Enabled = false
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	company := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg, runOpts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), runOpts.timeout)
	defer cancel()

	ingestor, err := newIngestor(cfg, company, runOpts.urls, log)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Company: %s\n", company)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", provider.Name())
		fmt.Fprintf(os.Stderr, "Max documents: %d\n", cfg.Ingest.MaxDocuments)
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", cfg.Cache.Enabled)
	}

	state, runErr := pipeline.NewFromConfig(cfg, ingestor, provider, log).Run(ctx, company)
	if state != nil {
		includeTrace := cfg.Output.Debug || cfg.Output.Verbose || runErr != nil
		if err := pipeline.WriteJSON(pipeline.NewResult(state, includeTrace), cfg.Output.JSONPath, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.JSONPath != "-" && cfg.Output.JSONPath != "" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", cfg.Output.JSONPath)
		}
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// newIngestor builds the catalog ingestor from the configured catalog plus ad-hoc URLs
func newIngestor(cfg *model.Config, company string, urls []string, log logrus.FieldLogger) (*ingest.CatalogIngestor, error) {
	catalog := ingest.NewCatalog(".")
	if cfg.Ingest.Catalog != "" {
		loaded, err := ingest.LoadCatalog(cfg.Ingest.Catalog)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	catalog.AddURLs(company, urls)

	return ingest.NewCatalogIngestor(
		catalog,
		ingest.NewFetcher(cfg.HTTP),
		cache.New(cfg.Cache),
		cfg.Ingest.Workers,
		log,
	), nil
}
