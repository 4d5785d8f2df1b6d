// Package extract turns fetched documents into validated events with one model call.
package extract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/marketpulse/internal/llm"
	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/repair"
	"github.com/ppiankov/marketpulse/internal/validate"
)

// TracePrefix namespaces this stage's trace keys
const TracePrefix = "extraction"

// Options are the explicit generation parameters for the stage
type Options struct {
	Model           string
	Temperature     float32
	MaxTokens       int
	JSONMode        bool
	MaxContentChars int  // Per-document content budget (0 = unlimited)
	Debug           bool // Record the prompt in the trace
}

// OptionsFromConfig picks the extraction settings out of the run config
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.Extraction.Temperature,
		MaxTokens:       cfg.Extraction.MaxTokens,
		JSONMode:        cfg.LLM.JSONMode,
		MaxContentChars: cfg.Ingest.MaxContentChars,
		Debug:           cfg.Output.Debug,
	}
}

// Extractor is the extraction stage
type Extractor struct {
	provider llm.Provider
	policy   validate.Policy
	opts     Options
	log      logrus.FieldLogger
}

// NewExtractor creates an extraction stage
func NewExtractor(provider llm.Provider, policy validate.Policy, opts Options, log logrus.FieldLogger) *Extractor {
	return &Extractor{
		provider: provider,
		policy:   policy,
		opts:     opts,
		log:      log.WithField("stage", TracePrefix),
	}
}

// Extract returns validated events for company. Validation failures degrade to the fallback
// list; only a model transport failure is returned as an error.
func (e *Extractor) Extract(ctx context.Context, company string, docs []model.Document, trace model.Trace) (validate.Outcome[[]model.Event], error) {
	if len(docs) == 0 {
		trace.Set(TracePrefix+".skipped", "no documents")
		e.log.Info("No documents, skipping model call")
		return validate.Outcome[[]model.Event]{Kind: validate.OutcomeOK, Value: e.policy.Events()}, nil
	}

	prompt := BuildPrompt(company, BuildContext(docs, e.opts.MaxContentChars))
	if e.opts.Debug {
		trace.Set(TracePrefix+".prompt", prompt)
	}

	resp, err := llm.Invoke(ctx, e.provider, prompt, llm.CompletionRequest{
		System:      SystemPrompt,
		Model:       e.opts.Model,
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
		JSONMode:    e.opts.JSONMode,
	})
	if err != nil {
		return validate.Outcome[[]model.Event]{}, fmt.Errorf("extraction model call: %w", err)
	}
	trace.Set(TracePrefix+".model", resp.Model)

	res := repair.Repair(resp.Text)
	out := validate.Events(res, e.policy)
	out.Record(trace, TracePrefix, res)

	fields := logrus.Fields{
		"outcome": out.Kind.String(),
		"events":  len(out.Value),
		"tokens":  resp.TokensUsed,
	}
	if len(res.Applied) > 0 {
		fields["repairs"] = res.Applied
	}
	if out.IsFallback() {
		e.log.WithFields(fields).WithField("reason", out.Reason).Warn("Extraction fell back to an empty event list")
	} else {
		e.log.WithFields(fields).Info("Events extracted")
	}
	for _, note := range out.Notes {
		e.log.Debug(note)
	}

	return out, nil
}
