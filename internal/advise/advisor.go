// Package advise synthesizes an advisory report from validated events.
package advise

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
const TracePrefix = "advisory"

// NoEventsReason is recorded when the model call is skipped
const NoEventsReason = "no events to advise on"

// Options are the explicit generation parameters for the stage
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	JSONMode    bool
	Debug       bool
}

// OptionsFromConfig picks the advisory settings out of the run config
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.Advisory.Temperature,
		MaxTokens:   cfg.Advisory.MaxTokens,
		JSONMode:    cfg.LLM.JSONMode,
		Debug:       cfg.Output.Debug,
	}
}

// Advisor is the advisory stage
type Advisor struct {
	provider llm.Provider
	policy   validate.Policy
	opts     Options
	log      logrus.FieldLogger
}

// NewAdvisor creates an advisory stage
func NewAdvisor(provider llm.Provider, policy validate.Policy, opts Options, log logrus.FieldLogger) *Advisor {
	return &Advisor{
		provider: provider,
		policy:   policy,
		opts:     opts,
		log:      log.WithField("stage", TracePrefix),
	}
}

// Advise returns a validated report for company. With no events the model is not called
// and the fallback report is used.
func (a *Advisor) Advise(ctx context.Context, company string, events []model.Event, trace model.Trace) (validate.Outcome[model.AdvisorReport], error) {
	if len(events) == 0 {
		trace.Set(TracePrefix+"."+validate.TraceOutcome, validate.OutcomeFallback.String())
		trace.Set(TracePrefix+"."+validate.TraceFallbackReason, NoEventsReason)
		a.log.Info("No events, using fallback report")
		return validate.Outcome[model.AdvisorReport]{
			Kind:   validate.OutcomeFallback,
			Value:  a.policy.Report(),
			Reason: NoEventsReason,
		}, nil
	}

	eventsJSON, err := EventsJSON(events)
	if err != nil {
		return validate.Outcome[model.AdvisorReport]{}, err
	}
	prompt := BuildPrompt(company, eventsJSON)
	if a.opts.Debug {
		trace.Set(TracePrefix+".prompt", prompt)
	}

	resp, err := llm.Invoke(ctx, a.provider, prompt, llm.CompletionRequest{
		System:      SystemPrompt,
		Model:       a.opts.Model,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
		JSONMode:    a.opts.JSONMode,
	})
	if err != nil {
		return validate.Outcome[model.AdvisorReport]{}, fmt.Errorf("advisory model call: %w", err)
	}
	trace.Set(TracePrefix+".model", resp.Model)

	res := repair.Repair(resp.Text)
	out := validate.Report(res, a.policy)
	out.Record(trace, TracePrefix, res)

	log := a.log.WithFields(logrus.Fields{
		"outcome": out.Kind.String(),
		"tokens":  resp.TokensUsed,
	})
	if out.IsFallback() {
		log.WithField("reason", out.Reason).Warn("Advisory fell back to the default report")
	} else {
		log.WithField("google_trends", out.Value.GoogleTrends).Info("Report synthesized")
	}
	for _, note := range out.Notes {
		a.log.Debug(note)
	}

	return out, nil
}
