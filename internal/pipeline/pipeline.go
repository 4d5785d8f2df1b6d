// Package pipeline runs one company through ingest, extraction and advisory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/marketpulse/internal/advise"
	"github.com/ppiankov/marketpulse/internal/extract"
	"github.com/ppiankov/marketpulse/internal/ingest"
	"github.com/ppiankov/marketpulse/internal/llm"
	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/validate"
)

// Trace keys owned by the orchestrator
const (
	TraceIngestCount = "ingest.count"
	TraceIngestError = "ingest.error"
	TraceError       = "pipeline.error"
)

// ErrFallback is returned in strict mode when a stage had to use fallback values
var ErrFallback = errors.New("model output failed validation")

// Options are the run-level switches of the orchestrator
type Options struct {
	MaxDocuments   int
	FailOnFallback bool
}

// Pipeline orchestrates a single-company run
type Pipeline struct {
	ingestor  ingest.Ingestor
	extractor *extract.Extractor
	advisor   *advise.Advisor
	opts      Options
	log       logrus.FieldLogger
}

// New creates a pipeline from explicit stage settings
func New(ingestor ingest.Ingestor, provider llm.Provider, policy validate.Policy, extractOpts extract.Options, adviseOpts advise.Options, opts Options, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		ingestor:  ingestor,
		extractor: extract.NewExtractor(provider, policy, extractOpts, log),
		advisor:   advise.NewAdvisor(provider, policy, adviseOpts, log),
		opts:      opts,
		log:       log,
	}
}

// NewFromConfig creates a pipeline taking every stage setting from cfg
func NewFromConfig(cfg *model.Config, ingestor ingest.Ingestor, provider llm.Provider, log logrus.FieldLogger) *Pipeline {
	return New(
		ingestor,
		provider,
		validate.PolicyFromConfig(cfg.Fallback),
		extract.OptionsFromConfig(cfg),
		advise.OptionsFromConfig(cfg),
		Options{
			MaxDocuments:   cfg.Ingest.MaxDocuments,
			FailOnFallback: cfg.Fallback.FailOnFallback,
		},
		log,
	)
}

// Run takes company from Init to Done. Ingestion problems and invalid model output degrade
// the result; a model transport failure or cancellation stops the run and the partially
// filled state is returned with the error.
func (p *Pipeline) Run(ctx context.Context, company string) (*model.PipelineState, error) {
	company = strings.TrimSpace(company)
	state := model.NewPipelineState(uuid.NewString(), company)
	log := p.log.WithFields(logrus.Fields{"run_id": state.RunID, "company": company})

	if company == "" {
		return fail(state, errors.New("company name is required"))
	}
	log.Info("Run started")

	// Init -> Ingested
	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}
	docs, err := p.ingestor.FetchDocuments(ctx, company, p.opts.MaxDocuments)
	if err != nil {
		state.Trace.Set(TraceIngestError, err.Error())
		log.WithError(err).Warn("Ingestion incomplete")
	}
	if docs != nil {
		state.Docs = docs
	}
	state.Trace.Set(TraceIngestCount, strconv.Itoa(len(state.Docs)))
	state.Stage = model.StageIngested

	// Ingested -> Extracted
	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}
	events, err := p.extractor.Extract(ctx, company, state.Docs, state.Trace)
	if err != nil {
		return fail(state, err)
	}
	state.Events = events.Value
	state.Stage = model.StageExtracted
	if p.opts.FailOnFallback && events.IsFallback() {
		return fail(state, fmt.Errorf("extraction: %w: %s", ErrFallback, events.Reason))
	}

	// Extracted -> Advised
	if err := ctx.Err(); err != nil {
		return fail(state, err)
	}
	report, err := p.advisor.Advise(ctx, company, state.Events, state.Trace)
	if err != nil {
		return fail(state, err)
	}
	state.Report = report.Value.Normalize()
	state.Stage = model.StageAdvised
	if p.opts.FailOnFallback && report.IsFallback() && report.Reason != advise.NoEventsReason {
		return fail(state, fmt.Errorf("advisory: %w: %s", ErrFallback, report.Reason))
	}

	state.Stage = model.StageDone
	log.WithFields(logrus.Fields{
		"documents":  len(state.Docs),
		"events":     len(state.Events),
		"extraction": events.Kind.String(),
		"advisory":   report.Kind.String(),
	}).Info("Run finished")

	return state, nil
}

func fail(state *model.PipelineState, err error) (*model.PipelineState, error) {
	state.Trace.Set(TraceError, err.Error())
	return state, err
}
