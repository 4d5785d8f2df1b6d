package model

import (
	"sort"
	"time"
)

// Stage is a position in the pipeline state machine
type Stage string

const (
	StageInit      Stage = "init"
	StageIngested  Stage = "ingested"
	StageExtracted Stage = "extracted"
	StageAdvised   Stage = "advised"
	StageDone      Stage = "done"
)

// Trace maps a stage key (e.g. "extraction.raw") to human-readable diagnostic detail.
// It is for observability only and never drives control flow.
type Trace map[string]string

// Set records a trace entry, ignoring empty values
func (t Trace) Set(key, value string) {
	if value == "" {
		return
	}
	t[key] = value
}

// Keys returns the trace keys in sorted order
func (t Trace) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PipelineState is the single mutable record threaded through one pipeline run.
// It is owned by exactly one run and is never shared or persisted.
type PipelineState struct {
	RunID     string        `json:"run_id"`
	Company   string        `json:"company"`
	Stage     Stage         `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	Docs      []Document    `json:"docs"`
	Events    []Event       `json:"events"`
	Report    AdvisorReport `json:"report"`
	Trace     Trace         `json:"trace"`
}

// NewPipelineState creates an empty state for one run
func NewPipelineState(runID, company string) *PipelineState {
	return &PipelineState{
		RunID:     runID,
		Company:   company,
		Stage:     StageInit,
		StartedAt: time.Now().UTC(),
		Docs:      []Document{},
		Events:    []Event{},
		Report:    AdvisorReport{}.Normalize(),
		Trace:     Trace{},
	}
}
