package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/marketpulse/internal/model"
)

// Result is the JSON document written for a finished run
type Result struct {
	RunID   string              `json:"run_id"`
	Company string              `json:"company"`
	Stage   model.Stage         `json:"stage"`
	Events  []model.Event       `json:"events"`
	Report  model.AdvisorReport `json:"report"`
	Docs    []model.Document    `json:"docs,omitempty"`
	Trace   model.Trace         `json:"trace,omitempty"`
}

// NewResult projects a state onto its output form. Documents and trace are included only when verbose.
func NewResult(state *model.PipelineState, verbose bool) Result {
	r := Result{
		RunID:   state.RunID,
		Company: state.Company,
		Stage:   state.Stage,
		Events:  state.Events,
		Report:  state.Report.Normalize(),
	}
	if r.Events == nil {
		r.Events = []model.Event{}
	}
	if verbose {
		r.Docs = state.Docs
		r.Trace = state.Trace
	}
	return r
}

// WriteJSON writes result as indented JSON to path, or to stdout when path is "-"
func WriteJSON(result Result, path string, stdout io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
