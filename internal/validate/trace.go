package validate

import (
	"strings"

	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/repair"
)

// Trace key suffixes shared by the model-backed stages
const (
	TraceRaw            = "raw"
	TraceRepaired       = "repaired"
	TraceRepairs        = "repairs"
	TraceOutcome        = "outcome"
	TraceNotes          = "notes"
	TraceFallbackReason = "fallback_reason"
)

// Record writes the repair and validation details under prefix (e.g. "extraction")
func (o Outcome[T]) Record(trace model.Trace, prefix string, res repair.Result) {
	key := func(suffix string) string { return prefix + "." + suffix }

	trace.Set(key(TraceRaw), res.Original)
	if res.Changed() {
		trace.Set(key(TraceRepaired), res.Text)
		trace.Set(key(TraceRepairs), strings.Join(res.Applied, ","))
	}
	trace.Set(key(TraceOutcome), o.Kind.String())
	trace.Set(key(TraceNotes), strings.Join(o.Notes, "; "))
	if o.IsFallback() {
		trace.Set(key(TraceFallbackReason), o.Reason)
	}
}
