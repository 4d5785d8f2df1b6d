// Package ingest produces the news documents a run reasons over: a YAML catalog of
// company articles, with live fetching for entries that only carry a URL.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/marketpulse/internal/model"
)

// Ingestor returns at most max documents about company, in source order.
// A partial list may come back together with an error describing what was skipped.
type Ingestor interface {
	FetchDocuments(ctx context.Context, company string, max int) ([]model.Document, error)
}

// Error reports one article that could not be ingested
type Error struct {
	Company string
	Source  string // URL or content file of the failed entry
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s for %s: %v", e.Source, e.Company, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsIngestError reports whether err carries at least one ingestion failure
func IsIngestError(err error) bool {
	var ie *Error
	return errors.As(err, &ie)
}
