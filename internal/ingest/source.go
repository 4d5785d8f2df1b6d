package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/marketpulse/internal/cache"
	"github.com/ppiankov/marketpulse/internal/model"
	"github.com/ppiankov/marketpulse/internal/worker"
)

// DocumentFetcher turns a URL into a document
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, rawURL string) (model.Document, error)
}

// CatalogIngestor serves documents from a catalog, fetching URL-only entries live
type CatalogIngestor struct {
	catalog *Catalog
	fetcher DocumentFetcher
	cache   cache.Cache
	workers int
	log     logrus.FieldLogger
}

// NewCatalogIngestor creates an ingestor. fetcher may be nil when the catalog holds only local content.
func NewCatalogIngestor(catalog *Catalog, fetcher DocumentFetcher, c cache.Cache, workers int, log logrus.FieldLogger) *CatalogIngestor {
	if c == nil {
		c = cache.NopCache{}
	}
	return &CatalogIngestor{
		catalog: catalog,
		fetcher: fetcher,
		cache:   c,
		workers: workers,
		log:     log.WithField("stage", "ingest"),
	}
}

type ingested struct {
	doc model.Document
	err error
}

// FetchDocuments returns up to max documents for company in catalog order.
// Failed entries are skipped and reported together as joined *Error values.
func (i *CatalogIngestor) FetchDocuments(ctx context.Context, company string, max int) ([]model.Document, error) {
	entries := i.catalog.Entries(company)
	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	docs := make([]model.Document, 0, len(entries))
	if len(entries) == 0 {
		i.log.WithField("company", company).Info("No catalog entries for company")
		return docs, nil
	}

	jobs := make([]worker.Job[ingested], len(entries))
	for idx, entry := range entries {
		jobs[idx] = func(ctx context.Context) ingested {
			doc, err := i.resolve(ctx, entry)
			if err != nil {
				return ingested{err: &Error{Company: company, Source: entry.source(), Err: err}}
			}
			return ingested{doc: doc}
		}
	}

	var errs []error
	for _, result := range worker.NewPool[ingested](i.workers).Run(ctx, jobs) {
		if result.err != nil {
			i.log.WithError(result.err).Warn("Skipping article")
			errs = append(errs, result.err)
			continue
		}
		docs = append(docs, result.doc)
	}

	i.log.WithFields(logrus.Fields{
		"company":   company,
		"documents": len(docs),
		"failed":    len(errs),
	}).Info("Documents ingested")

	return docs, errors.Join(errs...)
}

func (i *CatalogIngestor) resolve(ctx context.Context, entry Entry) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if !entry.NeedsFetch() {
		return i.catalog.LocalDocument(entry)
	}

	if doc, ok := cache.GetDocument(i.cache, entry.URL); ok {
		i.log.WithField("url", entry.URL).Debug("Cache hit")
		return withCatalogMetadata(doc, entry), nil
	}
	if i.fetcher == nil {
		return model.Document{}, errors.New("live fetching is disabled")
	}

	doc, err := i.fetcher.FetchDocument(ctx, entry.URL)
	if err != nil {
		return model.Document{}, err
	}
	if err := cache.SetDocument(i.cache, entry.URL, doc); err != nil {
		i.log.WithError(err).WithField("url", entry.URL).Warn("Failed to cache document")
	}
	return withCatalogMetadata(doc, entry), nil
}

// withCatalogMetadata lets catalog title and date win over what the page declares
func withCatalogMetadata(doc model.Document, entry Entry) model.Document {
	if t := strings.TrimSpace(entry.Title); t != "" {
		doc.Title = t
	}
	if d := strings.TrimSpace(entry.Date); d != "" {
		doc.Date = d
	}
	return doc
}
