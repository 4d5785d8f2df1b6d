package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/marketpulse/internal/cache"
	"github.com/ppiankov/marketpulse/internal/model"
)

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]model.Document
	delay map[string]time.Duration
	calls []string
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, rawURL string) (model.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	delay := f.delay[rawURL]
	f.mu.Unlock()

	time.Sleep(delay)
	doc, ok := f.docs[rawURL]
	if !ok {
		return model.Document{}, &StatusError{StatusCode: 404, Status: "404 Not Found"}
	}
	return doc, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestIngestor(catalog *Catalog, fetcher DocumentFetcher, c cache.Cache) *CatalogIngestor {
	logger, _ := test.NewNullLogger()
	return NewCatalogIngestor(catalog, fetcher, c, 4, logger)
}

func TestFetchDocuments_PreservesCatalogOrder(t *testing.T) {
	catalog := NewCatalog(".")
	catalog.Add("Acme",
		Entry{URL: "https://a.example.com/slow"},
		Entry{Title: "Inline", Content: "Inline body."},
		Entry{URL: "https://b.example.com/fast", Title: "Catalog title", Date: "2024-06-01"},
	)
	fetcher := &fakeFetcher{
		docs: map[string]model.Document{
			"https://a.example.com/slow": {Title: "Slow", URL: "https://a.example.com/slow", Content: "slow body"},
			"https://b.example.com/fast": {Title: "Page title", Date: "2020-01-01", URL: "https://b.example.com/fast", Content: "fast body"},
		},
		delay: map[string]time.Duration{"https://a.example.com/slow": 50 * time.Millisecond},
	}

	docs, err := newTestIngestor(catalog, fetcher, nil).FetchDocuments(context.Background(), "acme", 0)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Slow", docs[0].Title)
	assert.Equal(t, "Inline", docs[1].Title)
	assert.Equal(t, "Catalog title", docs[2].Title)
	assert.Equal(t, "2024-06-01", docs[2].Date)
}

func TestFetchDocuments_MaxLimitsEntries(t *testing.T) {
	catalog := NewCatalog(".")
	for _, body := range []string{"one", "two", "three", "four"} {
		catalog.Add("Acme", Entry{Title: body, Content: body})
	}

	docs, err := newTestIngestor(catalog, nil, nil).FetchDocuments(context.Background(), "Acme", 3)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "three", docs[2].Title)
}

func TestFetchDocuments_UnknownCompany(t *testing.T) {
	docs, err := newTestIngestor(NewCatalog("."), nil, nil).FetchDocuments(context.Background(), "Initech", 3)

	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestFetchDocuments_PartialFailure(t *testing.T) {
	catalog := NewCatalog(".")
	catalog.Add("Acme",
		Entry{URL: "https://a.example.com/missing"},
		Entry{Title: "Inline", Content: "Inline body."},
	)

	docs, err := newTestIngestor(catalog, &fakeFetcher{}, nil).FetchDocuments(context.Background(), "Acme", 0)

	require.Len(t, docs, 1)
	assert.Equal(t, "Inline", docs[0].Title)
	require.Error(t, err)
	assert.True(t, IsIngestError(err))

	var ingestErr *Error
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, "https://a.example.com/missing", ingestErr.Source)
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestFetchDocuments_NoFetcher(t *testing.T) {
	catalog := NewCatalog(".")
	catalog.AddURLs("Acme", []string{"https://a.example.com/1"})

	docs, err := newTestIngestor(catalog, nil, nil).FetchDocuments(context.Background(), "Acme", 0)

	assert.Empty(t, docs)
	assert.True(t, IsIngestError(err))
}

func TestFetchDocuments_UsesCache(t *testing.T) {
	catalog := NewCatalog(".")
	catalog.AddURLs("Acme", []string{"https://a.example.com/1"})
	fetcher := &fakeFetcher{docs: map[string]model.Document{
		"https://a.example.com/1": {Title: "Cached", URL: "https://a.example.com/1", Content: "body"},
	}}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	ingestor := newTestIngestor(catalog, fetcher, c)

	for i := 0; i < 2; i++ {
		docs, err := ingestor.FetchDocuments(context.Background(), "Acme", 0)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Cached", docs[0].Title)
	}
	assert.Equal(t, 1, fetcher.callCount())
}

func TestFetchDocuments_CanceledContext(t *testing.T) {
	catalog := NewCatalog(".")
	catalog.Add("Acme", Entry{Title: "Inline", Content: "Inline body."})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, err := newTestIngestor(catalog, nil, nil).FetchDocuments(ctx, "Acme", 0)

	assert.Empty(t, docs)
	assert.True(t, errors.Is(err, context.Canceled))
}
