package feed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachcase/breachwatch/internal/config"
)

func feedBody(entries ...string) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel>`
	for _, e := range entries {
		body += e
	}
	return body + `</channel></rss>`
}

func entry(title, url string, published time.Time) string {
	return fmt.Sprintf(
		`<item><title>%s</title><link>%s</link><description>%s</description><pubDate>%s</pubDate></item>`,
		title, url, title, published.Format(time.RFC1123Z))
}

func newTestFetcher(sources []config.FeedSource) *HTTPFetcher {
	f := NewHTTPFetcher(config.FeedsConfig{
		Sources:       sources,
		LookbackHours: 48,
		TimeoutSecs:   5,
		MaxWorkers:    2,
	})
	f.retryCfg.MaxAttempts = 1
	f.retryCfg.InitialBackoff = time.Millisecond
	return f
}

func TestFetchAll_FiltersOldAndDeduplicates(t *testing.T) {
	now := time.Now().UTC()
	recent := entry("Acme breach", "https://example.com/acme", now.Add(-2*time.Hour))
	stale := entry("Old incident", "https://example.com/old", now.Add(-100*time.Hour))

	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody(recent, stale))
	}))
	defer srvA.Close()
	srvB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody(recent))
	}))
	defer srvB.Close()

	f := newTestFetcher([]config.FeedSource{
		{Key: "wire_a", Name: "Wire A", URL: srvA.URL},
		{Key: "wire_b", Name: "Wire B", URL: srvB.URL},
	})

	result, err := f.FetchAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "https://example.com/acme", result.Articles[0].URL)
	assert.Equal(t, "Acme breach", result.Articles[0].Title)
}

func TestFetchAll_OrdersOldestFirst(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody(
			entry("Follow-up", "https://example.com/followup", now.Add(-1*time.Hour)),
			entry("First report", "https://example.com/first", now.Add(-10*time.Hour)),
		))
	}))
	defer srv.Close()

	f := newTestFetcher([]config.FeedSource{{Key: "wire", Name: "Wire", URL: srv.URL}})

	result, err := f.FetchAll(t.Context())
	require.NoError(t, err)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "https://example.com/first", result.Articles[0].URL)
	assert.Equal(t, "https://example.com/followup", result.Articles[1].URL)
}

func TestFetchAll_DeadSourceIsSkipped(t *testing.T) {
	now := time.Now().UTC()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody(entry("Acme breach", "https://example.com/acme", now.Add(-time.Hour))))
	}))
	defer good.Close()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer dead.Close()

	f := newTestFetcher([]config.FeedSource{
		{Key: "good", Name: "Good", URL: good.URL},
		{Key: "dead", Name: "Dead", URL: dead.URL},
	})

	result, err := f.FetchAll(t.Context())
	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "good", result.Articles[0].SourceKey)
}

func TestFetchAll_NoSources(t *testing.T) {
	f := newTestFetcher(nil)
	_, err := f.FetchAll(t.Context())
	require.Error(t, err)
}
