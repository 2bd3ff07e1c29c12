package feed

import (
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/breachcase/breachwatch/internal/config"
	"github.com/breachcase/breachwatch/internal/model"
	"github.com/breachcase/breachwatch/internal/resilience"
)

const maxFeedBody = 10 << 20 // 10 MiB cap per feed response

// Result is the outcome of polling every configured source.
type Result struct {
	// Articles are the recent, URL-deduplicated entries, oldest first.
	Articles []model.RawArticle
	// Fetched counts every entry seen before recency filtering.
	Fetched int
}

// Fetcher retrieves recent articles from the configured feed sources.
type Fetcher interface {
	FetchAll(ctx context.Context) (Result, error)
}

// HTTPFetcher polls RSS and Atom feeds over HTTP. Per-source failures are
// logged and skipped so one dead feed never aborts a run.
type HTTPFetcher struct {
	client   *http.Client
	cfg      config.FeedsConfig
	retryCfg resilience.RetryConfig
	now      func() time.Time
}

// NewHTTPFetcher builds a fetcher from the feeds configuration.
func NewHTTPFetcher(cfg config.FeedsConfig) *HTTPFetcher {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("feed", "fetch")
	return &HTTPFetcher{
		client:   &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		cfg:      cfg,
		retryCfg: retryCfg,
		now:      time.Now,
	}
}

// FetchAll polls every configured source concurrently, keeps entries
// published inside the lookback window, and deduplicates by URL. The
// result is ordered oldest first so earlier coverage is processed before
// follow-ups.
func (f *HTTPFetcher) FetchAll(ctx context.Context) (Result, error) {
	if len(f.cfg.Sources) == 0 {
		return Result{}, eris.New("feed: no sources configured")
	}

	cutoff := f.now().UTC().Add(-time.Duration(f.cfg.LookbackHours) * time.Hour)

	var mu sync.Mutex
	var all []model.RawArticle
	fetched := 0

	g, gctx := errgroup.WithContext(ctx)
	workers := f.cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	for _, source := range f.cfg.Sources {
		g.Go(func() error {
			articles, entries, err := f.fetchSource(gctx, source, cutoff)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("feed source failed",
					zap.String("source", source.Key),
					zap.String("url", source.URL),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			all = append(all, articles...)
			fetched += entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.Before(all[j].PublishedAt)
	})

	return Result{Articles: dedupeByURL(all), Fetched: fetched}, nil
}

func (f *HTTPFetcher) fetchSource(ctx context.Context, source config.FeedSource, cutoff time.Time) ([]model.RawArticle, int, error) {
	body, err := resilience.DoVal(ctx, f.retryCfg, func(ctx context.Context) ([]byte, error) {
		return f.get(ctx, source.URL)
	})
	if err != nil {
		return nil, 0, err
	}

	items, err := Parse(body)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "feed: parse %s", source.Key)
	}

	articles := make([]model.RawArticle, 0, len(items))
	for _, item := range items {
		// Entries without a parsable date are kept: a missing timestamp
		// is not proof of staleness.
		if !item.PublishedAt.IsZero() && item.PublishedAt.Before(cutoff) {
			continue
		}
		articles = append(articles, model.RawArticle{
			SourceKey:   source.Key,
			SourceName:  source.Name,
			URL:         item.URL,
			Title:       item.Title,
			Summary:     item.Summary,
			PublishedAt: item.PublishedAt,
		})
	}

	zap.L().Debug("feed source fetched",
		zap.String("source", source.Key),
		zap.Int("entries", len(items)),
		zap.Int("recent", len(articles)),
	)
	return articles, len(items), nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "feed: build request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, resilience.NewTransientError(err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("feed: unexpected status %s", resp.Status)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "feed: read body"), 0)
	}
	return body, nil
}

// dedupeByURL keeps the first occurrence of each URL.
func dedupeByURL(articles []model.RawArticle) []model.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
