package store

import (
	"context"

	"github.com/breachcase/breachwatch/internal/model"
)

// Store defines the persistence interface for the scraper pipeline.
//
// Candidates supplied by the store are read-only to the pipeline: mutation
// happens only through CreateBreach and AppendBreachUpdate.
type Store interface {
	// ListBreachStubs returns id + company for every breach, no date filter.
	// The fuzzy candidate pre-filter runs over the full database so old
	// incidents are never invisible to dedup.
	ListBreachStubs(ctx context.Context) ([]model.BreachStub, error)

	// GetBreachesByIDs fetches full dedup-context fields for candidates that
	// survived the pre-filter.
	GetBreachesByIDs(ctx context.Context, ids []string) ([]model.Breach, error)

	// CreateBreach persists a new breach and its source article, returning
	// the new breach ID.
	CreateBreach(ctx context.Context, extraction model.Extraction, article model.RawArticle) (string, error)

	// AppendBreachUpdate appends a timeline entry to an existing breach and
	// records the article as an additional source.
	AppendBreachUpdate(ctx context.Context, entry model.UpdateEntry) (string, error)

	// FindBreachIDByURL returns the breach already associated with a source
	// URL, or "" if the URL is unknown.
	FindBreachIDByURL(ctx context.Context, url string) (string, error)

	// Processed markers give idempotent re-processing across runs.
	IsProcessed(ctx context.Context, url string) (bool, error)
	MarkProcessed(ctx context.Context, url string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
