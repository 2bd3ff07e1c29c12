package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/breachcase/breachwatch/internal/ai"
	"github.com/breachcase/breachwatch/internal/config"
	"github.com/breachcase/breachwatch/internal/match"
	"github.com/breachcase/breachwatch/internal/model"
	"github.com/breachcase/breachwatch/internal/store"
)

// Runner coordinates one scraping run: classification, extraction,
// candidate matching, the update decision, and the resulting writes.
//
// Articles are processed strictly in order. The in-run index depends on
// earlier articles' outcomes being visible before later ones are matched,
// so there is deliberately no per-article concurrency here.
type Runner struct {
	store     store.Store
	processor ai.Processor
	decider   *Decider
	cfg       *config.Config
}

func NewRunner(st store.Store, processor ai.Processor, cfg *config.Config) *Runner {
	return &Runner{
		store:     st,
		processor: processor,
		decider:   NewDecider(processor, cfg.Decision),
		cfg:       cfg,
	}
}

// Run processes the given articles oldest first and returns the run's
// counters. A cancelled context stops the run between articles; everything
// already written stays written and the partial stats are returned with the
// cancellation error.
//
// One article failing never aborts the run. Failures are counted, logged
// with the article URL, and the run moves on.
func (r *Runner) Run(ctx context.Context, articles []model.RawArticle) (model.RunStats, error) {
	var stats model.RunStats
	ix := match.NewRunIndex(r.cfg.Match.InBatchThreshold)

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		markProcessed, err := r.processArticle(ctx, ix, article, &stats)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			zap.L().Error("article processing failed",
				zap.String("url", article.URL),
				zap.Error(err),
			)
		}
		if markProcessed {
			if err := r.store.MarkProcessed(ctx, article.URL); err != nil {
				zap.L().Warn("failed to mark article processed",
					zap.String("url", article.URL),
					zap.Error(err),
				)
			}
		}
	}

	zap.L().Info("run complete",
		zap.Int("new", stats.New),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("duplicates_skipped", stats.DuplicatesSkipped),
		zap.Int("non_breach", stats.ClassifiedNonBreach),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// processArticle runs one article through the full state machine. The
// returned bool says whether the article should be marked processed: true
// for every terminal outcome except storage failures, which stay unmarked
// so a later run can retry the write.
func (r *Runner) processArticle(ctx context.Context, ix *match.RunIndex, article model.RawArticle, stats *model.RunStats) (bool, error) {
	processed, err := r.store.IsProcessed(ctx, article.URL)
	if err != nil {
		return false, err
	}
	if processed {
		stats.Skipped++
		return false, nil
	}

	// A URL already attached to a breach means a prior run wrote the
	// article but failed to mark it. Don't write it twice.
	if breachID, err := r.store.FindBreachIDByURL(ctx, article.URL); err != nil {
		return false, err
	} else if breachID != "" {
		stats.Skipped++
		return true, nil
	}

	stats.New++

	if r.cfg.Classification.Enabled {
		classification, err := r.processor.Classify(ctx, article)
		if err != nil {
			return ai.IsValidation(err), err
		}
		if !classification.IsBreach || classification.Confidence < r.cfg.Classification.Threshold {
			stats.ClassifiedNonBreach++
			zap.L().Debug("article classified as non-breach",
				zap.String("url", article.URL),
				zap.Float64("confidence", classification.Confidence),
			)
			return true, nil
		}
		stats.ClassifiedBreach++
	}

	extraction, err := r.processor.Extract(ctx, article)
	if err != nil {
		// Validation failures are deterministic: mark the article so it
		// is not re-fed to the model every run. Transient failures stay
		// unmarked and get retried.
		return ai.IsValidation(err), err
	}

	decision, err := r.decide(ctx, ix, article, *extraction)
	if err != nil {
		return false, err
	}

	switch decision.Kind {
	case model.DecisionCreateNew:
		breachID, err := r.store.CreateBreach(ctx, *extraction, article)
		if err != nil {
			return false, err
		}
		stats.Created++
		ix.Register(breachID, extraction.Company)
		zap.L().Info("breach created",
			zap.String("breach_id", breachID),
			zap.String("company", extraction.Company),
			zap.String("url", article.URL),
		)

	case model.DecisionAppendUpdate:
		if _, err := r.store.AppendBreachUpdate(ctx, model.UpdateEntry{
			BreachID:      decision.BreachID,
			UpdateType:    decision.UpdateType,
			Description:   decision.ChangeSummary,
			SourceURL:     article.URL,
			SourceTitle:   article.Title,
			Confidence:    decision.Confidence,
			Rationale:     decision.Rationale,
			ExtractedData: extraction,
		}); err != nil {
			return false, err
		}
		stats.Updated++
		ix.Register(decision.BreachID, extraction.Company)
		zap.L().Info("breach update appended",
			zap.String("breach_id", decision.BreachID),
			zap.String("update_type", string(decision.UpdateType)),
			zap.String("url", article.URL),
		)

	case model.DecisionDiscard:
		stats.DuplicatesSkipped++
		zap.L().Debug("article discarded as duplicate coverage",
			zap.String("url", article.URL),
			zap.String("rationale", decision.Rationale),
		)
	}

	return true, nil
}

// decide resolves the article's fate, consulting the in-run index before
// storage. An index hit is authoritative: the organization was already
// created or updated this run, so the article is appended as an update with
// full confidence and no model call.
func (r *Runner) decide(ctx context.Context, ix *match.RunIndex, article model.RawArticle, extraction model.Extraction) (model.Decision, error) {
	if entry, ok := ix.FindMatch(extraction.Company); ok {
		return model.Decision{
			Kind:          model.DecisionAppendUpdate,
			BreachID:      entry.BreachID,
			UpdateType:    model.UpdateTypeNewInfo,
			ChangeSummary: article.Title,
			Confidence:    1.0,
			Rationale:     "same organization already created or updated in this run",
		}, nil
	}

	stubs, err := r.store.ListBreachStubs(ctx)
	if err != nil {
		return model.Decision{}, err
	}
	ids := FilterCandidates(extraction.Company, stubs, r.cfg.Match.CandidateThreshold, r.cfg.Decision.MaxCandidateContext)
	var candidates []model.Breach
	if len(ids) > 0 {
		candidates, err = r.store.GetBreachesByIDs(ctx, ids)
		if err != nil {
			return model.Decision{}, err
		}
	}

	signals := ComputeSignals(extraction, candidates, r.cfg.Match.ScaleTolerance)
	return r.decider.Decide(ctx, article, candidates, signals)
}
