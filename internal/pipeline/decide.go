package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/breachcase/breachwatch/internal/ai"
	"github.com/breachcase/breachwatch/internal/config"
	"github.com/breachcase/breachwatch/internal/model"
)

// Decider resolves whether an article describes a new incident, a genuine
// development of a known one, or redundant coverage.
type Decider struct {
	processor ai.Processor
	cfg       config.DecisionConfig
}

func NewDecider(processor ai.Processor, cfg config.DecisionConfig) *Decider {
	return &Decider{processor: processor, cfg: cfg}
}

// Decide returns the side effect to perform for one article. An empty
// candidate set short-circuits to creation without a model call. A malformed
// or internally inconsistent model verdict falls back to creation: recording
// a possible duplicate is recoverable, silently discarding a new incident is
// not. Transient errors propagate so the article can be retried on a later
// run.
func (d *Decider) Decide(ctx context.Context, article model.RawArticle, candidates []model.Breach, signals map[string]model.MatchSignal) (model.Decision, error) {
	if len(candidates) == 0 {
		return model.Decision{
			Kind:       model.DecisionCreateNew,
			Confidence: 1.0,
			Rationale:  "no known breach resembles this organization",
		}, nil
	}

	check, err := d.processor.DetectUpdate(ctx, article, candidates, signals)
	if err != nil {
		if ai.IsValidation(err) {
			zap.L().Warn("update detection returned invalid verdict, creating new breach",
				zap.String("url", article.URL),
				zap.Error(err),
			)
			return model.Decision{
				Kind:       model.DecisionCreateNew,
				Confidence: 0,
				Rationale:  "update detection verdict was invalid",
			}, nil
		}
		return model.Decision{}, err
	}

	switch check.Label {
	case model.LabelDuplicateSource:
		return model.Decision{
			Kind:       model.DecisionDiscard,
			Confidence: check.Confidence,
			Rationale:  check.Reasoning,
		}, nil

	case model.LabelGenuineUpdate:
		if check.Confidence < d.cfg.UpdateConfidenceThreshold {
			// A low-confidence update claim is treated as redundant
			// coverage rather than risking a wrong append.
			return model.Decision{
				Kind:       model.DecisionDiscard,
				Confidence: check.Confidence,
				Rationale:  "update confidence below threshold: " + check.Reasoning,
			}, nil
		}
		if !candidateKnown(check.RelatedBreachID, candidates) {
			zap.L().Warn("update verdict referenced unknown breach, creating new breach",
				zap.String("url", article.URL),
				zap.String("related_breach_id", check.RelatedBreachID),
			)
			return model.Decision{
				Kind:       model.DecisionCreateNew,
				Confidence: check.Confidence,
				Rationale:  "update verdict referenced an unknown breach",
			}, nil
		}
		summary := check.UpdateSummary
		if summary == "" {
			summary = article.Title
		}
		return model.Decision{
			Kind:          model.DecisionAppendUpdate,
			BreachID:      check.RelatedBreachID,
			UpdateType:    check.UpdateType,
			ChangeSummary: summary,
			Confidence:    check.Confidence,
			Rationale:     check.Reasoning,
		}, nil

	default: // model.LabelNewBreach
		return model.Decision{
			Kind:       model.DecisionCreateNew,
			Confidence: check.Confidence,
			Rationale:  check.Reasoning,
		}, nil
	}
}

func candidateKnown(id string, candidates []model.Breach) bool {
	if id == "" {
		return false
	}
	for _, c := range candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}
