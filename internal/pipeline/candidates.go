package pipeline

import (
	"sort"

	"github.com/breachcase/breachwatch/internal/match"
	"github.com/breachcase/breachwatch/internal/model"
)

type scoredStub struct {
	id    string
	score float64
}

// FilterCandidates narrows the known-breach population down to the stubs
// whose company name is plausibly the same organization as the extracted
// one. Only these survivors are hydrated and shown to the model, which keeps
// the decision prompt small regardless of how large the corpus grows.
//
// Results are ordered best match first and capped at max (unlimited when
// max <= 0).
func FilterCandidates(company string, stubs []model.BreachStub, threshold float64, max int) []string {
	var scored []scoredStub
	for _, stub := range stubs {
		score := match.Similarity(company, stub.Company)
		if score >= threshold {
			scored = append(scored, scoredStub{id: stub.ID, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if max > 0 && len(scored) > max {
		scored = scored[:max]
	}

	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}
	return ids
}
