package pipeline

import (
	"github.com/breachcase/breachwatch/internal/model"
)

// ComputeSignals compares one extraction against each candidate breach and
// produces structural match signals keyed by candidate ID. A signal field is
// nil whenever the underlying value is missing on either side: absence of
// data means "incomparable", never "no match".
func ComputeSignals(extraction model.Extraction, candidates []model.Breach, scaleTolerance float64) map[string]model.MatchSignal {
	signals := make(map[string]model.MatchSignal, len(candidates))
	for _, candidate := range candidates {
		sig := model.MatchSignal{
			CandidateRecords: candidate.RecordsAffected,
			CandidateVector:  candidate.AttackVector,
		}
		if extraction.RecordsAffected != nil && candidate.RecordsAffected != nil {
			match := recordsWithinTolerance(*extraction.RecordsAffected, *candidate.RecordsAffected, scaleTolerance)
			sig.RecordsMatch = &match
		}
		if extraction.AttackVector != nil && candidate.AttackVector != nil {
			match := *extraction.AttackVector == *candidate.AttackVector
			sig.AttackVectorMatch = &match
		}
		signals[candidate.ID] = sig
	}
	return signals
}

// recordsWithinTolerance reports whether two record counts are within the
// relative tolerance of the larger count. The boundary is inclusive, and two
// zero counts compare equal.
func recordsWithinTolerance(a, b int64, tolerance float64) bool {
	if a == b {
		return true
	}
	larger := a
	diff := a - b
	if b > a {
		larger = b
		diff = b - a
	}
	if larger <= 0 {
		return false
	}
	return float64(diff)/float64(larger) <= tolerance
}
