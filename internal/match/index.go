package match

// Entry is one record registered in a RunIndex.
type Entry struct {
	BreachID string
	Company  string
}

// RunIndex tracks the breaches created or updated so far in the current run,
// so two articles about the same organization arriving in one batch resolve
// to the same record before either is visible in durable storage.
//
// A RunIndex is owned by the run coordinator: created at run start, passed
// into each article's processing step, discarded at run end. It is not safe
// for concurrent use and does not need to be — article processing within a
// run is sequential.
type RunIndex struct {
	threshold float64
	entries   []Entry
}

// NewRunIndex creates an empty index with the given similarity threshold.
func NewRunIndex(threshold float64) *RunIndex {
	return &RunIndex{threshold: threshold}
}

// FindMatch returns the registered entry whose company name is most similar
// to company, provided the similarity meets the threshold. Ties break toward
// the most recently registered entry, the freshest reference for an evolving
// story within one run.
func (ix *RunIndex) FindMatch(company string) (Entry, bool) {
	var (
		best      Entry
		bestScore float64
		found     bool
	)
	for _, e := range ix.entries {
		score := Similarity(company, e.Company)
		if score < ix.threshold {
			continue
		}
		// >= so later registrations win ties.
		if !found || score >= bestScore {
			best = e
			bestScore = score
			found = true
		}
	}
	return best, found
}

// Register records a created or updated breach for the remainder of the run.
func (ix *RunIndex) Register(breachID, company string) {
	ix.entries = append(ix.entries, Entry{BreachID: breachID, Company: company})
}

// Len returns the number of registered entries.
func (ix *RunIndex) Len() int {
	return len(ix.entries)
}
