package model

// MatchSignal is a machine-computed comparison of one extraction against one
// candidate breach. A nil field means the pair is incomparable because data
// is missing on either side; it must never collapse to false.
type MatchSignal struct {
	RecordsMatch       *bool
	AttackVectorMatch  *bool
	CandidateRecords   *int64
	CandidateVector    *AttackVector
}

// BothMatch reports whether every comparable signal is present and true.
// This is the high-duplicate-prior condition for the decision prompt.
func (s MatchSignal) BothMatch() bool {
	return s.RecordsMatch != nil && *s.RecordsMatch &&
		s.AttackVectorMatch != nil && *s.AttackVectorMatch
}

// UpdateLabel is the three-way verdict from the update-detection call.
type UpdateLabel string

const (
	LabelNewBreach       UpdateLabel = "NEW_BREACH"
	LabelGenuineUpdate   UpdateLabel = "GENUINE_UPDATE"
	LabelDuplicateSource UpdateLabel = "DUPLICATE_SOURCE"
)

// UpdateCheck is the validated response of the update-detection call.
type UpdateCheck struct {
	Label           UpdateLabel `json:"classification"`
	RelatedBreachID string      `json:"related_breach_id"`
	UpdateType      UpdateType  `json:"update_type"`
	UpdateSummary   string      `json:"update_summary"`
	Confidence      float64     `json:"confidence"`
	Reasoning       string      `json:"reasoning"`
}

// DecisionKind is the side effect the run coordinator must perform.
type DecisionKind string

const (
	DecisionCreateNew    DecisionKind = "create_new"
	DecisionAppendUpdate DecisionKind = "append_update"
	DecisionDiscard      DecisionKind = "discard"
)

// Decision is the engine's final verdict for one article.
type Decision struct {
	Kind          DecisionKind
	BreachID      string     // set for AppendUpdate
	UpdateType    UpdateType // set for AppendUpdate
	ChangeSummary string     // short change description, never the full summary
	Confidence    float64
	Rationale     string
}

// RunStats aggregates the externally visible outcome of one run.
type RunStats struct {
	Fetched             int `json:"fetched"`
	Recent              int `json:"recent"`
	New                 int `json:"new"`
	ClassifiedBreach    int `json:"classified_breach"`
	ClassifiedNonBreach int `json:"classified_non_breach"`
	Created             int `json:"created"`
	Updated             int `json:"updated"`
	DuplicatesSkipped   int `json:"duplicates_skipped"`
	Skipped             int `json:"skipped"`
	Failed              int `json:"failed"`
}
