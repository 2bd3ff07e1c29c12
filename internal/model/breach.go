package model

import "time"

// AttackVector categorizes how a breach happened. Values mirror the CHECK
// constraint on breaches.attack_vector.
type AttackVector string

const (
	AttackVectorPhishing             AttackVector = "phishing"
	AttackVectorRansomware           AttackVector = "ransomware"
	AttackVectorMalware              AttackVector = "malware"
	AttackVectorVulnerabilityExploit AttackVector = "vulnerability_exploit"
	AttackVectorCredentialAttack     AttackVector = "credential_attack"
	AttackVectorSocialEngineering    AttackVector = "social_engineering"
	AttackVectorInsider              AttackVector = "insider"
	AttackVectorSupplyChain          AttackVector = "supply_chain"
	AttackVectorMisconfiguration     AttackVector = "misconfiguration"
	AttackVectorUnauthorizedAccess   AttackVector = "unauthorized_access"
	AttackVectorScraping             AttackVector = "scraping"
	AttackVectorOther                AttackVector = "other"
)

// AllAttackVectors returns every valid attack vector value.
func AllAttackVectors() []AttackVector {
	return []AttackVector{
		AttackVectorPhishing,
		AttackVectorRansomware,
		AttackVectorMalware,
		AttackVectorVulnerabilityExploit,
		AttackVectorCredentialAttack,
		AttackVectorSocialEngineering,
		AttackVectorInsider,
		AttackVectorSupplyChain,
		AttackVectorMisconfiguration,
		AttackVectorUnauthorizedAccess,
		AttackVectorScraping,
		AttackVectorOther,
	}
}

// ValidAttackVector reports whether v is a known attack vector.
func ValidAttackVector(v AttackVector) bool {
	for _, av := range AllAttackVectors() {
		if av == v {
			return true
		}
	}
	return false
}

// Severity is the impact rating assigned during extraction.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// UpdateType categorizes a timeline update appended to an existing breach.
type UpdateType string

const (
	UpdateTypeNewInfo        UpdateType = "new_info"
	UpdateTypeClassAction    UpdateType = "class_action"
	UpdateTypeRegulatoryFine UpdateType = "regulatory_fine"
	UpdateTypeRemediation    UpdateType = "remediation"
	UpdateTypeResolution     UpdateType = "resolution"
	UpdateTypeInvestigation  UpdateType = "investigation"
)

// ValidUpdateType reports whether t is a known update type.
func ValidUpdateType(t UpdateType) bool {
	switch t {
	case UpdateTypeNewInfo, UpdateTypeClassAction, UpdateTypeRegulatoryFine,
		UpdateTypeRemediation, UpdateTypeResolution, UpdateTypeInvestigation:
		return true
	}
	return false
}

// Extraction holds the structured facts pulled out of one article.
// Company and Summary are mandatory; everything else may be absent.
type Extraction struct {
	Company         string        `json:"company"`
	Title           string        `json:"title"`
	Industry        *string       `json:"industry"`
	Country         *string       `json:"country"`
	Continent       *string       `json:"continent"`
	DiscoveryDate   *string       `json:"discovery_date"`
	DisclosureDate  *string       `json:"disclosure_date"`
	RecordsAffected *int64        `json:"records_affected"`
	BreachMethod    *string       `json:"breach_method"`
	AttackVector    *AttackVector `json:"attack_vector"`
	ThreatActor     *string       `json:"threat_actor"`
	DataCompromised []string      `json:"data_compromised"`
	Severity        *Severity     `json:"severity"`
	CVEReferences   []string      `json:"cve_references"`
	MitreTechniques []string      `json:"mitre_attack_techniques"`
	Summary         string        `json:"summary"`
	LessonsLearned  *string       `json:"lessons_learned"`
}

// BreachStub is the minimal projection used by the fuzzy candidate pre-filter.
// Full candidate details are fetched separately once a stub survives the filter.
type BreachStub struct {
	ID      string `json:"id"`
	Company string `json:"company"`
}

// Breach is a previously persisted incident supplied as a dedup candidate.
// Read-only to the pipeline; mutation happens only via AppendBreachUpdate.
type Breach struct {
	ID              string        `json:"id"`
	Company         string        `json:"company"`
	DiscoveryDate   *string       `json:"discovery_date"`
	RecordsAffected *int64        `json:"records_affected"`
	AttackVector    *AttackVector `json:"attack_vector"`
	Summary         string        `json:"summary"`
	CreatedAt       time.Time     `json:"created_at"`
}

// UpdateEntry is an append-only timeline entry for an existing breach.
type UpdateEntry struct {
	BreachID      string     `json:"breach_id"`
	UpdateType    UpdateType `json:"update_type"`
	Description   string     `json:"description"`
	SourceURL     string     `json:"source_url"`
	SourceTitle   string     `json:"source_title"`
	Confidence    float64    `json:"confidence"`
	Rationale     string     `json:"rationale"`
	ExtractedData *Extraction `json:"extracted_data,omitempty"`
}
