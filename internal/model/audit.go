package model

// AuditRow is the flattened per-breach view the data-quality audit works on.
type AuditRow struct {
	ID              string
	Company         string
	Title           *string
	Industry        *string
	Country         *string
	DiscoveryDate   *string
	RecordsAffected *int64
	AttackVector    *AttackVector
	Severity        *Severity
	Summary         string
	SourceCount     int
	UpdateCount     int
}
