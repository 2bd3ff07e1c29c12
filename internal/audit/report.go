// Package audit builds data-quality reports over the stored breach corpus:
// suspected duplicate records that slipped past deduplication, and field
// coverage statistics showing where extraction is thin.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/breachcase/breachwatch/internal/match"
	"github.com/breachcase/breachwatch/internal/model"
)

// Source supplies the rows the audit runs over.
type Source interface {
	ListAuditRows(ctx context.Context) ([]model.AuditRow, error)
}

// DuplicateGroup is a set of breach records that appear to describe the same
// organization.
type DuplicateGroup struct {
	Companies []string
	IDs       []string
}

// FieldCoverage is the fill rate for one optional field.
type FieldCoverage struct {
	Field  string
	Filled int
	Total  int
}

// Rate returns the fill rate in [0, 1]; an empty corpus counts as fully filled.
func (f FieldCoverage) Rate() float64 {
	if f.Total == 0 {
		return 1
	}
	return float64(f.Filled) / float64(f.Total)
}

// Report is the outcome of one audit pass.
type Report struct {
	TotalBreaches   int
	TotalSources    int
	TotalUpdates    int
	DuplicateGroups []DuplicateGroup
	Coverage        []FieldCoverage
	Orphans         []string // breach IDs with no recorded source
}

// Auditor runs data-quality checks against a row source.
type Auditor struct {
	source    Source
	threshold float64
}

// NewAuditor creates an Auditor. threshold is the company-name similarity
// above which two records are flagged as suspected duplicates.
func NewAuditor(source Source, threshold float64) *Auditor {
	return &Auditor{source: source, threshold: threshold}
}

// Run produces a report for the current corpus.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	rows, err := a.source.ListAuditRows(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{TotalBreaches: len(rows)}
	for _, row := range rows {
		report.TotalSources += row.SourceCount
		report.TotalUpdates += row.UpdateCount
		if row.SourceCount == 0 {
			report.Orphans = append(report.Orphans, row.ID)
		}
	}

	report.DuplicateGroups = findDuplicateGroups(rows, a.threshold)
	report.Coverage = fieldCoverage(rows)
	return report, nil
}

// findDuplicateGroups clusters rows whose company names are mutually similar
// above the threshold. Clustering is transitive: if A matches B and B matches
// C, all three land in one group.
func findDuplicateGroups(rows []model.AuditRow, threshold float64) []DuplicateGroup {
	parent := make([]int, len(rows))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if match.Similarity(rows[i].Company, rows[j].Company) >= threshold {
				parent[find(i)] = find(j)
			}
		}
	}

	members := make(map[int][]int)
	for i := range rows {
		root := find(i)
		members[root] = append(members[root], i)
	}

	var groups []DuplicateGroup
	for _, idxs := range members {
		if len(idxs) < 2 {
			continue
		}
		group := DuplicateGroup{}
		for _, i := range idxs {
			group.Companies = append(group.Companies, rows[i].Company)
			group.IDs = append(group.IDs, rows[i].ID)
		}
		sort.Strings(group.IDs)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].IDs[0] < groups[j].IDs[0]
	})
	return groups
}

func fieldCoverage(rows []model.AuditRow) []FieldCoverage {
	total := len(rows)
	counts := map[string]int{}
	for _, row := range rows {
		if row.Title != nil && *row.Title != "" {
			counts["title"]++
		}
		if row.Industry != nil && *row.Industry != "" {
			counts["industry"]++
		}
		if row.Country != nil && *row.Country != "" {
			counts["country"]++
		}
		if row.DiscoveryDate != nil && *row.DiscoveryDate != "" {
			counts["discovery_date"]++
		}
		if row.RecordsAffected != nil {
			counts["records_affected"]++
		}
		if row.AttackVector != nil {
			counts["attack_vector"]++
		}
		if row.Severity != nil {
			counts["severity"]++
		}
	}

	fields := []string{"title", "industry", "country", "discovery_date", "records_affected", "attack_vector", "severity"}
	coverage := make([]FieldCoverage, 0, len(fields))
	for _, field := range fields {
		coverage = append(coverage, FieldCoverage{Field: field, Filled: counts[field], Total: total})
	}
	return coverage
}

// Render formats the report for terminal output.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Breaches: %d (sources: %d, updates: %d)\n", r.TotalBreaches, r.TotalSources, r.TotalUpdates)

	fmt.Fprintf(&b, "\nSuspected duplicate groups: %d\n", len(r.DuplicateGroups))
	for _, g := range r.DuplicateGroups {
		fmt.Fprintf(&b, "  %s (%s)\n", strings.Join(g.Companies, " / "), strings.Join(g.IDs, ", "))
	}

	fmt.Fprintf(&b, "\nField coverage:\n")
	for _, c := range r.Coverage {
		fmt.Fprintf(&b, "  %-17s %3.0f%% (%d/%d)\n", c.Field, c.Rate()*100, c.Filled, c.Total)
	}

	if len(r.Orphans) > 0 {
		fmt.Fprintf(&b, "\nBreaches with no recorded source: %d\n", len(r.Orphans))
		for _, id := range r.Orphans {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}
	return b.String()
}
