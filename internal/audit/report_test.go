package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachcase/breachwatch/internal/model"
)

type staticSource []model.AuditRow

func (s staticSource) ListAuditRows(ctx context.Context) ([]model.AuditRow, error) {
	return s, nil
}

func strPtr(s string) *string { return &s }

func TestAuditor_FlagsDuplicateGroups(t *testing.T) {
	rows := staticSource{
		{ID: "b-1", Company: "Acme Corp", SourceCount: 1},
		{ID: "b-2", Company: "Acme Corporation", SourceCount: 1},
		{ID: "b-3", Company: "Globex Industries", SourceCount: 1},
	}

	report, err := NewAuditor(rows, 0.85).Run(t.Context())
	require.NoError(t, err)

	require.Len(t, report.DuplicateGroups, 1)
	assert.ElementsMatch(t, []string{"b-1", "b-2"}, report.DuplicateGroups[0].IDs)
	assert.Equal(t, 3, report.TotalBreaches)
}

func TestAuditor_TransitiveGrouping(t *testing.T) {
	rows := staticSource{
		{ID: "b-1", Company: "Qantas", SourceCount: 1},
		{ID: "b-2", Company: "Qantas Airways", SourceCount: 1},
		{ID: "b-3", Company: "Qantas Airways Limited", SourceCount: 1},
	}

	report, err := NewAuditor(rows, 0.85).Run(t.Context())
	require.NoError(t, err)

	require.Len(t, report.DuplicateGroups, 1)
	assert.Len(t, report.DuplicateGroups[0].IDs, 3)
}

func TestAuditor_FieldCoverage(t *testing.T) {
	records := int64(1000)
	vector := model.AttackVectorPhishing
	rows := staticSource{
		{ID: "b-1", Company: "Acme", Industry: strPtr("Retail"), RecordsAffected: &records, AttackVector: &vector, SourceCount: 1},
		{ID: "b-2", Company: "Globex", SourceCount: 2, UpdateCount: 1},
	}

	report, err := NewAuditor(rows, 0.85).Run(t.Context())
	require.NoError(t, err)

	byField := map[string]FieldCoverage{}
	for _, c := range report.Coverage {
		byField[c.Field] = c
	}
	assert.InDelta(t, 0.5, byField["industry"].Rate(), 1e-9)
	assert.InDelta(t, 0.5, byField["records_affected"].Rate(), 1e-9)
	assert.InDelta(t, 0.0, byField["severity"].Rate(), 1e-9)
	assert.Equal(t, 3, report.TotalSources)
	assert.Equal(t, 1, report.TotalUpdates)
}

func TestAuditor_Orphans(t *testing.T) {
	rows := staticSource{
		{ID: "b-1", Company: "Acme", SourceCount: 0},
		{ID: "b-2", Company: "Globex", SourceCount: 2},
	}

	report, err := NewAuditor(rows, 0.85).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1"}, report.Orphans)
}

func TestReport_Render(t *testing.T) {
	report := &Report{
		TotalBreaches:   2,
		TotalSources:    3,
		DuplicateGroups: []DuplicateGroup{{Companies: []string{"Acme Corp", "Acme Corporation"}, IDs: []string{"b-1", "b-2"}}},
		Coverage:        []FieldCoverage{{Field: "industry", Filled: 1, Total: 2}},
	}

	out := report.Render()
	assert.True(t, strings.Contains(out, "Breaches: 2"))
	assert.True(t, strings.Contains(out, "Acme Corp / Acme Corporation"))
	assert.True(t, strings.Contains(out, "industry"))
}

func TestEmptyCorpus(t *testing.T) {
	report, err := NewAuditor(staticSource{}, 0.85).Run(t.Context())
	require.NoError(t, err)
	assert.Zero(t, report.TotalBreaches)
	assert.Empty(t, report.DuplicateGroups)
	for _, c := range report.Coverage {
		assert.InDelta(t, 1.0, c.Rate(), 1e-9)
	}
}
