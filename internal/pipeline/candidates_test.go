package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachcase/breachwatch/internal/model"
)

func TestFilterCandidates_KeepsPlausibleMatches(t *testing.T) {
	stubs := []model.BreachStub{
		{ID: "b-1", Company: "Acme Corporation"},
		{ID: "b-2", Company: "Globex Industries"},
		{ID: "b-3", Company: "Acme Corp"},
	}

	ids := FilterCandidates("Acme Corp", stubs, 0.6, 0)
	require.Len(t, ids, 2)
	assert.Equal(t, "b-3", ids[0], "exact match should rank first")
	assert.Contains(t, ids, "b-1")
	assert.NotContains(t, ids, "b-2")
}

func TestFilterCandidates_NoMatches(t *testing.T) {
	stubs := []model.BreachStub{
		{ID: "b-1", Company: "Initech"},
		{ID: "b-2", Company: "Umbrella Corporation"},
	}
	assert.Empty(t, FilterCandidates("Wayne Enterprises", stubs, 0.6, 0))
}

func TestFilterCandidates_CapsResultCount(t *testing.T) {
	stubs := []model.BreachStub{
		{ID: "b-1", Company: "Acme Corp"},
		{ID: "b-2", Company: "Acme Corporation"},
		{ID: "b-3", Company: "Acme Co"},
	}
	ids := FilterCandidates("Acme Corp", stubs, 0.6, 2)
	assert.Len(t, ids, 2)
	assert.Equal(t, "b-1", ids[0])
}

func TestFilterCandidates_SuffixVariantsMatch(t *testing.T) {
	stubs := []model.BreachStub{{ID: "b-1", Company: "Qantas Airways"}}
	ids := FilterCandidates("Qantas", stubs, 0.6, 0)
	assert.Equal(t, []string{"b-1"}, ids)
}
